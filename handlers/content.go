// handlers/content.go - Content producers (posts, videos, stories, follows)
//
// Thin creation endpoints for the subsystems that feed the statistic
// snapshot. The client fires a check-achievements request shortly after any
// of these complete; the server does not chain the check itself.
package handlers

import (
	"time"
	"vibely/database"
	"vibely/middleware"
	"vibely/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatePostRequest struct {
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url"`
}

type CreateVideoRequest struct {
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url"`
}

type FollowRequest struct {
	UserID uint `json:"user_id"`
}

// CreatePost publishes a post
func CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	post := models.Post{
		UserID:   userID,
		Caption:  req.Caption,
		MediaURL: req.MediaURL,
	}

	if err := database.GetDB().Create(&post).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create post"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "post": post})
}

// LikePost increments a post's like counter
func LikePost(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post id"})
	}

	result := database.GetDB().Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to like post"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Post not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateVideo uploads a video record
func CreateVideo(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	video := models.Video{
		UserID:   userID,
		Caption:  req.Caption,
		MediaURL: req.MediaURL,
	}

	if err := database.GetDB().Create(&video).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create video"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "video": video})
}

// ViewVideo increments a video's view counter
func ViewVideo(c *fiber.Ctx) error {
	videoID, err := c.ParamsInt("id")
	if err != nil || videoID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid video id"})
	}

	result := database.GetDB().Model(&models.Video{}).
		Where("id = ?", videoID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record view"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Video not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateStory shares a story that expires after 24 hours
func CreateStory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	story := models.Story{
		UserID:    userID,
		MediaKey:  uuid.New().String(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	if err := database.GetDB().Create(&story).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create story"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "story": story})
}

// FollowUser follows another user. Following someone twice is a no-op.
func FollowUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req FollowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.UserID == userID {
		return c.Status(400).JSON(fiber.Map{"error": "Cannot follow yourself"})
	}

	db := database.GetDB()

	var target models.User
	if err := db.First(&target, req.UserID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	follow := models.Follow{
		FollowerID:  userID,
		FollowingID: req.UserID,
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(&follow).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to follow user"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UnfollowUser removes a follow relationship
func UnfollowUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := database.GetDB().
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		Delete(&models.Follow{}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to unfollow user"})
	}

	return c.JSON(fiber.Map{"success": true})
}
