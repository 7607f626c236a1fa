// services/stat_service.go - User statistic snapshot
package services

import (
	"fmt"
	"time"
	"vibely/models"

	"gorm.io/gorm"
)

// UserStatSnapshot is the batched read of every statistic requirement
// evaluation consumes. It is computed once per check pass; in particular each
// best-of maximum is computed exactly once and reused for both the satisfied
// check and the reported progress.
type UserStatSnapshot struct {
	PostCount      int64     `json:"post_count"`
	VideoCount     int64     `json:"video_count"`
	StoryCount     int64     `json:"story_count"`
	FollowingCount int64     `json:"following_count"`
	FollowerCount  int64     `json:"follower_count"`
	MaxPostLikes   float64   `json:"max_post_likes"`
	MaxVideoViews  float64   `json:"max_video_views"`
	CreatedAt      time.Time `json:"created_at"`
}

// Count returns the named count statistic, or false for a metric the snapshot
// does not carry.
func (s *UserStatSnapshot) Count(metric models.Metric) (float64, bool) {
	switch metric {
	case models.MetricPosts:
		return float64(s.PostCount), true
	case models.MetricVideos:
		return float64(s.VideoCount), true
	case models.MetricStories:
		return float64(s.StoryCount), true
	case models.MetricFollowing:
		return float64(s.FollowingCount), true
	case models.MetricFollowers:
		return float64(s.FollowerCount), true
	default:
		return 0, false
	}
}

type StatService struct {
	db *gorm.DB
}

func NewStatService(db *gorm.DB) *StatService {
	return &StatService{db: db}
}

// GetSnapshot computes the user's statistic snapshot in one pass. Any failure
// here aborts the whole check pass; no progress writes happen before this
// step, so an abort leaves nothing inconsistent.
func (s *StatService) GetSnapshot(userID uint) (*UserStatSnapshot, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	snap := &UserStatSnapshot{CreatedAt: user.CreatedAt}

	counts := []struct {
		model interface{}
		where string
		dest  *int64
	}{
		{&models.Post{}, "user_id = ?", &snap.PostCount},
		{&models.Video{}, "user_id = ?", &snap.VideoCount},
		{&models.Story{}, "user_id = ?", &snap.StoryCount},
		{&models.Follow{}, "follower_id = ?", &snap.FollowingCount},
		{&models.Follow{}, "following_id = ?", &snap.FollowerCount},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Where(c.where, userID).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("count statistic: %w", err)
		}
	}

	// MAX over zero rows is NULL; coalesce so users with no content report 0.
	if err := s.db.Model(&models.Post{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(like_count), 0)").
		Scan(&snap.MaxPostLikes).Error; err != nil {
		return nil, fmt.Errorf("max post likes: %w", err)
	}

	if err := s.db.Model(&models.Video{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(view_count), 0)").
		Scan(&snap.MaxVideoViews).Error; err != nil {
		return nil, fmt.Errorf("max video views: %w", err)
	}

	return snap, nil
}
