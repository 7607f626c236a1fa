// handlers/users.go
package handlers

import (
	"vibely/database"
	"vibely/middleware"
	"vibely/models"
	"vibely/services"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the authenticated user's profile with a live
// statistic snapshot.
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	snap, err := services.NewStatService(db).GetSnapshot(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to compute stats"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userInfo(user),
		"stats":   snap,
	})
}
