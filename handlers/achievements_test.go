// handlers/achievements_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"vibely/models"
	"vibely/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// :memory: gives every connection its own database; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Video{},
		&models.Story{},
		&models.Follow{},
		&models.Achievement{},
		&models.UserAchievementProgress{},
	))
	return db
}

// newTestApp registers the achievement routes behind a stub auth layer that
// injects the given user identity, mirroring what the JWT middleware sets.
func newTestApp(db *gorm.DB, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", userID)
		c.Locals("username", fmt.Sprintf("user%d", userID))
		return c.Next()
	})

	handler := NewAchievementHandler(services.NewAchievementService(db))
	app.Post("/api/achievements/check", handler.Check)
	app.Get("/api/achievements", handler.GetMyAchievements)
	app.Get("/api/achievements/catalog", handler.GetCatalog)
	return app
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "checker", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedAchievement(t *testing.T, db *gorm.DB, key string, points int, req models.RequirementSpec) models.Achievement {
	t.Helper()
	achievement := models.Achievement{
		Key:         key,
		Title:       key,
		Description: key,
		Category:    "content",
		Rarity:      "common",
		Points:      points,
		Requirement: req,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&achievement).Error)
	return achievement
}

func decodeBody(t *testing.T, resp io.Reader) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func TestCheckReturnsNewUnlocks(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	seedAchievement(t, db, "first_post", 10, models.RequirementSpec{
		Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1,
	})
	require.NoError(t, db.Create(&models.Post{UserID: user.ID, Caption: "hi"}).Error)

	app := newTestApp(db, user.ID)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/achievements/check", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	unlocked, ok := body["new_achievements"].([]interface{})
	require.True(t, ok)
	require.Len(t, unlocked, 1)
	first, ok := unlocked[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "first_post", first["key"])
}

func TestCheckSecondCallReturnsNothing(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	seedAchievement(t, db, "first_post", 10, models.RequirementSpec{
		Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1,
	})
	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)

	app := newTestApp(db, user.ID)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/achievements/check", nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest("POST", "/api/achievements/check", nil))
	require.NoError(t, err)
	body := decodeBody(t, resp.Body)
	assert.Empty(t, body["new_achievements"])
}

func TestGetMyAchievementsSummary(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	seedAchievement(t, db, "first_post", 10, models.RequirementSpec{
		Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1,
	})
	seedAchievement(t, db, "prolific_poster", 50, models.RequirementSpec{
		Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 25,
	})
	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)

	app := newTestApp(db, user.ID)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/achievements", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(10), body["total_points"])
	assert.Equal(t, float64(1), body["completed_count"])
	assert.Equal(t, float64(2), body["total_count"])

	list, ok := body["achievements"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)

	// In-progress entries carry their partial progress.
	second, ok := list[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "prolific_poster", second["key"])
	assert.Equal(t, false, second["is_completed"])
	assert.Equal(t, float64(1), second["progress"])
}

func TestGetCatalog(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	seedAchievement(t, db, "first_post", 10, models.RequirementSpec{
		Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1,
	})
	inactive := seedAchievement(t, db, "retired", 5, models.RequirementSpec{
		Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 2,
	})
	require.NoError(t, db.Model(&models.Achievement{}).
		Where("id = ?", inactive.ID).
		Update("is_active", false).Error)

	app := newTestApp(db, user.ID)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/achievements/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, float64(1), body["total"])
	list, ok := body["achievements"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	entry, ok := list[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "first_post", entry["key"])
}

func TestCheckWithoutIdentityIsRejected(t *testing.T) {
	db := setupTestDB(t)
	handler := NewAchievementHandler(services.NewAchievementService(db))

	app := fiber.New()
	app.Post("/api/achievements/check", handler.Check)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/achievements/check", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
