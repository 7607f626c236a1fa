// services/achievement_service_test.go
package services

import (
	"sync"
	"testing"
	"time"
	"vibely/models"

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

	// A second connection to :memory: would see a different database.
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

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Password: "", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createAchievement(t *testing.T, db *gorm.DB, key string, req models.RequirementSpec, points int) models.Achievement {
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

func unlockKeys(unlocked []models.Achievement) []string {
	keys := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		keys = append(keys, a.Key)
	}
	return keys
}

func TestRunCheckFirstPost(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "alice")
	createAchievement(t, db, "first_post",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)

	// No posts yet: nothing unlocks, but a progress row appears.
	unlocked, err := svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID, Caption: "hello"}).Error)

	unlocked, err = svc.RunCheck(user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"first_post"}, unlockKeys(unlocked))

	var row models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
	assert.Equal(t, float64(1), row.Progress)
	assert.True(t, row.IsCompleted)
	require.NotNil(t, row.UnlockedAt)

	// Checking again immediately reports nothing new.
	unlocked, err = svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestRunCheckIdempotentUnlockTimestamp(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "bob")
	createAchievement(t, db, "first_post",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)

	_, err := svc.RunCheck(user.ID)
	require.NoError(t, err)

	var first models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&first).Error)
	require.NotNil(t, first.UnlockedAt)

	// Later passes must not re-timestamp a completed achievement, even after
	// the metric keeps growing.
	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)
	unlocked, err := svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	var second models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&second).Error)
	require.NotNil(t, second.UnlockedAt)
	assert.True(t, first.UnlockedAt.Equal(*second.UnlockedAt))
	assert.Equal(t, first.Progress, second.Progress)
}

func TestRunCheckSocialButterfly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "carol")
	createAchievement(t, db, "social_butterfly",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricFollowing, Target: 10}, 15)

	others := make([]models.User, 10)
	for i := range others {
		others[i] = createTestUser(t, db, "target"+string(rune('a'+i)))
	}

	for i := 0; i < 9; i++ {
		require.NoError(t, db.Create(&models.Follow{FollowerID: user.ID, FollowingID: others[i].ID}).Error)
	}

	unlocked, err := svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	var row models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
	assert.Equal(t, float64(9), row.Progress)
	assert.False(t, row.IsCompleted)

	require.NoError(t, db.Create(&models.Follow{FollowerID: user.ID, FollowingID: others[9].ID}).Error)

	unlocked, err = svc.RunCheck(user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"social_butterfly"}, unlockKeys(unlocked))

	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
	assert.Equal(t, float64(10), row.Progress)
	assert.True(t, row.IsCompleted)
}

func TestRunCheckMonotonicProgress(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "dave")
	createAchievement(t, db, "prolific_poster",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 50}, 50)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)
	}
	_, err := svc.RunCheck(user.ID)
	require.NoError(t, err)

	var afterFirst models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&afterFirst).Error)
	assert.Equal(t, float64(3), afterFirst.Progress)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)
	}
	_, err = svc.RunCheck(user.ID)
	require.NoError(t, err)

	var afterSecond models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&afterSecond).Error)
	assert.Equal(t, float64(5), afterSecond.Progress)
	assert.GreaterOrEqual(t, afterSecond.Progress, afterFirst.Progress)

	// A stale pass can observe a lower metric; stored progress never regresses.
	require.NoError(t, db.Where("user_id = ?", user.ID).Delete(&models.Post{}).Error)
	_, err = svc.RunCheck(user.ID)
	require.NoError(t, err)

	var afterDelete models.UserAchievementProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&afterDelete).Error)
	assert.Equal(t, float64(5), afterDelete.Progress)
}

func TestRunCheckExactlyOnceUnderConcurrency(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "erin")
	createAchievement(t, db, "first_post",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)

	const passes = 8
	results := make([][]models.Achievement, passes)

	var wg sync.WaitGroup
	for i := 0; i < passes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlocked, err := svc.RunCheck(user.ID)
			assert.NoError(t, err)
			results[i] = unlocked
		}(i)
	}
	wg.Wait()

	reported := 0
	for _, unlocked := range results {
		reported += len(unlocked)
	}
	assert.Equal(t, 1, reported, "the unlock must be reported by exactly one pass")

	var count int64
	require.NoError(t, db.Model(&models.UserAchievementProgress{}).
		Where("user_id = ? AND is_completed = ?", user.ID, true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRunCheckMalformedEntryDoesNotPoisonPass(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "frank")

	createAchievement(t, db, "broken",
		models.RequirementSpec{Type: "who_knows", Target: 1}, 5)
	createAchievement(t, db, "first_post",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)

	unlocked, err := svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_post"}, unlockKeys(unlocked))
}

func TestRunCheckSkipsInactiveAchievements(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "grace")

	inactive := createAchievement(t, db, "retired",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)

	unlocked, err := svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestRunCheckCatalogOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "heidi")

	createAchievement(t, db, "first_post",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)
	createAchievement(t, db, "first_video",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricVideos, Target: 1}, 10)
	createAchievement(t, db, "storyteller",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricStories, Target: 1}, 10)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)
	require.NoError(t, db.Create(&models.Video{UserID: user.ID}).Error)
	require.NoError(t, db.Create(&models.Story{UserID: user.ID, MediaKey: "k", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	unlocked, err := svc.RunCheck(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_post", "first_video", "storyteller"}, unlockKeys(unlocked))
}

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAchievementService(db)
	user := createTestUser(t, db, "ivan")

	createAchievement(t, db, "first_post",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1}, 10)
	createAchievement(t, db, "prolific_poster",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 50}, 50)
	createAchievement(t, db, "social_butterfly",
		models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricFollowing, Target: 10}, 15)

	require.NoError(t, db.Create(&models.Post{UserID: user.ID}).Error)
	_, err := svc.RunCheck(user.ID)
	require.NoError(t, err)

	summary, err := svc.Summary(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 1, summary.CompletedCount)
	// Total points counts completed achievements only.
	assert.Equal(t, 10, summary.TotalPoints)
	require.Len(t, summary.Achievements, 3)

	byKey := make(map[string]AchievementStatus)
	for _, status := range summary.Achievements {
		byKey[status.Key] = status
	}

	assert.True(t, byKey["first_post"].IsCompleted)
	assert.NotNil(t, byKey["first_post"].UnlockedAt)
	assert.False(t, byKey["prolific_poster"].IsCompleted)
	assert.Equal(t, float64(1), byKey["prolific_poster"].Progress)
	assert.False(t, byKey["social_butterfly"].IsCompleted)
	assert.Zero(t, byKey["social_butterfly"].Progress)
}
