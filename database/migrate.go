// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"vibely/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Video{},
		&models.Story{},
		&models.Follow{},
		&models.Achievement{},
		&models.UserAchievementProgress{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	log.Println("✅ Migrations completed")

	createIndexes()

	if err := SeedAchievements(db); err != nil {
		log.Fatalf("❌ Failed to seed achievement catalog: %v", err)
	}

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes beyond what AutoMigrate derives from tags
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_guest ON users(is_guest)")

	// Content indexes used by the statistic snapshot aggregates
	db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_videos_user ON videos(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_stories_user ON stories(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_follows_follower ON follows(follower_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(following_id)")

	// Achievement indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_active ON achievements(is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_progress_user ON user_achievement_progress(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_progress_achievement ON user_achievement_progress(achievement_id)")

	log.Println("✅ Indexes created successfully")
}
