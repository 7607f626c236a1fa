// database/seed.go - Default achievement catalog
package database

import (
	"log"
	"time"
	"vibely/models"

	"gorm.io/gorm"
)

// earlyAdopterCutoff gates the early_adopter achievement to accounts created
// before the public launch.
var earlyAdopterCutoff = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

// defaultCatalog is the seed achievement set. Keys are stable machine names;
// re-running the seed never overwrites an existing entry.
func defaultCatalog() []models.Achievement {
	return []models.Achievement{
		{
			Key:         "first_post",
			Title:       "First Post",
			Description: "Publish your first post",
			Icon:        "📝",
			Category:    "content",
			Rarity:      "common",
			Points:      10,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 1},
			IsActive:    true,
		},
		{
			Key:         "prolific_poster",
			Title:       "Prolific Poster",
			Description: "Publish 50 posts",
			Icon:        "✍️",
			Category:    "content",
			Rarity:      "rare",
			Points:      50,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricPosts, Target: 50},
			IsActive:    true,
		},
		{
			Key:         "first_video",
			Title:       "Lights, Camera",
			Description: "Upload your first video",
			Icon:        "🎬",
			Category:    "content",
			Rarity:      "common",
			Points:      10,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricVideos, Target: 1},
			IsActive:    true,
		},
		{
			Key:         "storyteller",
			Title:       "Storyteller",
			Description: "Share 25 stories",
			Icon:        "📖",
			Category:    "content",
			Rarity:      "rare",
			Points:      40,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricStories, Target: 25},
			IsActive:    true,
		},
		{
			Key:         "social_butterfly",
			Title:       "Social Butterfly",
			Description: "Follow 10 people",
			Icon:        "🦋",
			Category:    "social",
			Rarity:      "common",
			Points:      15,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricFollowing, Target: 10},
			IsActive:    true,
		},
		{
			Key:         "rising_star",
			Title:       "Rising Star",
			Description: "Reach 100 followers",
			Icon:        "🌟",
			Category:    "social",
			Rarity:      "rare",
			Points:      60,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricFollowers, Target: 100},
			IsActive:    true,
		},
		{
			Key:         "local_celebrity",
			Title:       "Local Celebrity",
			Description: "Reach 1,000 followers",
			Icon:        "🏆",
			Category:    "social",
			Rarity:      "epic",
			Points:      150,
			Requirement: models.RequirementSpec{Type: models.RequirementCountTarget, Metric: models.MetricFollowers, Target: 1000},
			IsActive:    true,
		},
		{
			Key:         "viral_post",
			Title:       "Gone Viral",
			Description: "Get 1,000 likes on a single post",
			Icon:        "🔥",
			Category:    "engagement",
			Rarity:      "epic",
			Points:      120,
			Requirement: models.RequirementSpec{Type: models.RequirementBestOfCollection, Collection: models.CollectionPosts, Metric: models.MetricLikes, Target: 1000},
			IsActive:    true,
		},
		{
			Key:         "hit_video",
			Title:       "Box Office Hit",
			Description: "Get 10,000 views on a single video",
			Icon:        "🎥",
			Category:    "engagement",
			Rarity:      "legendary",
			Points:      200,
			Requirement: models.RequirementSpec{Type: models.RequirementBestOfCollection, Collection: models.CollectionVideos, Metric: models.MetricViews, Target: 10000},
			IsActive:    true,
		},
		{
			Key:         "early_adopter",
			Title:       "Early Adopter",
			Description: "Joined before the public launch",
			Icon:        "🚀",
			Category:    "milestone",
			Rarity:      "legendary",
			Points:      100,
			Requirement: models.RequirementSpec{Type: models.RequirementDateBefore, Cutoff: &earlyAdopterCutoff},
			IsActive:    true,
		},
	}
}

// SeedAchievements inserts any default catalog entries that are not present
// yet. Existing entries are left untouched, so operator edits survive
// restarts.
func SeedAchievements(db *gorm.DB) error {
	seeded := 0
	for _, achievement := range defaultCatalog() {
		var count int64
		if err := db.Model(&models.Achievement{}).Where("key = ?", achievement.Key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&achievement).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		log.Printf("✅ Seeded %d achievement(s)", seeded)
	}
	return nil
}
