// models/achievement.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RequirementType discriminates the requirement variants a catalog entry can carry.
type RequirementType string

const (
	RequirementCountTarget      RequirementType = "count_target"
	RequirementBestOfCollection RequirementType = "best_of_collection"
	RequirementDateBefore       RequirementType = "date_before"
)

// Metric names a user statistic consumed by requirement evaluation.
type Metric string

const (
	MetricPosts     Metric = "posts"
	MetricVideos    Metric = "videos"
	MetricStories   Metric = "stories"
	MetricFollowing Metric = "following"
	MetricFollowers Metric = "followers"

	// Best-of-collection metrics
	MetricLikes Metric = "likes"
	MetricViews Metric = "views"
)

// Collection names for best-of-collection requirements
const (
	CollectionPosts  = "posts"
	CollectionVideos = "videos"
)

// RequirementSpec is the tagged union describing what must be true of a user's
// statistics for an achievement to unlock. Exactly one variant applies per
// definition; which fields are meaningful depends on Type:
//
//	count_target:       Metric, Target
//	best_of_collection: Collection, Metric, Target
//	date_before:        Cutoff
//
// Stored as a JSONB column.
type RequirementSpec struct {
	Type       RequirementType `json:"type"`
	Metric     Metric          `json:"metric,omitempty"`
	Collection string          `json:"collection,omitempty"`
	Target     float64         `json:"target,omitempty"`
	Cutoff     *time.Time      `json:"cutoff,omitempty"`
}

func (r RequirementSpec) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *RequirementSpec) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = RequirementSpec{}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan %T into RequirementSpec", value)
	}
}

// Achievement is an immutable catalog entry. Rows are created by the seeding
// process and are read-only to the evaluation engine.
type Achievement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Key         string          `gorm:"not null;uniqueIndex" json:"key"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"not null" json:"description"`
	Icon        string          `json:"icon"`
	Category    string          `gorm:"not null;index" json:"category"` // milestone, social, content, engagement
	Rarity      string          `gorm:"not null" json:"rarity"`         // common, rare, epic, legendary
	Points      int             `gorm:"not null;default:0" json:"points"`
	Requirement RequirementSpec `gorm:"type:jsonb" json:"requirement"`
	IsActive    bool            `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAchievementProgress tracks one user's state against one achievement.
// One row per (user, achievement); created lazily on the first evaluation
// pass that touches the pair, mutated only by the unlock orchestrator.
//
// Once IsCompleted flips true, UnlockedAt is set and never changes again.
type UserAchievementProgress struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint       `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Progress      float64    `gorm:"not null;default:0" json:"progress"`
	IsCompleted   bool       `gorm:"not null;default:false" json:"is_completed"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievementProgress) TableName() string {
	return "user_achievement_progress"
}
