// models/content.go - Content collaborator models (posts, videos, stories, follows)
//
// These subsystems own the raw statistics the achievement engine reads. Only
// the fields the statistic snapshot needs live here; feeds, comments and media
// handling belong to other services.
package models

import (
	"time"
)

// Post represents a published post. LikeCount is the denormalized counter the
// best-of-collection maximum reads.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Caption   string    `gorm:"type:text" json:"caption"`
	MediaURL  string    `json:"media_url"`
	LikeCount int       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Video represents an uploaded video with its view counter.
type Video struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Caption   string    `gorm:"type:text" json:"caption"`
	MediaURL  string    `json:"media_url"`
	ViewCount int       `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Story represents an ephemeral story. Expired stories still count toward the
// stories-authored statistic.
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MediaKey  string    `gorm:"not null" json:"media_key"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow represents one user following another. Unique on the pair so a
// duplicate follow request is a no-op.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follower_following" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follower_following" json:"following_id"`
	Follower    *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following   *User     `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Post) TableName() string {
	return "posts"
}

func (Video) TableName() string {
	return "videos"
}

func (Story) TableName() string {
	return "stories"
}

func (Follow) TableName() string {
	return "follows"
}
