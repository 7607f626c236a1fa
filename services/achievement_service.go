// services/achievement_service.go - Unlock orchestration
package services

import (
	"fmt"
	"log"
	"time"
	"vibely/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService drives evaluation passes over the achievement catalog.
// Passes are idempotent and safe to run concurrently for the same user: the
// unlock transition is detected with a conditional UPDATE, so two overlapping
// passes can never both report the same achievement as newly unlocked.
type AchievementService struct {
	db    *gorm.DB
	stats *StatService
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{
		db:    db,
		stats: NewStatService(db),
	}
}

// Stats exposes the snapshot service for callers that render profile stats.
func (s *AchievementService) Stats() *StatService {
	return s.stats
}

// Catalog returns all active achievement definitions in catalog order.
func (s *AchievementService) Catalog() ([]models.Achievement, error) {
	var catalog []models.Achievement
	err := s.db.Where("is_active = ?", true).Order("id ASC").Find(&catalog).Error
	return catalog, err
}

// RunCheck performs one evaluation pass for the user and returns the
// achievements that transitioned to completed during this exact pass, in
// catalog order.
//
// Failure semantics: a snapshot or catalog read failure aborts the pass
// before any write. A per-achievement evaluate or persist failure is logged
// and skipped; the pass continues with the remaining entries.
func (s *AchievementService) RunCheck(userID uint) ([]models.Achievement, error) {
	snap, err := s.stats.GetSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	catalog, err := s.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	completed, err := s.completedSet(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	now := time.Now()
	newlyUnlocked := []models.Achievement{}

	for _, achievement := range catalog {
		// Completed achievements are never re-evaluated; their UnlockedAt
		// must survive every later pass untouched.
		if completed[achievement.ID] {
			continue
		}

		eval, err := Evaluate(snap, achievement.Requirement)
		if err != nil {
			log.Printf("⚠️ achievement %q: %v", achievement.Key, err)
			continue
		}

		unlocked, err := s.persistProgress(userID, achievement.ID, eval, now)
		if err != nil {
			log.Printf("⚠️ achievement %q: persist failed for user %d: %v", achievement.Key, userID, err)
			continue
		}

		if unlocked {
			newlyUnlocked = append(newlyUnlocked, achievement)
		}
	}

	return newlyUnlocked, nil
}

// completedSet returns the IDs of achievements the user has already unlocked.
func (s *AchievementService) completedSet(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.Model(&models.UserAchievementProgress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

// persistProgress writes one evaluation result and reports whether this write
// is the one that flipped the achievement to completed.
//
// Three conditional statements keep concurrent passes safe without a lock:
// the row is created idempotently, progress only ever increases, and the
// completion flip only succeeds while is_completed is still false — the
// RowsAffected of that UPDATE is the exactly-once unlock signal.
func (s *AchievementService) persistProgress(userID, achievementID uint, eval Evaluation, now time.Time) (bool, error) {
	row := models.UserAchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return false, err
	}

	if err := s.db.Model(&models.UserAchievementProgress{}).
		Where("user_id = ? AND achievement_id = ? AND is_completed = ? AND progress < ?",
			userID, achievementID, false, eval.Progress).
		Update("progress", eval.Progress).Error; err != nil {
		return false, err
	}

	if !eval.Satisfied {
		return false, nil
	}

	result := s.db.Model(&models.UserAchievementProgress{}).
		Where("user_id = ? AND achievement_id = ? AND is_completed = ?", userID, achievementID, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"unlocked_at":  now,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// AchievementStatus joins a catalog entry with the user's progress against
// it. Entries the user has no progress row for yet appear locked with zero
// progress.
type AchievementStatus struct {
	models.Achievement
	Progress    float64    `json:"progress"`
	IsCompleted bool       `json:"is_completed"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementSummary is the get-my-achievements payload.
type AchievementSummary struct {
	Achievements   []AchievementStatus `json:"achievements"`
	TotalPoints    int                 `json:"total_points"`
	CompletedCount int                 `json:"completed_count"`
	TotalCount     int                 `json:"total_count"`
}

// Summary returns every active achievement joined with the user's progress,
// plus totals. TotalPoints sums points over completed achievements only.
func (s *AchievementService) Summary(userID uint) (*AchievementSummary, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	var rows []models.UserAchievementProgress
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	byAchievement := make(map[uint]models.UserAchievementProgress, len(rows))
	for _, row := range rows {
		byAchievement[row.AchievementID] = row
	}

	summary := &AchievementSummary{
		Achievements: make([]AchievementStatus, 0, len(catalog)),
		TotalCount:   len(catalog),
	}

	for _, achievement := range catalog {
		status := AchievementStatus{Achievement: achievement}
		if row, ok := byAchievement[achievement.ID]; ok {
			status.Progress = row.Progress
			status.IsCompleted = row.IsCompleted
			status.UnlockedAt = row.UnlockedAt
		}
		if status.IsCompleted {
			summary.CompletedCount++
			summary.TotalPoints += achievement.Points
		}
		summary.Achievements = append(summary.Achievements, status)
	}

	return summary, nil
}
