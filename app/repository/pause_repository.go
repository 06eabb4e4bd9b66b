package repository

import (
	"time"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"gorm.io/gorm"
)

// pauseRepository implements the PauseRepository interface
type pauseRepository struct {
	db *gorm.DB
}

// NewPauseRepository creates a new pause-event repository instance
func NewPauseRepository(db *gorm.DB) PauseRepository {
	return &pauseRepository{db: db}
}

func (r *pauseRepository) Create(event *models.PauseEvent) error {
	return r.db.Create(event).Error
}

func (r *pauseRepository) LatestOpen(principalID, accountID, stripeSubID string) (*models.PauseEvent, error) {
	var event models.PauseEvent
	err := r.db.
		Where("principal_id = ? AND account_id = ? AND stripe_sub_id = ? AND resumed_at IS NULL",
			principalID, accountID, stripeSubID).
		Order("paused_at DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *pauseRepository) MarkResumed(id uint, resumedAt time.Time) error {
	return r.db.Model(&models.PauseEvent{}).
		Where("id = ?", id).
		Update("resumed_at", &resumedAt).Error
}

func (r *pauseRepository) CountByAccount(principalID, accountID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PauseEvent{}).
		Where("principal_id = ? AND account_id = ?", principalID, accountID).
		Count(&count).Error
	return count, err
}
