package repository

import (
	"time"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"gorm.io/gorm"
)

// checkoutRepository implements the CheckoutRepository interface
type checkoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository creates a new pending-checkout repository instance
func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(checkout *models.PendingCheckout) error {
	return r.db.Create(checkout).Error
}

func (r *checkoutRepository) GetBySessionID(sessionID string) (*models.PendingCheckout, error) {
	var checkout models.PendingCheckout
	err := r.db.Where("session_id = ?", sessionID).First(&checkout).Error
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *checkoutRepository) MarkCompleted(id uint, completedAt time.Time) error {
	return r.db.Model(&models.PendingCheckout{}).
		Where("id = ?", id).
		Update("completed_at", &completedAt).Error
}
