package repository

import (
	"github.com/ManuelReschke/PauseFlow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetOwned(principalID, stripeSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("principal_id = ? AND stripe_sub_id = ?", principalID, stripeSubID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByAccount(principalID, accountID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("principal_id = ? AND account_id = ?", principalID, accountID).
		Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) CountByStatus(principalID, accountID, status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("principal_id = ? AND account_id = ? AND status = ?", principalID, accountID, status).
		Count(&count).Error
	return count, err
}

func (r *subscriptionRepository) SumMonthlyValueByStatus(principalID, accountID, status string) (float64, error) {
	var total float64
	err := r.db.Model(&models.Subscription{}).
		Where("principal_id = ? AND account_id = ? AND status = ?", principalID, accountID, status).
		Select("COALESCE(SUM(monthly_value), 0)").
		Scan(&total).Error
	return total, err
}

func (r *subscriptionRepository) Upsert(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "principal_id"},
			{Name: "stripe_sub_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_id",
			"customer_id",
			"status",
			"monthly_value",
			"current_period_end",
			"canceled_at",
			"last_event_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("principal_id = ? AND stripe_sub_id = ?", sub.PrincipalID, sub.StripeSubID).
		First(sub).Error
}

func (r *subscriptionRepository) UpdateStatus(principalID, stripeSubID, status string) error {
	return r.db.Model(&models.Subscription{}).
		Where("principal_id = ? AND stripe_sub_id = ?", principalID, stripeSubID).
		Update("status", status).Error
}

func (r *subscriptionRepository) Delete(principalID, stripeSubID string) error {
	return r.db.Where("principal_id = ? AND stripe_sub_id = ?", principalID, stripeSubID).
		Delete(&models.Subscription{}).Error
}
