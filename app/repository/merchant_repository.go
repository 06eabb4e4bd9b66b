package repository

import (
	"errors"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"gorm.io/gorm"
)

// merchantRepository implements the MerchantRepository interface
type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository instance
func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) GetByPrincipalID(principalID string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.Where("principal_id = ?", principalID).First(&merchant).Error
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) GetByStripeCustomerID(customerID string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&merchant).Error
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) GetOrCreateByPrincipalID(principalID string) (*models.Merchant, error) {
	merchant, err := r.GetByPrincipalID(principalID)
	if err == nil {
		return merchant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	merchant = &models.Merchant{
		PrincipalID: principalID,
		Plan:        models.PlanFree,
		Status:      models.MerchantStatusActive,
	}
	if err := r.db.Create(merchant).Error; err != nil {
		return nil, err
	}
	return merchant, nil
}

func (r *merchantRepository) Save(merchant *models.Merchant) error {
	return r.db.Save(merchant).Error
}
