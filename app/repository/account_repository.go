package repository

import (
	"github.com/ManuelReschke/PauseFlow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new connected-account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetOwned(principalID, accountID string) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.Where("principal_id = ? AND account_id = ?", principalID, accountID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByAccountID(accountID string) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.Where("account_id = ?", accountID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListByPrincipal(principalID string) ([]models.ConnectedAccount, error) {
	var accounts []models.ConnectedAccount
	err := r.db.Where("principal_id = ?", principalID).
		Order("linked_at DESC").Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) Upsert(account *models.ConnectedAccount) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "principal_id"},
			{Name: "account_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"scope",
			"status",
			"linked_at",
			"updated_at",
		}),
	}).Create(account).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("principal_id = ? AND account_id = ?", account.PrincipalID, account.AccountID).
		First(account).Error
}
