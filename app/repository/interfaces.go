package repository

import (
	"time"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"gorm.io/gorm"
)

// MerchantRepository defines the interface for merchant-related database operations
type MerchantRepository interface {
	GetByPrincipalID(principalID string) (*models.Merchant, error)
	GetByStripeCustomerID(customerID string) (*models.Merchant, error)
	GetOrCreateByPrincipalID(principalID string) (*models.Merchant, error)
	Save(merchant *models.Merchant) error
}

// AccountRepository defines the interface for connected-account database operations
type AccountRepository interface {
	// GetOwned looks up the account keyed by (principal, accountID).
	GetOwned(principalID, accountID string) (*models.ConnectedAccount, error)
	// GetByAccountID resolves an account id regardless of owner. Used by
	// the webhook reconciler to find the owning principal.
	GetByAccountID(accountID string) (*models.ConnectedAccount, error)
	ListByPrincipal(principalID string) ([]models.ConnectedAccount, error)
	Upsert(account *models.ConnectedAccount) error
}

// SubscriptionRepository defines the interface for subscription-mirror database operations
type SubscriptionRepository interface {
	GetOwned(principalID, stripeSubID string) (*models.Subscription, error)
	ListByAccount(principalID, accountID string) ([]models.Subscription, error)
	CountByStatus(principalID, accountID, status string) (int64, error)
	SumMonthlyValueByStatus(principalID, accountID, status string) (float64, error)
	Upsert(sub *models.Subscription) error
	UpdateStatus(principalID, stripeSubID, status string) error
	// Delete removes the mirror row. Deleting an absent row is a no-op.
	Delete(principalID, stripeSubID string) error
}

// PauseRepository defines the interface for pause-event database operations
type PauseRepository interface {
	Create(event *models.PauseEvent) error
	// LatestOpen returns the most recent un-resumed pause event for the
	// subscription, or gorm.ErrRecordNotFound.
	LatestOpen(principalID, accountID, stripeSubID string) (*models.PauseEvent, error)
	MarkResumed(id uint, resumedAt time.Time) error
	CountByAccount(principalID, accountID string) (int64, error)
}

// CheckoutRepository defines the interface for pending-checkout database operations
type CheckoutRepository interface {
	Create(checkout *models.PendingCheckout) error
	GetBySessionID(sessionID string) (*models.PendingCheckout, error)
	MarkCompleted(id uint, completedAt time.Time) error
}

// WebhookEventRepository defines the interface for webhook-event database operations
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories holds all repository instances
type Repositories struct {
	db *gorm.DB

	Merchant     MerchantRepository
	Account      AccountRepository
	Subscription SubscriptionRepository
	Pause        PauseRepository
	Checkout     CheckoutRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Merchant:     NewMerchantRepository(db),
		Account:      NewAccountRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Pause:        NewPauseRepository(db),
		Checkout:     NewCheckoutRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}

// Transaction runs fn against a repository set bound to one database
// transaction. Repository sets without a DB handle (in-memory fakes in
// tests) run fn directly.
func (r *Repositories) Transaction(fn func(*Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
