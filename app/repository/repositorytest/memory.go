// Package repositorytest provides in-memory repository implementations
// for tests. They mirror the GORM repositories' behavior closely enough
// to exercise service and controller logic without a database.
package repositorytest

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository"
)

// Store holds all in-memory tables. Access it directly in tests to
// seed rows or assert on final state.
type Store struct {
	mu sync.Mutex

	nextID        uint
	Merchants     []*models.Merchant
	Accounts      []*models.ConnectedAccount
	Subscriptions []*models.Subscription
	PauseEvents   []*models.PauseEvent
	Checkouts     []*models.PendingCheckout
	WebhookEvents []*models.WebhookEvent
}

// NewRepositories returns a repository set backed by a fresh in-memory
// store, plus the store itself for seeding and assertions.
func NewRepositories() (*repository.Repositories, *Store) {
	s := &Store{}
	repos := &repository.Repositories{
		Merchant:     &merchantRepo{s},
		Account:      &accountRepo{s},
		Subscription: &subscriptionRepo{s},
		Pause:        &pauseRepo{s},
		Checkout:     &checkoutRepo{s},
		WebhookEvent: &webhookEventRepo{s},
	}
	return repos, s
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// SeedAccount adds an active connected account.
func (s *Store) SeedAccount(principalID, accountID string) *models.ConnectedAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := &models.ConnectedAccount{
		ID:          s.id(),
		PrincipalID: principalID,
		AccountID:   accountID,
		Status:      models.AccountStatusActive,
		LinkedAt:    time.Now(),
	}
	s.Accounts = append(s.Accounts, account)
	return account
}

// SeedSubscription adds a subscription mirror row.
func (s *Store) SeedSubscription(principalID, accountID, stripeSubID, status string, monthlyValue float64) *models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &models.Subscription{
		ID:           s.id(),
		PrincipalID:  principalID,
		AccountID:    accountID,
		StripeSubID:  stripeSubID,
		Status:       status,
		MonthlyValue: monthlyValue,
	}
	s.Subscriptions = append(s.Subscriptions, sub)
	return sub
}

type merchantRepo struct{ s *Store }

func (r *merchantRepo) GetByPrincipalID(principalID string) (*models.Merchant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.Merchants {
		if m.PrincipalID == principalID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *merchantRepo) GetByStripeCustomerID(customerID string) (*models.Merchant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if customerID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	for _, m := range r.s.Merchants {
		if m.StripeCustomerID == customerID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *merchantRepo) GetOrCreateByPrincipalID(principalID string) (*models.Merchant, error) {
	if m, err := r.GetByPrincipalID(principalID); err == nil {
		return m, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := &models.Merchant{
		ID:          r.s.id(),
		PrincipalID: principalID,
		Plan:        models.PlanFree,
		Status:      models.MerchantStatusActive,
	}
	r.s.Merchants = append(r.s.Merchants, m)
	return m, nil
}

func (r *merchantRepo) Save(merchant *models.Merchant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.Merchants {
		if m.ID == merchant.ID {
			r.s.Merchants[i] = merchant
			return nil
		}
	}
	if merchant.ID == 0 {
		merchant.ID = r.s.id()
	}
	r.s.Merchants = append(r.s.Merchants, merchant)
	return nil
}

type accountRepo struct{ s *Store }

func (r *accountRepo) GetOwned(principalID, accountID string) (*models.ConnectedAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Accounts {
		if a.PrincipalID == principalID && a.AccountID == accountID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *accountRepo) GetByAccountID(accountID string) (*models.ConnectedAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Accounts {
		if a.AccountID == accountID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *accountRepo) ListByPrincipal(principalID string) ([]models.ConnectedAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ConnectedAccount
	for _, a := range r.s.Accounts {
		if a.PrincipalID == principalID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *accountRepo) Upsert(account *models.ConnectedAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Accounts {
		if a.PrincipalID == account.PrincipalID && a.AccountID == account.AccountID {
			a.Scope = account.Scope
			a.Status = account.Status
			a.LinkedAt = account.LinkedAt
			account.ID = a.ID
			return nil
		}
	}
	account.ID = r.s.id()
	clone := *account
	r.s.Accounts = append(r.s.Accounts, &clone)
	return nil
}

type subscriptionRepo struct{ s *Store }

func (r *subscriptionRepo) GetOwned(principalID, stripeSubID string) (*models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.Subscriptions {
		if sub.PrincipalID == principalID && sub.StripeSubID == stripeSubID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *subscriptionRepo) ListByAccount(principalID, accountID string) ([]models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Subscription
	for _, sub := range r.s.Subscriptions {
		if sub.PrincipalID == principalID && sub.AccountID == accountID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *subscriptionRepo) CountByStatus(principalID, accountID, status string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sub := range r.s.Subscriptions {
		if sub.PrincipalID == principalID && sub.AccountID == accountID && sub.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *subscriptionRepo) SumMonthlyValueByStatus(principalID, accountID, status string) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum float64
	for _, sub := range r.s.Subscriptions {
		if sub.PrincipalID == principalID && sub.AccountID == accountID && sub.Status == status {
			sum += sub.MonthlyValue
		}
	}
	return sum, nil
}

func (r *subscriptionRepo) Upsert(sub *models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Subscriptions {
		if existing.PrincipalID == sub.PrincipalID && existing.StripeSubID == sub.StripeSubID {
			sub.ID = existing.ID
			*existing = *sub
			return nil
		}
	}
	sub.ID = r.s.id()
	clone := *sub
	r.s.Subscriptions = append(r.s.Subscriptions, &clone)
	return nil
}

func (r *subscriptionRepo) UpdateStatus(principalID, stripeSubID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.Subscriptions {
		if sub.PrincipalID == principalID && sub.StripeSubID == stripeSubID {
			sub.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *subscriptionRepo) Delete(principalID, stripeSubID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, sub := range r.s.Subscriptions {
		if sub.PrincipalID == principalID && sub.StripeSubID == stripeSubID {
			r.s.Subscriptions = append(r.s.Subscriptions[:i], r.s.Subscriptions[i+1:]...)
			return nil
		}
	}
	return nil
}

type pauseRepo struct{ s *Store }

func (r *pauseRepo) Create(event *models.PauseEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = r.s.id()
	clone := *event
	r.s.PauseEvents = append(r.s.PauseEvents, &clone)
	return nil
}

func (r *pauseRepo) LatestOpen(principalID, accountID, stripeSubID string) (*models.PauseEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var open []*models.PauseEvent
	for _, e := range r.s.PauseEvents {
		if e.PrincipalID == principalID && e.AccountID == accountID && e.StripeSubID == stripeSubID && e.Open() {
			open = append(open, e)
		}
	}
	if len(open) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(open, func(i, j int) bool { return open[i].PausedAt.After(open[j].PausedAt) })
	return open[0], nil
}

func (r *pauseRepo) MarkResumed(id uint, resumedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.PauseEvents {
		if e.ID == id {
			e.ResumedAt = &resumedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *pauseRepo) CountByAccount(principalID, accountID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.PauseEvents {
		if e.PrincipalID == principalID && e.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

type checkoutRepo struct{ s *Store }

func (r *checkoutRepo) Create(checkout *models.PendingCheckout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	checkout.ID = r.s.id()
	clone := *checkout
	r.s.Checkouts = append(r.s.Checkouts, &clone)
	return nil
}

func (r *checkoutRepo) GetBySessionID(sessionID string) (*models.PendingCheckout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, co := range r.s.Checkouts {
		if co.SessionID == sessionID {
			return co, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *checkoutRepo) MarkCompleted(id uint, completedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, co := range r.s.Checkouts {
		if co.ID == id {
			co.CompletedAt = &completedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type webhookEventRepo struct{ s *Store }

func (r *webhookEventRepo) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.WebhookEvents {
		if e.Provider == event.Provider && e.ProviderEventID == event.ProviderEventID {
			return false, e, nil
		}
	}
	event.ID = r.s.id()
	clone := *event
	r.s.WebhookEvents = append(r.s.WebhookEvents, &clone)
	return true, &clone, nil
}

func (r *webhookEventRepo) MarkProcessed(id uint, processingError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, e := range r.s.WebhookEvents {
		if e.ID == id {
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
