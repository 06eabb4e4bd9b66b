// Package metrics computes point-in-time rollups over the subscription
// and pause stores. Figures are recomputed on every call; there is no
// caching layer, so the dashboard always sees current store state.
package metrics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository"
)

// Summary holds the four dashboard aggregates for one account.
type Summary struct {
	RevenueSaved     float64 `json:"revenueSaved"`
	ActiveCustomers  int64   `json:"activeCustomers"`
	PausedCustomers  int64   `json:"pausedCustomers"`
	TotalPauseEvents int64   `json:"totalPauseEvents"`
}

// Aggregator computes summaries scoped to one (principal, account)
// pair. Callers must confirm account ownership first.
type Aggregator struct {
	subscriptions repository.SubscriptionRepository
	pauses        repository.PauseRepository
}

// NewAggregator creates a metrics aggregator from injected repositories.
func NewAggregator(subscriptions repository.SubscriptionRepository, pauses repository.PauseRepository) *Aggregator {
	return &Aggregator{subscriptions: subscriptions, pauses: pauses}
}

// Summarize computes the four figures concurrently; they are
// independent predicates over the same two stores.
func (a *Aggregator) Summarize(ctx context.Context, principalID, accountID string) (*Summary, error) {
	summary := &Summary{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := a.subscriptions.CountByStatus(principalID, accountID, models.SubscriptionStatusActive)
		summary.ActiveCustomers = count
		return err
	})
	g.Go(func() error {
		count, err := a.subscriptions.CountByStatus(principalID, accountID, models.SubscriptionStatusPaused)
		summary.PausedCustomers = count
		return err
	})
	g.Go(func() error {
		total, err := a.subscriptions.SumMonthlyValueByStatus(principalID, accountID, models.SubscriptionStatusPaused)
		summary.RevenueSaved = total
		return err
	})
	g.Go(func() error {
		count, err := a.pauses.CountByAccount(principalID, accountID)
		summary.TotalPauseEvents = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
