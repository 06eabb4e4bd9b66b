// Package pausing implements the merchant-facing subscription actions:
// listing, pausing and resuming mirrored subscriptions, and the
// dashboard summary. Every operation passes the ownership resolver
// before touching subscription data, and local state is only mutated
// after the Stripe call confirmed success.
package pausing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/metrics"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/ownership"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/stripeapi"
)

// ErrExternalCall wraps Stripe failures on the write path. Local state
// is never mutated when this class occurs; the boundary surfaces it as
// a 500 with a redacted message and leaves retrying to the client.
var ErrExternalCall = errors.New("external payment call failed")

const defaultPauseReason = "No reason provided"

// Service coordinates ownership checks, Stripe calls and store writes.
type Service struct {
	repos      *repository.Repositories
	stripe     stripeapi.Client
	resolver   *ownership.Resolver
	aggregator *metrics.Aggregator
}

// NewService creates the service from an injected repository set and
// Stripe client.
func NewService(repos *repository.Repositories, stripe stripeapi.Client) *Service {
	return &Service{
		repos:      repos,
		stripe:     stripe,
		resolver:   ownership.NewResolver(repos.Account, repos.Subscription),
		aggregator: metrics.NewAggregator(repos.Subscription, repos.Pause),
	}
}

// NewServiceFromDB creates the service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, stripe stripeapi.Client) *Service {
	return NewService(repository.NewRepositories(db), stripe)
}

// ListSubscriptions returns the mirrored subscriptions of one owned
// account.
func (s *Service) ListSubscriptions(ctx context.Context, principalID, accountID string) ([]models.Subscription, error) {
	if _, err := s.resolver.EnsureAccountOwned(ctx, principalID, accountID); err != nil {
		return nil, err
	}
	return s.repos.Subscription.ListByAccount(principalID, accountID)
}

// Pause pauses collection on an owned subscription and records the
// audit event. The Stripe call happens first; on failure nothing is
// written locally.
func (s *Service) Pause(ctx context.Context, principalID, accountID, stripeSubID, reason, actor string) (*models.PauseEvent, error) {
	if _, err := s.resolver.EnsureAccountOwned(ctx, principalID, accountID); err != nil {
		return nil, err
	}
	if _, err := s.resolver.EnsureSubscriptionOwned(ctx, principalID, accountID, stripeSubID); err != nil {
		return nil, err
	}

	if _, err := s.stripe.UpdateSubscriptionPauseState(ctx, stripeSubID, accountID, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalCall, err)
	}

	if err := s.repos.Subscription.UpdateStatus(principalID, stripeSubID, models.SubscriptionStatusPaused); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultPauseReason
	}
	if actor == "" {
		actor = models.PauseActorAdmin
	}
	event := &models.PauseEvent{
		PrincipalID: principalID,
		AccountID:   accountID,
		StripeSubID: stripeSubID,
		Reason:      reason,
		Actor:       actor,
		PausedAt:    time.Now(),
	}
	if err := s.repos.Pause.Create(event); err != nil {
		return nil, err
	}

	log.Printf("subscription %s paused for principal %s (account %s)", stripeSubID, principalID, accountID)
	return event, nil
}

// Resume lifts the pause on an owned subscription and closes the most
// recent open pause event, if any.
func (s *Service) Resume(ctx context.Context, principalID, accountID, stripeSubID string) error {
	if _, err := s.resolver.EnsureAccountOwned(ctx, principalID, accountID); err != nil {
		return err
	}
	if _, err := s.resolver.EnsureSubscriptionOwned(ctx, principalID, accountID, stripeSubID); err != nil {
		return err
	}

	if _, err := s.stripe.UpdateSubscriptionPauseState(ctx, stripeSubID, accountID, false); err != nil {
		return fmt.Errorf("%w: %v", ErrExternalCall, err)
	}

	if err := s.repos.Subscription.UpdateStatus(principalID, stripeSubID, models.SubscriptionStatusActive); err != nil {
		return err
	}

	latest, err := s.repos.Pause.LatestOpen(principalID, accountID, stripeSubID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// No open pause event; the resume may have been webhook-driven.
	} else {
		if err := s.repos.Pause.MarkResumed(latest.ID, time.Now()); err != nil {
			return err
		}
	}

	log.Printf("subscription %s resumed for principal %s (account %s)", stripeSubID, principalID, accountID)
	return nil
}

// Summary computes the dashboard aggregates for one owned account.
func (s *Service) Summary(ctx context.Context, principalID, accountID string) (*metrics.Summary, error) {
	if _, err := s.resolver.EnsureAccountOwned(ctx, principalID, accountID); err != nil {
		return nil, err
	}
	return s.aggregator.Summarize(ctx, principalID, accountID)
}
