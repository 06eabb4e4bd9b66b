// Package reconcile converts verified Stripe webhook events into
// deterministic, idempotent updates of the local subscription mirror,
// including resolving which merchant principal an event belongs to.
package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository"
)

// Reconciler applies webhook events to the stores. Handlers are
// idempotent: Stripe delivers at least once and retries on 5xx, so
// replaying an event must produce the same end state.
type Reconciler struct {
	repos *repository.Repositories
}

// NewReconciler creates a reconciler from an injected repository set.
func NewReconciler(repos *repository.Repositories) *Reconciler {
	return &Reconciler{repos: repos}
}

// NewReconcilerFromDB creates a reconciler from a GORM DB handle.
func NewReconcilerFromDB(db *gorm.DB) *Reconciler {
	return NewReconciler(repository.NewRepositories(db))
}

// RecordEvent persists the raw event for deduplication and audit.
// Returns created=false when the event id was seen before.
func (r *Reconciler) RecordEvent(eventID, eventType string, payload []byte, signatureValid bool) (bool, *models.WebhookEvent, error) {
	return r.repos.WebhookEvent.CreateIfNotExists(&models.WebhookEvent{
		Provider:        models.WebhookProviderStripe,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(payload),
		SignatureValid:  signatureValid,
	})
}

// MarkProcessed marks a recorded event as handled and stores an
// optional processing error.
func (r *Reconciler) MarkProcessed(webhookEventID uint, processingErr error) error {
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return r.repos.WebhookEvent.MarkProcessed(webhookEventID, errMsg)
}

// Process applies one verified event. A nil return means the event was
// handled or deliberately skipped (unknown account, unmatched checkout,
// unhandled type); those are acknowledged so Stripe stops retrying.
// A non-nil return means a store failure: the caller responds 5xx and
// Stripe redelivers.
func (r *Reconciler) Process(event *stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return r.handleSubscriptionUpserted(event)
	case "customer.subscription.deleted":
		return r.handleSubscriptionDeleted(event)
	case "checkout.session.completed":
		return r.handleCheckoutCompleted(event)
	default:
		log.Printf("webhook: unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// subscriptionPayload is the subset of a Stripe subscription object the
// mirror projects. Decoding a local struct keeps us independent of SDK
// expansion behavior.
type subscriptionPayload struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	CanceledAt       int64  `json:"canceled_at"`
	PauseCollection  *struct {
		Behavior string `json:"behavior"`
	} `json:"pause_collection"`
	Items struct {
		Data []struct {
			Quantity int64 `json:"quantity"`
			Price    struct {
				UnitAmount int64 `json:"unit_amount"`
				Recurring  struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

type checkoutSessionPayload struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

func (r *Reconciler) handleSubscriptionUpserted(event *stripe.Event) error {
	account, ok, err := r.resolveAccount(event)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		log.Printf("webhook: undecodable subscription payload in event %s: %v", event.ID, err)
		return nil
	}
	if payload.ID == "" {
		log.Printf("webhook: subscription event %s without subscription id", event.ID)
		return nil
	}

	eventAt := time.Unix(event.Created, 0)

	return r.repos.Transaction(func(tx *repository.Repositories) error {
		sub, err := tx.Subscription.GetOwned(account.PrincipalID, payload.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			sub = &models.Subscription{
				PrincipalID: account.PrincipalID,
				AccountID:   account.AccountID,
				StripeSubID: payload.ID,
			}
		}

		// Stripe does not guarantee delivery order; a delayed older
		// event must not overwrite newer mirror state.
		if sub.LastEventAt != nil && eventAt.Before(*sub.LastEventAt) {
			log.Printf("webhook: skipping stale event %s for subscription %s", event.ID, payload.ID)
			return nil
		}

		// Merge semantics: only fields carried by the event are touched.
		if payload.Customer != "" {
			sub.CustomerID = payload.Customer
		}
		if payload.Status != "" {
			sub.Status = projectStatus(payload)
		}
		if payload.CurrentPeriodEnd > 0 {
			t := time.Unix(payload.CurrentPeriodEnd, 0)
			sub.CurrentPeriodEnd = &t
		}
		if payload.CanceledAt > 0 {
			t := time.Unix(payload.CanceledAt, 0)
			sub.CanceledAt = &t
		}
		if mv := monthlyValue(payload); mv > 0 {
			sub.MonthlyValue = mv
		}
		sub.LastEventAt = &eventAt

		return tx.Subscription.Upsert(sub)
	})
}

func (r *Reconciler) handleSubscriptionDeleted(event *stripe.Event) error {
	account, ok, err := r.resolveAccount(event)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		log.Printf("webhook: undecodable subscription payload in event %s: %v", event.ID, err)
		return nil
	}
	if payload.ID == "" {
		return nil
	}

	// Deleting an already-absent mirror row is a no-op, not an error.
	return r.repos.Transaction(func(tx *repository.Repositories) error {
		return tx.Subscription.Delete(account.PrincipalID, payload.ID)
	})
}

func (r *Reconciler) handleCheckoutCompleted(event *stripe.Event) error {
	var payload checkoutSessionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		log.Printf("webhook: undecodable checkout payload in event %s: %v", event.ID, err)
		return nil
	}

	principalID, pending, err := r.resolveCheckoutPrincipal(payload)
	if err != nil {
		return err
	}
	if principalID == "" {
		log.Printf("webhook: unmatched checkout session %s (event %s), dropping", payload.ID, event.ID)
		return nil
	}

	return r.repos.Transaction(func(tx *repository.Repositories) error {
		merchant, err := tx.Merchant.GetOrCreateByPrincipalID(principalID)
		if err != nil {
			return err
		}

		merchant.Plan = models.PlanLifetime
		merchant.PlanType = models.PlanLifetime
		merchant.Status = models.MerchantStatusActive
		if payload.Customer != "" {
			merchant.StripeCustomerID = payload.Customer
		}
		if err := tx.Merchant.Save(merchant); err != nil {
			return err
		}

		if pending != nil && pending.CompletedAt == nil {
			if err := tx.Checkout.MarkCompleted(pending.ID, time.Now()); err != nil {
				return err
			}
		}
		return nil
	})
}

// resolveAccount maps a Connect event to the owning principal via the
// stored connected-account record. Events for accounts no onboarded
// merchant has linked are skipped: connected accounts can serve other,
// unrelated platforms.
func (r *Reconciler) resolveAccount(event *stripe.Event) (*models.ConnectedAccount, bool, error) {
	if event.Account == "" {
		log.Printf("webhook: platform event %s of type %s on the connect handler, skipping", event.ID, event.Type)
		return nil, false, nil
	}

	account, err := r.repos.Account.GetByAccountID(event.Account)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook: no merchant linked to account %s, skipping event %s", event.Account, event.ID)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("account lookup failed: %w", err)
	}
	return account, true, nil
}

// resolveCheckoutPrincipal works through the ordered candidate signals
// and stops at the first verified match. It never guesses: a metadata
// value that no pending-checkout record backs is ignored, so forged
// metadata cannot hijack another principal's checkout.
func (r *Reconciler) resolveCheckoutPrincipal(payload checkoutSessionPayload) (string, *models.PendingCheckout, error) {
	// Signal 1: application-supplied linkage, verified against the
	// pending-checkout record created when the session was opened.
	claimed := payload.Metadata["merchant_id"]
	if claimed == "" {
		claimed = payload.ClientReferenceID
	}
	if claimed != "" && payload.ID != "" {
		pending, err := r.repos.Checkout.GetBySessionID(payload.ID)
		if err == nil {
			switch {
			case pending.PrincipalID != claimed:
				log.Printf("webhook: checkout session %s claims principal %s but was opened by another principal", payload.ID, claimed)
			case time.Now().After(pending.ExpiresAt):
				// An expired pending record no longer backs the claim;
				// fall through to the customer-id signal.
				log.Printf("webhook: pending checkout %s expired, ignoring metadata claim", payload.ID)
			default:
				return claimed, pending, nil
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("pending checkout lookup failed: %w", err)
		}
	}

	// Signal 2: a customer id already associated with a principal.
	if payload.Customer != "" {
		merchant, err := r.repos.Merchant.GetByStripeCustomerID(payload.Customer)
		if err == nil {
			return merchant.PrincipalID, nil, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("merchant lookup failed: %w", err)
		}
	}

	return "", nil, nil
}

// projectStatus maps the Stripe subscription state onto the mirror's
// three-state lifecycle. A set pause_collection wins over the raw
// status since paused collection reports status "active" upstream.
func projectStatus(payload subscriptionPayload) string {
	if payload.Status == "canceled" {
		return models.SubscriptionStatusCanceled
	}
	if payload.PauseCollection != nil && payload.PauseCollection.Behavior != "" {
		return models.SubscriptionStatusPaused
	}
	if payload.Status == "paused" {
		return models.SubscriptionStatusPaused
	}
	return models.SubscriptionStatusActive
}

// monthlyValue sums the monthly recurring value carried by the event's
// line items, in major currency units.
func monthlyValue(payload subscriptionPayload) float64 {
	var cents int64
	for _, item := range payload.Items.Data {
		if item.Price.Recurring.Interval != "month" {
			continue
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		cents += item.Price.UnitAmount * qty
	}
	return float64(cents) / 100
}
