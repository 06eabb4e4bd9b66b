package reconcile

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository/repositorytest"
)

func subscriptionEvent(id, eventType, accountID string, created int64, raw string) *stripe.Event {
	return &stripe.Event{
		ID:      id,
		Type:    stripe.EventType(eventType),
		Account: accountID,
		Created: created,
		Data:    &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func activeSubJSON(subID string, unitAmountCents int64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"customer": "cus_42",
		"status": "active",
		"current_period_end": 1790000000,
		"items": {"data": [{"quantity": 1, "price": {"unit_amount": %d, "recurring": {"interval": "month"}}}]}
	}`, subID, unitAmountCents)
}

func TestRecordEventDeduplicates(t *testing.T) {
	repos, _ := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	created, first, err := r.RecordEvent("evt_1", "customer.subscription.updated", []byte(`{}`), true)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first)

	created, again, err := r.RecordEvent("evt_1", "customer.subscription.updated", []byte(`{}`), true)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}

func TestSubscriptionUpsertCreatesMirrorRow(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	store.SeedAccount("merchant-1", "acct_111")
	r := NewReconciler(repos)

	event := subscriptionEvent("evt_1", "customer.subscription.created", "acct_111", 1700000000, activeSubJSON("sub_abc", 4900))
	require.NoError(t, r.Process(event))

	sub, err := repos.Subscription.GetOwned("merchant-1", "sub_abc")
	require.NoError(t, err)
	assert.Equal(t, "acct_111", sub.AccountID)
	assert.Equal(t, "cus_42", sub.CustomerID)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.InDelta(t, 49.0, sub.MonthlyValue, 0.001)
	require.NotNil(t, sub.LastEventAt)
	assert.Equal(t, time.Unix(1700000000, 0), *sub.LastEventAt)
}

func TestSubscriptionUpsertIsIdempotent(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	store.SeedAccount("merchant-1", "acct_111")
	r := NewReconciler(repos)

	event := subscriptionEvent("evt_1", "customer.subscription.created", "acct_111", 1700000000, activeSubJSON("sub_abc", 4900))
	require.NoError(t, r.Process(event))
	require.NoError(t, r.Process(event))

	assert.Len(t, store.Subscriptions, 1)
}

func TestStaleEventDoesNotOverwriteNewerState(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	store.SeedAccount("merchant-1", "acct_111")
	r := NewReconciler(repos)

	pausedJSON := `{"id": "sub_abc", "status": "active", "pause_collection": {"behavior": "mark_uncollectible"}}`
	require.NoError(t, r.Process(subscriptionEvent("evt_new", "customer.subscription.updated", "acct_111", 1700000100, pausedJSON)))

	// An older event arriving late must be skipped.
	require.NoError(t, r.Process(subscriptionEvent("evt_old", "customer.subscription.updated", "acct_111", 1700000000, activeSubJSON("sub_abc", 4900))))

	sub, err := repos.Subscription.GetOwned("merchant-1", "sub_abc")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPaused, sub.Status)
}

func TestPauseCollectionWinsOverActiveStatus(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	store.SeedAccount("merchant-1", "acct_111")
	r := NewReconciler(repos)

	raw := `{"id": "sub_abc", "status": "active", "pause_collection": {"behavior": "mark_uncollectible"}}`
	require.NoError(t, r.Process(subscriptionEvent("evt_1", "customer.subscription.updated", "acct_111", 1700000000, raw)))

	sub, err := repos.Subscription.GetOwned("merchant-1", "sub_abc")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPaused, sub.Status)
}

func TestUnknownAccountIsSkipped(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	event := subscriptionEvent("evt_1", "customer.subscription.created", "acct_unknown", 1700000000, activeSubJSON("sub_abc", 4900))
	require.NoError(t, r.Process(event))
	assert.Empty(t, store.Subscriptions)
}

func TestUnhandledEventTypeIsAcknowledged(t *testing.T) {
	repos, _ := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	event := subscriptionEvent("evt_1", "invoice.paid", "acct_111", 1700000000, `{}`)
	assert.NoError(t, r.Process(event))
}

func TestSubscriptionDeletedRemovesMirrorRow(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedSubscription("merchant-1", "acct_111", "sub_abc", models.SubscriptionStatusActive, 49)
	r := NewReconciler(repos)

	event := subscriptionEvent("evt_1", "customer.subscription.deleted", "acct_111", 1700000000, `{"id": "sub_abc"}`)
	require.NoError(t, r.Process(event))
	assert.Empty(t, store.Subscriptions)

	// Replaying the deletion is a no-op, not an error.
	require.NoError(t, r.Process(event))
}

func TestCheckoutCompletedWithVerifiedMetadata(t *testing.T) {
	repos, _ := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	require.NoError(t, repos.Checkout.Create(&models.PendingCheckout{
		PrincipalID: "merchant-1",
		SessionID:   "cs_123",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	raw := `{"id": "cs_123", "customer": "cus_42", "metadata": {"merchant_id": "merchant-1"}}`
	event := subscriptionEvent("evt_1", "checkout.session.completed", "", 1700000000, raw)
	require.NoError(t, r.Process(event))

	merchant, err := repos.Merchant.GetByPrincipalID("merchant-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanLifetime, merchant.Plan)
	assert.Equal(t, "cus_42", merchant.StripeCustomerID)

	pending, err := repos.Checkout.GetBySessionID("cs_123")
	require.NoError(t, err)
	assert.NotNil(t, pending.CompletedAt)
}

func TestCheckoutForgedMetadataIsDropped(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	// The session was opened by merchant-1; the metadata claims
	// merchant-2. The claim must not be honored.
	require.NoError(t, repos.Checkout.Create(&models.PendingCheckout{
		PrincipalID: "merchant-1",
		SessionID:   "cs_123",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	raw := `{"id": "cs_123", "metadata": {"merchant_id": "merchant-2"}}`
	event := subscriptionEvent("evt_1", "checkout.session.completed", "", 1700000000, raw)
	require.NoError(t, r.Process(event))

	assert.Empty(t, store.Merchants)
}

func TestCheckoutFallsBackToCustomerID(t *testing.T) {
	repos, _ := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	require.NoError(t, repos.Merchant.Save(&models.Merchant{
		PrincipalID:      "merchant-1",
		Plan:             models.PlanFree,
		StripeCustomerID: "cus_42",
	}))

	raw := `{"id": "cs_unseen", "customer": "cus_42"}`
	event := subscriptionEvent("evt_1", "checkout.session.completed", "", 1700000000, raw)
	require.NoError(t, r.Process(event))

	merchant, err := repos.Merchant.GetByPrincipalID("merchant-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanLifetime, merchant.Plan)
}

func TestCheckoutWithNoSignalIsDropped(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	raw := `{"id": "cs_unknown"}`
	event := subscriptionEvent("evt_1", "checkout.session.completed", "", 1700000000, raw)
	require.NoError(t, r.Process(event))
	assert.Empty(t, store.Merchants)
}

func TestMonthlyValueIgnoresNonMonthlyItems(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	store.SeedAccount("merchant-1", "acct_111")
	r := NewReconciler(repos)

	raw := `{
		"id": "sub_abc",
		"status": "active",
		"items": {"data": [
			{"quantity": 2, "price": {"unit_amount": 1000, "recurring": {"interval": "month"}}},
			{"quantity": 1, "price": {"unit_amount": 99900, "recurring": {"interval": "year"}}}
		]}
	}`
	require.NoError(t, r.Process(subscriptionEvent("evt_1", "customer.subscription.updated", "acct_111", 1700000000, raw)))

	sub, err := repos.Subscription.GetOwned("merchant-1", "sub_abc")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, sub.MonthlyValue, 0.001)
}

func TestCheckoutExpiredPendingIsNotHonored(t *testing.T) {
	repos, store := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	// The pending record exists but its TTL has lapsed; the metadata
	// claim must no longer be honored.
	require.NoError(t, repos.Checkout.Create(&models.PendingCheckout{
		PrincipalID: "merchant-1",
		SessionID:   "cs_123",
		ExpiresAt:   time.Now().Add(-time.Minute),
	}))

	raw := `{"id": "cs_123", "metadata": {"merchant_id": "merchant-1"}}`
	event := subscriptionEvent("evt_1", "checkout.session.completed", "", 1700000000, raw)
	require.NoError(t, r.Process(event))

	assert.Empty(t, store.Merchants)
	pending, err := repos.Checkout.GetBySessionID("cs_123")
	require.NoError(t, err)
	assert.Nil(t, pending.CompletedAt)
}

func TestCheckoutExpiredPendingFallsBackToCustomerID(t *testing.T) {
	repos, _ := repositorytest.NewRepositories()
	r := NewReconciler(repos)

	require.NoError(t, repos.Checkout.Create(&models.PendingCheckout{
		PrincipalID: "merchant-1",
		SessionID:   "cs_123",
		ExpiresAt:   time.Now().Add(-time.Minute),
	}))
	require.NoError(t, repos.Merchant.Save(&models.Merchant{
		PrincipalID:      "merchant-1",
		Plan:             models.PlanFree,
		StripeCustomerID: "cus_42",
	}))

	raw := `{"id": "cs_123", "customer": "cus_42", "metadata": {"merchant_id": "merchant-1"}}`
	event := subscriptionEvent("evt_1", "checkout.session.completed", "", 1700000000, raw)
	require.NoError(t, r.Process(event))

	merchant, err := repos.Merchant.GetByPrincipalID("merchant-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanLifetime, merchant.Plan)
}
