package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository/repositorytest"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/merchantcontext"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/stripeapi"
)

// fakeStripeClient is a configurable stand-in for the Stripe boundary.
type fakeStripeClient struct {
	pauseCalls   int
	pauseErr     error
	verifyEvent  stripe.Event
	verifyErr    error
	checkout     *stripeapi.CheckoutSession
	checkoutErr  error
	oauthResult  *stripeapi.OAuthResult
	oauthErr     error
	authorizeURL string
}

func (f *fakeStripeClient) UpdateSubscriptionPauseState(_ context.Context, stripeSubID, _ string, _ bool) (*stripe.Subscription, error) {
	f.pauseCalls++
	if f.pauseErr != nil {
		return nil, f.pauseErr
	}
	return &stripe.Subscription{ID: stripeSubID}, nil
}

func (f *fakeStripeClient) ExchangeOAuthCode(context.Context, string) (*stripeapi.OAuthResult, error) {
	return f.oauthResult, f.oauthErr
}

func (f *fakeStripeClient) CreateCheckoutSession(context.Context, string, string, string, string) (*stripeapi.CheckoutSession, error) {
	return f.checkout, f.checkoutErr
}

func (f *fakeStripeClient) AuthorizeURL(string) string { return f.authorizeURL }

func (f *fakeStripeClient) VerifyWebhook([]byte, string) (stripe.Event, error) {
	return f.verifyEvent, f.verifyErr
}

// newTestApp wires the controller package to in-memory stores and
// registers the API routes behind a middleware that stamps the given
// principal. An empty principal simulates an unauthenticated request.
func newTestApp(t *testing.T, principalID string) (*fiber.App, *repositorytest.Store, *fakeStripeClient) {
	t.Helper()
	repos, store := repositorytest.NewRepositories()
	fake := &fakeStripeClient{}
	SetDependencies(repos, fake)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if principalID != "" {
			merchantcontext.SetMerchantContext(c, merchantcontext.MerchantContext{
				PrincipalID: principalID,
				IsLoggedIn:  true,
			})
		}
		return c.Next()
	})
	app.Get("/api/subscriptions", HandleListSubscriptions)
	app.Post("/api/subscriptions/pause", HandlePauseSubscription)
	app.Post("/api/subscriptions/resume", HandleResumeSubscription)
	app.Get("/api/metrics/summary", HandleMetricsSummary)
	app.Post("/api/webhooks/stripe", HandleStripeWebhook)
	app.Post("/api/internal/predict", HandleChurnPredict)
	app.Post("/api/billing/checkout", HandleCheckoutInit)
	return app, store, fake
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestPauseSubscription(t *testing.T) {
	app, store, fake := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedSubscription("merchant-1", "acct_111", "sub_abc", models.SubscriptionStatusActive, 49)

	resp := postJSON(t, app, "/api/subscriptions/pause", fiber.Map{
		"accountId":   "acct_111",
		"stripeSubId": "sub_abc",
		"reason":      "seasonal slowdown",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "paused", body["status"])
	assert.Equal(t, "sub_abc", body["stripeSubId"])
	assert.Equal(t, "seasonal slowdown", body["reason"])

	assert.Equal(t, 1, fake.pauseCalls)
	assert.Equal(t, models.SubscriptionStatusPaused, store.Subscriptions[0].Status)
	require.Len(t, store.PauseEvents, 1)
	assert.Equal(t, models.PauseActorAdmin, store.PauseEvents[0].Actor)
}

func TestPauseSubscriptionValidation(t *testing.T) {
	app, _, fake := newTestApp(t, "merchant-1")

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing account", fiber.Map{"stripeSubId": "sub_abc"}},
		{"bad account prefix", fiber.Map{"accountId": "cus_111", "stripeSubId": "sub_abc"}},
		{"bad subscription prefix", fiber.Map{"accountId": "acct_111", "stripeSubId": "si_abc"}},
		{"reason too long", fiber.Map{"accountId": "acct_111", "stripeSubId": "sub_abc", "reason": string(bytes.Repeat([]byte("x"), 201))}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/subscriptions/pause", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, "invalid_input", body["error"])
		})
	}
	assert.Zero(t, fake.pauseCalls)
}

func TestPauseSubscriptionUnownedAccount(t *testing.T) {
	app, store, fake := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-2", "acct_222")
	store.SeedSubscription("merchant-2", "acct_222", "sub_abc", models.SubscriptionStatusActive, 49)

	resp := postJSON(t, app, "/api/subscriptions/pause", fiber.Map{
		"accountId":   "acct_222",
		"stripeSubId": "sub_abc",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "forbidden", body["error"])
	assert.Equal(t, "account_not_owned", body["reason"])

	assert.Zero(t, fake.pauseCalls)
	assert.Equal(t, models.SubscriptionStatusActive, store.Subscriptions[0].Status)
}

func TestPauseSubscriptionWrongAccount(t *testing.T) {
	app, store, fake := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedAccount("merchant-1", "acct_333")
	store.SeedSubscription("merchant-1", "acct_111", "sub_abc", models.SubscriptionStatusActive, 49)

	resp := postJSON(t, app, "/api/subscriptions/pause", fiber.Map{
		"accountId":   "acct_333",
		"stripeSubId": "sub_abc",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "subscription_not_owned", body["reason"])
	assert.Zero(t, fake.pauseCalls)
}

func TestPauseSubscriptionStripeFailure(t *testing.T) {
	app, store, fake := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedSubscription("merchant-1", "acct_111", "sub_abc", models.SubscriptionStatusActive, 49)
	fake.pauseErr = errors.New("api_connection_error")

	resp := postJSON(t, app, "/api/subscriptions/pause", fiber.Map{
		"accountId":   "acct_111",
		"stripeSubId": "sub_abc",
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "payment_provider_error", body["error"])
	// The provider error detail must not leak to the client.
	assert.NotContains(t, body["message"], "api_connection_error")

	assert.Equal(t, models.SubscriptionStatusActive, store.Subscriptions[0].Status)
	assert.Empty(t, store.PauseEvents)
}

func TestPauseSubscriptionUnauthenticated(t *testing.T) {
	app, _, fake := newTestApp(t, "")

	resp := postJSON(t, app, "/api/subscriptions/pause", fiber.Map{
		"accountId":   "acct_111",
		"stripeSubId": "sub_abc",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, fake.pauseCalls)
}

func TestResumeSubscription(t *testing.T) {
	app, store, fake := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedSubscription("merchant-1", "acct_111", "sub_abc", models.SubscriptionStatusPaused, 49)

	resp := postJSON(t, app, "/api/subscriptions/resume", fiber.Map{
		"accountId":   "acct_111",
		"stripeSubId": "sub_abc",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, 1, fake.pauseCalls)
	assert.Equal(t, models.SubscriptionStatusActive, store.Subscriptions[0].Status)
}

func TestListSubscriptions(t *testing.T) {
	app, store, _ := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedSubscription("merchant-1", "acct_111", "sub_abc", models.SubscriptionStatusActive, 49)
	store.SeedSubscription("merchant-1", "acct_111", "sub_def", models.SubscriptionStatusPaused, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/subscriptions?accountId=acct_111", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	subs, ok := body["subscriptions"].([]any)
	require.True(t, ok)
	assert.Len(t, subs, 2)
}

func TestListSubscriptionsRequiresAccountID(t *testing.T) {
	app, _, _ := newTestApp(t, "merchant-1")

	req := httptest.NewRequest(http.MethodGet, "/api/subscriptions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
