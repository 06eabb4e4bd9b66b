package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PauseFlow/app/models"
)

func TestMetricsSummary(t *testing.T) {
	app, store, _ := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-1", "acct_111")
	store.SeedSubscription("merchant-1", "acct_111", "sub_a", models.SubscriptionStatusActive, 49)
	store.SeedSubscription("merchant-1", "acct_111", "sub_b", models.SubscriptionStatusPaused, 19.99)

	require.NoError(t, getRepos().Pause.Create(&models.PauseEvent{
		PrincipalID: "merchant-1", AccountID: "acct_111", StripeSubID: "sub_b", PausedAt: time.Now(),
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/summary?accountId=acct_111", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.InDelta(t, 19.99, body["revenueSaved"], 0.001)
	assert.EqualValues(t, 1, body["activeCustomers"])
	assert.EqualValues(t, 1, body["pausedCustomers"])
	assert.EqualValues(t, 1, body["totalPauseEvents"])
}

func TestMetricsSummaryDeniedForForeignAccount(t *testing.T) {
	app, store, _ := newTestApp(t, "merchant-1")
	store.SeedAccount("merchant-2", "acct_222")

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/summary?accountId=acct_222", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "account_not_owned", body["reason"])
}

func TestMetricsSummaryRequiresAccountID(t *testing.T) {
	app, _, _ := newTestApp(t, "merchant-1")

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/summary", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
