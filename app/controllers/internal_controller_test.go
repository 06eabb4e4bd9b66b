package controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PauseFlow/internal/pkg/stripeapi"
)

func TestChurnPredict(t *testing.T) {
	app, _, _ := newTestApp(t, "merchant-1")

	resp := postJSON(t, app, "/api/internal/predict", fiber.Map{
		"reason":               "switching to a cheaper competitor",
		"pauseLengthDays":      90,
		"planPrice":            49.0,
		"tenureDays":           30,
		"failedPaymentsLast90": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.InDelta(t, 0.8, body["riskScore"], 0.001)
	assert.Equal(t, "high", body["label"])
}

func TestChurnPredictValidation(t *testing.T) {
	app, _, _ := newTestApp(t, "merchant-1")

	resp := postJSON(t, app, "/api/internal/predict", fiber.Map{
		"pauseLengthDays": -1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChurnPredictUnauthenticated(t *testing.T) {
	app, _, _ := newTestApp(t, "")

	resp := postJSON(t, app, "/api/internal/predict", fiber.Map{"reason": "vacation"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckoutInit(t *testing.T) {
	app, store, fake := newTestApp(t, "merchant-1")
	fake.checkout = &stripeapi.CheckoutSession{SessionID: "cs_123", URL: "https://checkout.stripe.com/pay/cs_123"}

	resp := postJSON(t, app, "/api/billing/checkout", fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "cs_123", body["sessionId"])

	require.Len(t, store.Checkouts, 1)
	assert.Equal(t, "merchant-1", store.Checkouts[0].PrincipalID)
	assert.Equal(t, "cs_123", store.Checkouts[0].SessionID)
}
