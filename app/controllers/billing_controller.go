package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/env"
)

const checkoutTimeout = 25 * time.Second

// Checkout sessions expire on the Stripe side after 24h; the local
// pending record mirrors that so the reconciler can reject stale
// metadata claims.
const pendingCheckoutTTL = 24 * time.Hour

// HandleCheckoutInit creates a lifetime-plan Checkout Session and
// records it as pending so the completion webhook can be attributed
// without guessing. POST /api/billing/checkout
func HandleCheckoutInit(c *fiber.Ctx) error {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), checkoutTimeout)
	defer cancel()

	frontend := env.GetEnv("FRONTEND_BASE_URL", "http://localhost:3000")
	session, err := getStripeClient().CreateCheckoutSession(
		ctx,
		principalID,
		env.GetEnv("STRIPE_LIFETIME_PRICE_ID", ""),
		frontend+"/dashboard?upgraded=1",
		frontend+"/pricing",
	)
	if err != nil {
		log.Printf("creating checkout session for principal %s failed: %v", principalID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout_create_failed"})
	}

	pending := &models.PendingCheckout{
		PrincipalID: principalID,
		SessionID:   session.SessionID,
		ExpiresAt:   time.Now().Add(pendingCheckoutTTL),
	}
	if err := getRepos().Checkout.Create(pending); err != nil {
		log.Printf("recording pending checkout %s for principal %s failed: %v", session.SessionID, principalID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	return c.JSON(fiber.Map{"sessionId": session.SessionID, "url": session.URL})
}
