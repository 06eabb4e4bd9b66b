package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/cache"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/entitlements"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/env"
)

const (
	connectStatePrefix = "connect:state:"
	connectStateTTL    = 15 * time.Minute
	connectTimeout     = 25 * time.Second
)

var errPlanLimit = errors.New("plan does not allow linking another account")

// HandleConnectInit starts the Stripe Connect OAuth flow. A single-use
// state token bound to the caller is parked in Redis and embedded in
// the authorize URL. GET /api/connect/oauth/init
func HandleConnectInit(c *fiber.Ctx) error {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	state := uuid.New().String()
	if err := cache.Set(connectStatePrefix+state, principalID, connectStateTTL); err != nil {
		log.Printf("storing connect state for principal %s failed: %v", principalID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	return c.JSON(fiber.Map{"url": getStripeClient().AuthorizeURL(state)})
}

// HandleConnectCallback completes the OAuth flow. The state token is
// consumed atomically, so a replayed callback finds nothing and is
// rejected. GET /api/connect/oauth/callback?code=...&state=...
func HandleConnectCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input"})
	}

	principalID, err := cache.GetDel(connectStatePrefix + state)
	if err != nil || principalID == "" {
		log.Printf("connect callback with unknown or expired state")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid_state"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), connectTimeout)
	defer cancel()

	result, err := getStripeClient().ExchangeOAuthCode(ctx, code)
	if err != nil {
		log.Printf("oauth code exchange failed for principal %s: %v", principalID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "oauth_exchange_failed"})
	}

	err = getRepos().Transaction(func(tx *repository.Repositories) error {
		merchant, err := tx.Merchant.GetOrCreateByPrincipalID(principalID)
		if err != nil {
			return err
		}

		existing, err := tx.Account.ListByPrincipal(principalID)
		if err != nil {
			return err
		}
		alreadyLinked := false
		for _, a := range existing {
			if a.AccountID == result.AccountID {
				alreadyLinked = true
				break
			}
		}
		if !alreadyLinked && !entitlements.CanLinkAccount(merchant.Plan, len(existing)) {
			return errPlanLimit
		}

		account := &models.ConnectedAccount{
			PrincipalID: principalID,
			AccountID:   result.AccountID,
			Scope:       result.Scope,
			Status:      models.AccountStatusActive,
			LinkedAt:    time.Now(),
		}
		if err := tx.Account.Upsert(account); err != nil {
			return err
		}

		merchant.Status = models.MerchantStatusActive
		return tx.Merchant.Save(merchant)
	})
	if err != nil {
		if errors.Is(err, errPlanLimit) {
			log.Printf("principal %s hit the connected-account limit of their plan", principalID)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "plan_limit",
				"message": "Your plan does not allow linking another account.",
			})
		}
		log.Printf("persisting connected account %s for principal %s failed: %v", result.AccountID, principalID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	log.Printf("principal %s linked account %s", principalID, result.AccountID)
	return c.Redirect(env.GetEnv("FRONTEND_BASE_URL", "http://localhost:3000")+"/dashboard?connected=1", fiber.StatusFound)
}

// HandleListAccounts returns the caller's linked accounts.
// GET /api/connect/accounts
func HandleListAccounts(c *fiber.Ctx) error {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	accounts, err := getRepos().Account.ListByPrincipal(principalID)
	if err != nil {
		log.Printf("listing accounts for principal %s failed: %v", principalID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	items := make([]fiber.Map, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, fiber.Map{
			"accountId": account.AccountID,
			"status":    account.Status,
			"linkedAt":  account.LinkedAt,
		})
	}
	return c.JSON(fiber.Map{"accounts": items})
}
