package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/pausing"
)

const subscriptionActionTimeout = 25 * time.Second

// PauseSubscriptionRequest is the body for POST /api/subscriptions/pause.
type PauseSubscriptionRequest struct {
	AccountID   string `json:"accountId" validate:"required,startswith=acct_"`
	StripeSubID string `json:"stripeSubId" validate:"required,startswith=sub_"`
	Reason      string `json:"reason" validate:"omitempty,max=200"`
}

// ResumeSubscriptionRequest is the body for POST /api/subscriptions/resume.
type ResumeSubscriptionRequest struct {
	AccountID   string `json:"accountId" validate:"required,startswith=acct_"`
	StripeSubID string `json:"stripeSubId" validate:"required,startswith=sub_"`
}

// HandleListSubscriptions returns the mirrored subscriptions of one
// connected account. GET /api/subscriptions?accountId=acct_...
func HandleListSubscriptions(c *fiber.Ctx) error {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	accountID := c.Query("accountId")
	if err := validate.Var(accountID, "required,startswith=acct_"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_input",
			"message": "accountId query parameter is required and must start with acct_",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), subscriptionActionTimeout)
	defer cancel()

	subs, err := getPausingService().ListSubscriptions(ctx, principalID, accountID)
	if err != nil {
		if denial, ok := asOwnershipError(err); ok {
			return respondOwnershipError(c, denial)
		}
		log.Printf("list subscriptions failed for principal %s: %v", principalID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	items := make([]fiber.Map, 0, len(subs))
	for _, sub := range subs {
		items = append(items, subscriptionJSON(&sub))
	}
	return c.JSON(fiber.Map{"subscriptions": items})
}

// HandlePauseSubscription pauses collection on a subscription the
// caller owns. POST /api/subscriptions/pause
func HandlePauseSubscription(c *fiber.Ctx) error {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	var req PauseSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input"})
	}
	if err := validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), subscriptionActionTimeout)
	defer cancel()

	event, err := getPausingService().Pause(ctx, principalID, req.AccountID, req.StripeSubID, req.Reason, models.PauseActorAdmin)
	if err != nil {
		return respondPauseActionError(c, principalID, req.StripeSubID, "pause", err)
	}

	return c.JSON(fiber.Map{
		"status":      models.SubscriptionStatusPaused,
		"stripeSubId": req.StripeSubID,
		"pausedAt":    event.PausedAt,
		"reason":      event.Reason,
	})
}

// HandleResumeSubscription lifts a pause on a subscription the caller
// owns. POST /api/subscriptions/resume
func HandleResumeSubscription(c *fiber.Ctx) error {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	var req ResumeSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input"})
	}
	if err := validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), subscriptionActionTimeout)
	defer cancel()

	if err := getPausingService().Resume(ctx, principalID, req.AccountID, req.StripeSubID); err != nil {
		return respondPauseActionError(c, principalID, req.StripeSubID, "resume", err)
	}

	return c.JSON(fiber.Map{
		"status":      models.SubscriptionStatusActive,
		"stripeSubId": req.StripeSubID,
	})
}

func respondPauseActionError(c *fiber.Ctx, principalID, stripeSubID, action string, err error) error {
	if denial, ok := asOwnershipError(err); ok {
		return respondOwnershipError(c, denial)
	}
	if errors.Is(err, pausing.ErrExternalCall) {
		log.Printf("%s of %s failed at payment provider for principal %s: %v", action, stripeSubID, principalID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "payment_provider_error",
			"message": "the payment provider rejected the request, please retry",
		})
	}
	log.Printf("%s of %s failed for principal %s: %v", action, stripeSubID, principalID, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
}

func subscriptionJSON(sub *models.Subscription) fiber.Map {
	return fiber.Map{
		"stripeSubId":      sub.StripeSubID,
		"accountId":        sub.AccountID,
		"customerId":       sub.CustomerID,
		"status":           sub.Status,
		"monthlyValue":     sub.MonthlyValue,
		"currentPeriodEnd": sub.CurrentPeriodEnd,
		"canceledAt":       sub.CanceledAt,
	}
}
