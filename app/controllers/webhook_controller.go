package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// HandleStripeWebhook is the single ingress for Stripe events. The
// order is fixed: verify the signature, dedupe, then reconcile. Only a
// store failure returns 500 so Stripe retries; everything understood
// or ignorable is acknowledged with 200.
// POST /api/webhooks/stripe
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.BodyRaw()
	signature := c.Get("Stripe-Signature")

	event, err := getStripeClient().VerifyWebhook(payload, signature)
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	reconciler := getReconciler()
	created, record, err := reconciler.RecordEvent(event.ID, string(event.Type), payload, true)
	if err != nil {
		log.Printf("recording webhook event %s failed: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}
	if !created {
		// Only redeliveries of fully processed events are short-circuited.
		// An event that was recorded but failed processing (we answered
		// 500, Stripe is retrying) must run again, or the retry path
		// would acknowledge without ever applying the event.
		if record.ProcessedAt != nil && record.ProcessingError == "" {
			log.Printf("webhook event %s already processed, acknowledging", event.ID)
			return c.JSON(fiber.Map{"received": true, "duplicate": true})
		}
		log.Printf("webhook event %s redelivered before successful processing, retrying", event.ID)
	}

	processErr := reconciler.Process(&event)
	if err := reconciler.MarkProcessed(record.ID, processErr); err != nil {
		log.Printf("marking webhook event %s processed failed: %v", event.ID, err)
	}
	if processErr != nil {
		log.Printf("processing webhook event %s (%s) failed: %v", event.ID, event.Type, processErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	return c.JSON(fiber.Map{"received": true})
}
