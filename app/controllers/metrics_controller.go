package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const metricsTimeout = 10 * time.Second

// HandleMetricsSummary returns the dashboard aggregates of one owned
// account. GET /api/metrics/summary?accountId=acct_...
func HandleMetricsSummary(c *fiber.Ctx) error {
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

	ctx, cancel := context.WithTimeout(c.UserContext(), metricsTimeout)
	defer cancel()

	summary, err := getPausingService().Summary(ctx, principalID, accountID)
	if err != nil {
		if denial, ok := asOwnershipError(err); ok {
			return respondOwnershipError(c, denial)
		}
		log.Printf("metrics summary failed for principal %s account %s: %v", principalID, accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	return c.JSON(summary)
}
