package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PauseFlow/internal/pkg/churn"
)

// ChurnPredictRequest is the body for POST /api/internal/predict.
type ChurnPredictRequest struct {
	Reason               string  `json:"reason" validate:"omitempty,max=200"`
	PauseLengthDays      int     `json:"pauseLengthDays" validate:"gte=0"`
	PlanPrice            float64 `json:"planPrice" validate:"gte=0"`
	TenureDays           int     `json:"tenureDays" validate:"gte=0"`
	FailedPaymentsLast90 int     `json:"failedPaymentsLast90" validate:"gte=0"`
}

// HandleChurnPredict scores how likely a pausing customer is to cancel
// outright. POST /api/internal/predict
func HandleChurnPredict(c *fiber.Ctx) error {
	if _, ok := requirePrincipal(c); !ok {
		return nil
	}

	var req ChurnPredictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input"})
	}
	if err := validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	prediction := churn.Predict(churn.Input{
		Reason:               req.Reason,
		PauseLengthDays:      req.PauseLengthDays,
		PlanPrice:            req.PlanPrice,
		TenureDays:           req.TenureDays,
		FailedPaymentsLast90: req.FailedPaymentsLast90,
	})

	return c.JSON(prediction)
}
