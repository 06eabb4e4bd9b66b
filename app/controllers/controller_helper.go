package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PauseFlow/internal/pkg/merchantcontext"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/ownership"
)

var validate = validator.New()

// requirePrincipal returns the verified principal id or writes a 401.
func requirePrincipal(c *fiber.Ctx) (string, bool) {
	mc := merchantcontext.GetMerchantContext(c)
	if !mc.IsLoggedIn || mc.PrincipalID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		return "", false
	}
	return mc.PrincipalID, true
}

// respondOwnershipError maps an ownership denial to the uniform 403
// body. The internal kind distinction survives only in the reason code.
func respondOwnershipError(c *fiber.Ctx, denial *ownership.Error) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "forbidden",
		"reason":  denial.ReasonCode(),
		"message": denial.Message(),
	})
}

// asOwnershipError unwraps a typed ownership denial if present.
func asOwnershipError(err error) (*ownership.Error, bool) {
	var denial *ownership.Error
	if errors.As(err, &denial) {
		return denial, true
	}
	return nil, false
}

// respondValidationError maps validator output to a 400 with
// field-level issues.
func respondValidationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fiber.Map, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fiber.Map{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_input",
			"details": details,
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input"})
}
