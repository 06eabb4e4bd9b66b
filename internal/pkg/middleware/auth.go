package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PauseFlow/internal/pkg/identity"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/merchantcontext"
)

// RequireMerchant authenticates requests carrying a bearer credential
// and stores the verified principal in the request context. Returns
// JSON 401 when the credential is missing or does not verify.
func RequireMerchant(verifier identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing credentials"})
		}

		principal, err := verifier.Verify(c.Context(), raw)
		if err != nil {
			log.Printf("credential verification failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid credentials"})
		}

		merchantcontext.SetMerchantContext(c, merchantcontext.MerchantContext{
			PrincipalID: principal.ID,
			Email:       principal.Email,
			IsLoggedIn:  true,
		})

		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
