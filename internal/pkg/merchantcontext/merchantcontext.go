package merchantcontext

import "github.com/gofiber/fiber/v2"

// MerchantContext represents the authenticated merchant for a request
type MerchantContext struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
	IsLoggedIn  bool   `json:"is_logged_in"`
}

// GetMerchantContext retrieves the merchant context from fiber context
// Returns a default anonymous context if none is set
func GetMerchantContext(c *fiber.Ctx) MerchantContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(MerchantContext)
	}
	return MerchantContext{IsLoggedIn: false}
}

// SetMerchantContext stores the merchant context on the request
func SetMerchantContext(c *fiber.Ctx, mc MerchantContext) {
	c.Locals(ContextKey, mc)
	c.Locals(KeyPrincipalID, mc.PrincipalID)
	c.Locals(KeyFromAuth, mc.IsLoggedIn)
}

// IsLoggedIn checks if the current request carries a verified principal
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetMerchantContext(c).IsLoggedIn
}

// GetPrincipalID returns the verified principal id, or empty string
func GetPrincipalID(c *fiber.Ctx) string {
	return GetMerchantContext(c).PrincipalID
}
