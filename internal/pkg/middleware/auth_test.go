package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PauseFlow/internal/pkg/identity"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/merchantcontext"
)

const testSecret = "middleware-test-secret"

func newAuthedApp(t *testing.T) *fiber.App {
	t.Helper()
	verifier, err := identity.NewHS256Verifier(testSecret)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/whoami", RequireMerchant(verifier), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"principal": merchantcontext.GetPrincipalID(c)})
	})
	return app
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestRequireMerchantAllowsValidToken(t *testing.T) {
	app := newAuthedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "merchant-1"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireMerchantRejectsMissingToken(t *testing.T) {
	app := newAuthedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireMerchantRejectsBadToken(t *testing.T) {
	app := newAuthedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "merchant-1"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
