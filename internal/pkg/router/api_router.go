package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/PauseFlow/app/controllers"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/constants"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/env"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/identity"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	verifier, err := identity.NewHS256Verifier(env.GetEnv("AUTH_JWT_SECRET", ""))
	if err != nil {
		log.Fatalf("auth verifier setup failed: %v", err)
	}

	api := app.Group(constants.APIRoute)
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "pauseflow api",
		})
	})

	// Webhooks and the OAuth browser callback carry no bearer token.
	// The webhook stays outside the rate limiter so Stripe retries are
	// never throttled into a redelivery loop.
	api.Post(constants.WebhookStripeRoute, controllers.HandleStripeWebhook)
	api.Get(constants.ConnectCallbackRoute, controllers.HandleConnectCallback)

	authed := api.Group("", limiter.New(limiter.Config{Max: 60}), middleware.RequireMerchant(verifier))
	authed.Get(constants.ConnectInitRoute, controllers.HandleConnectInit)
	authed.Get(constants.ConnectAccountsRoute, controllers.HandleListAccounts)
	authed.Get(constants.SubscriptionsRoute, controllers.HandleListSubscriptions)
	authed.Post(constants.PauseRoute, controllers.HandlePauseSubscription)
	authed.Post(constants.ResumeRoute, controllers.HandleResumeSubscription)
	authed.Get(constants.MetricsSummaryRoute, controllers.HandleMetricsSummary)
	authed.Post(constants.CheckoutRoute, controllers.HandleCheckoutInit)
	authed.Post(constants.ChurnPredictRoute, controllers.HandleChurnPredict)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
