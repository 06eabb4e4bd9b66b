package constants

// Static route constants
const (
	APIRoute             = "/api"
	WebhookStripeRoute   = "/webhooks/stripe"
	ConnectInitRoute     = "/connect/oauth/init"
	ConnectCallbackRoute = "/connect/oauth/callback"
	ConnectAccountsRoute = "/connect/accounts"
	SubscriptionsRoute   = "/subscriptions"
	PauseRoute           = "/subscriptions/pause"
	ResumeRoute          = "/subscriptions/resume"
	MetricsSummaryRoute  = "/metrics/summary"
	CheckoutRoute        = "/billing/checkout"
	ChurnPredictRoute    = "/internal/predict"
)
