package merchantcontext

// Shared Locals keys used across controllers and middlewares
const (
	ContextKey     = "MERCHANT_CONTEXT"
	KeyPrincipalID = "principal_id"
	KeyFromAuth    = "from_auth"
)
