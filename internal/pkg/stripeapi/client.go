// Package stripeapi wraps the Stripe SDK behind a narrow interface so
// controllers and the reconciler can be tested without network calls.
package stripeapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/oauth"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ManuelReschke/PauseFlow/internal/pkg/env"
)

const callTimeout = 20 * time.Second

// OAuthResult is the outcome of exchanging a Connect authorization code.
type OAuthResult struct {
	AccountID string
	Scope     string
}

// CheckoutSession is the subset of a created Checkout Session the
// product needs.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// Client is the boundary to the Stripe API. Calls are bounded by a
// timeout; callers must not mutate local state unless the call
// succeeded.
type Client interface {
	UpdateSubscriptionPauseState(ctx context.Context, stripeSubID, accountID string, paused bool) (*stripe.Subscription, error)
	ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResult, error)
	CreateCheckoutSession(ctx context.Context, principalID, priceID, successURL, cancelURL string) (*CheckoutSession, error)
	AuthorizeURL(state string) string
	VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error)
}

type stripeClient struct {
	clientID      string
	webhookSecret string
	redirectURL   string
}

// NewClientFromEnv creates a Stripe client configured from the
// environment. The platform secret key is set globally on the SDK.
func NewClientFromEnv() Client {
	stripe.Key = env.GetEnv("STRIPE_PLATFORM_SECRET", "")
	return &stripeClient{
		clientID:      env.GetEnv("STRIPE_CLIENT_ID", ""),
		webhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		redirectURL:   env.GetEnv("BACKEND_BASE_URL", "http://localhost:8080") + "/api/connect/oauth/callback",
	}
}

// UpdateSubscriptionPauseState pauses or resumes collection on a
// subscription that lives on the given connected account.
func (s *stripeClient) UpdateSubscriptionPauseState(ctx context.Context, stripeSubID, accountID string, paused bool) (*stripe.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	if paused {
		params.PauseCollection = &stripe.SubscriptionPauseCollectionParams{
			Behavior: stripe.String("mark_uncollectible"),
		}
	} else {
		// An empty value clears pause_collection on the API side.
		params.AddExtra("pause_collection", "")
	}

	result, err := subscription.Update(stripeSubID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription update failed: %w", err)
	}
	return result, nil
}

// ExchangeOAuthCode completes the Connect OAuth flow and returns the
// linked account id.
func (s *stripeClient) ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.OAuthTokenParams{
		GrantType: stripe.String("authorization_code"),
		Code:      stripe.String(code),
	}
	params.Context = ctx

	token, err := oauth.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe oauth token exchange failed: %w", err)
	}
	return &OAuthResult{
		AccountID: token.StripeUserID,
		Scope:     string(token.Scope),
	}, nil
}

// CreateCheckoutSession opens a hosted Checkout Session carrying the
// principal id as server-owned linkage for later webhook resolution.
func (s *stripeClient) CreateCheckoutSession(ctx context.Context, principalID, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(principalID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("merchant_id", principalID)

	result, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}
	return &CheckoutSession{SessionID: result.ID, URL: result.URL}, nil
}

// AuthorizeURL builds the Connect OAuth authorize URL for the given
// single-use state token.
func (s *stripeClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.clientID)
	q.Set("scope", "read_write")
	q.Set("redirect_uri", s.redirectURL)
	q.Set("state", state)
	return "https://connect.stripe.com/oauth/authorize?" + q.Encode()
}

// VerifyWebhook checks the event signature against the shared secret
// before any payload parsing happens.
func (s *stripeClient) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
