package ownership

import "fmt"

// Kind discriminates ownership failures. The distinction is kept
// internally for audit and debugging, but every kind maps to the same
// HTTP-level denial (403) at the boundary.
type Kind int

const (
	// KindAccountNotOwned covers both "account does not exist" and
	// "account belongs to someone else". Collapsing the two avoids an
	// account-enumeration side channel.
	KindAccountNotOwned Kind = iota
	// KindSubscriptionNotFound means no subscription with that id exists
	// under the principal at all.
	KindSubscriptionNotFound
	// KindSubscriptionNotOwned means the subscription exists under the
	// principal but is tied to a different connected account than the
	// one claimed in the request.
	KindSubscriptionNotOwned
)

// Error is the typed denial returned by the resolver. It carries enough
// context for audit logging without leaking existence information to
// clients beyond the stable reason code.
type Error struct {
	Kind        Kind
	PrincipalID string
	AccountID   string
	StripeSubID string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSubscriptionNotFound:
		return fmt.Sprintf("subscription %s not found for principal %s", e.StripeSubID, e.PrincipalID)
	case KindSubscriptionNotOwned:
		return fmt.Sprintf("subscription %s does not belong to account %s", e.StripeSubID, e.AccountID)
	default:
		return fmt.Sprintf("account %s does not belong to principal %s", e.AccountID, e.PrincipalID)
	}
}

// ReasonCode returns the stable machine-readable code exposed to
// clients in 403 responses.
func (e *Error) ReasonCode() string {
	switch e.Kind {
	case KindSubscriptionNotFound:
		return "subscription_not_found"
	case KindSubscriptionNotOwned:
		return "subscription_not_owned"
	default:
		return "account_not_owned"
	}
}

// Message returns the short human-readable denial message. Internal
// detail is never included.
func (e *Error) Message() string {
	switch e.Kind {
	case KindSubscriptionNotFound:
		return "Subscription was not found for the authenticated merchant."
	case KindSubscriptionNotOwned:
		return "Subscription does not belong to the provided account."
	default:
		return "Account does not belong to the authenticated merchant."
	}
}
