// Package ownership is the single authority for "may principal P act on
// account A / subscription S". Every mutating or data-returning
// operation must pass through it before touching subscription data.
//
// Ownership is checked against the locally stored mirror, never against
// Stripe: the mirror is the fast path, and its accountId/principal
// pairing is exactly the trust boundary the product needs. A merchant
// must never be able to act on a subscription under an account they
// have not explicitly linked, even with a valid external id.
package ownership

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PauseFlow/app/models"
	"github.com/ManuelReschke/PauseFlow/app/repository"
)

// Resolver proves or refutes ownership before any state change proceeds.
type Resolver struct {
	accounts      repository.AccountRepository
	subscriptions repository.SubscriptionRepository
}

// NewResolver creates an ownership resolver from injected repositories.
func NewResolver(accounts repository.AccountRepository, subscriptions repository.SubscriptionRepository) *Resolver {
	return &Resolver{accounts: accounts, subscriptions: subscriptions}
}

// EnsureAccountOwned looks up the connected account keyed by
// (principal, accountID). Absence of the pair is the only failure
// outcome, regardless of whether the account exists under another
// principal. Read-only.
func (r *Resolver) EnsureAccountOwned(ctx context.Context, principalID, accountID string) (*models.ConnectedAccount, error) {
	_ = ctx
	account, err := r.accounts.GetOwned(principalID, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			denial := &Error{Kind: KindAccountNotOwned, PrincipalID: principalID, AccountID: accountID}
			log.Printf("ownership denied: principal=%s account=%s reason=%s", principalID, accountID, denial.ReasonCode())
			return nil, denial
		}
		return nil, err
	}
	return account, nil
}

// EnsureSubscriptionOwned looks up the subscription keyed by
// (principal, subscriptionID) and checks it is tied to the claimed
// account. "Not found under this principal" and "found but under a
// different account" stay distinct internally; both surface as 403.
func (r *Resolver) EnsureSubscriptionOwned(ctx context.Context, principalID, accountID, stripeSubID string) (*models.Subscription, error) {
	_ = ctx
	sub, err := r.subscriptions.GetOwned(principalID, stripeSubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			denial := &Error{Kind: KindSubscriptionNotFound, PrincipalID: principalID, AccountID: accountID, StripeSubID: stripeSubID}
			log.Printf("ownership denied: principal=%s account=%s subscription=%s reason=%s",
				principalID, accountID, stripeSubID, denial.ReasonCode())
			return nil, denial
		}
		return nil, err
	}

	if sub.AccountID != accountID {
		denial := &Error{Kind: KindSubscriptionNotOwned, PrincipalID: principalID, AccountID: accountID, StripeSubID: stripeSubID}
		log.Printf("ownership denied: principal=%s account=%s subscription=%s reason=%s",
			principalID, accountID, stripeSubID, denial.ReasonCode())
		return nil, denial
	}

	return sub, nil
}
