package models

import "time"

// Subscription status constants mirrored from Stripe.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPaused   = "paused"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription mirrors one Stripe subscription resource. AccountID must
// reference a ConnectedAccount owned by the same principal; a row whose
// AccountID matches no owned account is orphaned and never acted upon.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PrincipalID      string     `gorm:"type:varchar(128);not null;index:ux_subscriptions_principal_subid,unique,priority:1" json:"principal_id"`
	AccountID        string     `gorm:"type:varchar(191);not null;index" json:"account_id"`
	StripeSubID      string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_principal_subid,unique,priority:2" json:"stripe_sub_id"`
	CustomerID       string     `gorm:"type:varchar(191);default:''" json:"customer_id"`
	Status           string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	MonthlyValue     float64    `gorm:"not null;default:0" json:"monthly_value"`
	CurrentPeriodEnd *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CanceledAt       *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	LastEventAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_event_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
