package models

import "time"

// Merchant plan constants.
const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanLifetime = "lifetime"
)

// Merchant status constants.
const (
	MerchantStatusActive   = "active"
	MerchantStatusInactive = "inactive"
)

// Merchant is the account record keyed by the identity provider's
// principal id. All merchant-owned data is partitioned by PrincipalID.
type Merchant struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PrincipalID      string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"principal_id"`
	Email            string    `gorm:"type:varchar(200);default:''" json:"email"`
	Plan             string    `gorm:"type:varchar(50);not null;default:'free'" json:"plan"`
	PlanType         string    `gorm:"type:varchar(50);default:''" json:"plan_type"`
	Status           string    `gorm:"type:varchar(32);not null;default:'active'" json:"status"`
	StripeCustomerID string    `gorm:"type:varchar(191);default:'';index" json:"stripe_customer_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
