package models

import "time"

// PendingCheckout is the server-owned linkage between a Stripe Checkout
// Session and the principal that opened it. Webhook checkout resolution
// only trusts session metadata when a matching row exists here, so a
// forged metadata value cannot hijack another principal's checkout.
type PendingCheckout struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PrincipalID string     `gorm:"type:varchar(128);not null;index" json:"principal_id"`
	SessionID   string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"session_id"`
	ExpiresAt   time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	CompletedAt *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
