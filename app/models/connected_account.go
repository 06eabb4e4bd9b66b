package models

import "time"

// Connected account status constants.
const (
	AccountStatusActive  = "active"
	AccountStatusRevoked = "revoked"
)

// ConnectedAccount stores one linked Stripe Connect account per merchant.
// An account id may be linked by at most one principal at a time.
type ConnectedAccount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PrincipalID string    `gorm:"type:varchar(128);not null;index:ux_connected_accounts_principal_account,unique,priority:1" json:"principal_id"`
	AccountID   string    `gorm:"type:varchar(191);not null;index:ux_connected_accounts_principal_account,unique,priority:2;index" json:"account_id"`
	Scope       string    `gorm:"type:varchar(50);default:''" json:"scope"`
	Status      string    `gorm:"type:varchar(32);not null;default:'active'" json:"status"`
	LinkedAt    time.Time `gorm:"type:timestamp" json:"linked_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
