package models

import "time"

// Pause event actor constants.
const (
	PauseActorAdmin    = "admin"
	PauseActorCustomer = "customer"
)

// PauseEvent is the append-only audit record for pause/resume actions.
// ResumedAt, when set, is always >= PausedAt. Rows are never deleted.
type PauseEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PrincipalID string     `gorm:"type:varchar(128);not null;index" json:"principal_id"`
	AccountID   string     `gorm:"type:varchar(191);not null;index" json:"account_id"`
	StripeSubID string     `gorm:"type:varchar(191);not null;index" json:"stripe_sub_id"`
	Reason      string     `gorm:"type:varchar(200);default:''" json:"reason"`
	Actor       string     `gorm:"type:varchar(32);not null;default:'admin'" json:"actor"`
	PausedAt    time.Time  `gorm:"type:timestamp;not null;index" json:"paused_at"`
	ResumedAt   *time.Time `gorm:"type:timestamp;default:null" json:"resumed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Open reports whether the pause has not been resumed yet.
func (p *PauseEvent) Open() bool {
	return p.ResumedAt == nil
}
