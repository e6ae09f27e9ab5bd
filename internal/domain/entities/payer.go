package entities

import (
	"time"
)

// PayerStatusCode represents where the organization stands with a payer
type PayerStatusCode string

const (
	PayerStatusApproved      PayerStatusCode = "approved"
	PayerStatusDenied        PayerStatusCode = "denied"
	PayerStatusBlocked       PayerStatusCode = "blocked"
	PayerStatusWithdrawn     PayerStatusCode = "withdrawn"
	PayerStatusOnPause       PayerStatusCode = "on_pause"
	PayerStatusInProgress    PayerStatusCode = "in_progress"
	PayerStatusWaitingOnThem PayerStatusCode = "waiting_on_them"
	PayerStatusNotStarted    PayerStatusCode = "not_started"
)

// Payer represents an insurance entity whose plans patients use to pay for care
type Payer struct {
	ID                     string          `json:"id" db:"id"`
	Name                   string          `json:"name" db:"name"`
	StatusCode             PayerStatusCode `json:"status_code" db:"status_code"`
	EffectiveDate          *time.Time      `json:"effective_date" db:"effective_date"`
	ProjectedEffectiveDate *time.Time      `json:"projected_effective_date" db:"projected_effective_date"`
	CreatedAt              time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at" db:"updated_at"`
}
