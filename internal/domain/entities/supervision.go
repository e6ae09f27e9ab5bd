package entities

import (
	"time"
)

// SupervisionDesignation distinguishes the primary supervisor from backups
type SupervisionDesignation string

const (
	SupervisionDesignationPrimary   SupervisionDesignation = "primary"
	SupervisionDesignationSecondary SupervisionDesignation = "secondary"
)

// SupervisionLevel describes how closely the supervisor must be involved
type SupervisionLevel string

const (
	SupervisionLevelSignOffOnly        SupervisionLevel = "sign_off_only"
	SupervisionLevelFirstVisitInPerson SupervisionLevel = "first_visit_in_person"
	SupervisionLevelCoVisitRequired    SupervisionLevel = "co_visit_required"
)

// SupervisionRelationship lets a supervisee's care be billed through a
// supervising provider for a specific payer. A supervisee may have at most
// one primary supervisor per payer at a time.
type SupervisionRelationship struct {
	ID             string                 `json:"id" db:"id"`
	SuperviseeID   string                 `json:"supervisee_id" db:"supervisee_id"`
	SupervisorID   string                 `json:"supervisor_id" db:"supervisor_id"`
	PayerID        string                 `json:"payer_id" db:"payer_id"`
	Designation    SupervisionDesignation `json:"designation" db:"designation"`
	Level          SupervisionLevel       `json:"supervision_level" db:"supervision_level"`
	EffectiveDate  time.Time              `json:"effective_date" db:"effective_date"`
	ExpirationDate *time.Time             `json:"expiration_date" db:"expiration_date"`
	ConcurrencyCap *int                   `json:"concurrency_cap" db:"concurrency_cap"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" db:"updated_at"`
}

// InEffect reports whether the relationship is usable as of the given instant.
func (r *SupervisionRelationship) InEffect(asOf time.Time) bool {
	if r.EffectiveDate.After(asOf) {
		return false
	}
	if r.ExpirationDate != nil && !r.ExpirationDate.After(asOf) {
		return false
	}
	return true
}

// RequiresCoVisit reports whether the supervisor must be present for visits.
func (r *SupervisionRelationship) RequiresCoVisit() bool {
	return r.Level == SupervisionLevelCoVisitRequired
}
