package entities

import (
	"time"
)

// BillingRole describes how a provider relates to billing
type BillingRole string

const (
	BillingRoleAttending BillingRole = "attending"
	BillingRoleResident  BillingRole = "resident"
	BillingRoleOther     BillingRole = "other"
)

// Provider represents a clinician who can deliver appointments
type Provider struct {
	ID                   string      `json:"id" db:"id"`
	FullName             string      `json:"full_name" db:"full_name"`
	BillingRole          BillingRole `json:"billing_role" db:"billing_role"`
	IsActive             bool        `json:"is_active" db:"is_active"`
	IsBookable           bool        `json:"is_bookable" db:"is_bookable"`
	AcceptingNewPatients bool        `json:"accepting_new_patients" db:"accepting_new_patients"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`
}
