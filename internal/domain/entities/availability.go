package entities

import (
	"time"
)

// AvailabilityRule is a recurring weekly open window for a provider. Start
// and end are minutes from local midnight in the rule's timezone.
type AvailabilityRule struct {
	ID          string       `json:"id" db:"id"`
	ProviderID  string       `json:"provider_id" db:"provider_id"`
	Weekday     time.Weekday `json:"weekday" db:"weekday"`
	StartMinute int          `json:"start_minute" db:"start_minute"`
	EndMinute   int          `json:"end_minute" db:"end_minute"`
	IsRecurring bool         `json:"is_recurring" db:"is_recurring"`
	Timezone    string       `json:"timezone" db:"timezone"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// ExceptionKind says whether a date-specific exception opens or closes time
type ExceptionKind string

const (
	ExceptionKindAdd    ExceptionKind = "add"
	ExceptionKindRemove ExceptionKind = "remove"
)

// AvailabilityException overrides the recurring rules for one specific date.
// An "add" opens an ad-hoc window; a "remove" closes a normally-open one.
type AvailabilityException struct {
	ID          string        `json:"id" db:"id"`
	ProviderID  string        `json:"provider_id" db:"provider_id"`
	Date        time.Time     `json:"date" db:"date"`
	Kind        ExceptionKind `json:"kind" db:"kind"`
	StartMinute int           `json:"start_minute" db:"start_minute"`
	EndMinute   int           `json:"end_minute" db:"end_minute"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}
