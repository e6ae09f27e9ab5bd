package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Blocks reports whether an appointment in this status occupies its interval.
// Only blocking appointments exclude slots and participate in the storage
// exclusion constraint.
func (s AppointmentStatus) Blocks() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Appointment represents a booked visit occupying [StartTime, EndTime) on a
// provider's calendar
type Appointment struct {
	ID                string            `json:"id" db:"id"`
	ProviderID        string            `json:"provider_id" db:"provider_id"`
	BillingProviderID string            `json:"billing_provider_id" db:"billing_provider_id"`
	PatientID         string            `json:"patient_id" db:"patient_id"`
	ServiceInstanceID string            `json:"service_instance_id" db:"service_instance_id"`
	PayerID           string            `json:"payer_id" db:"payer_id"`
	StartTime         time.Time         `json:"start_time" db:"start_time"`
	EndTime           time.Time         `json:"end_time" db:"end_time"`
	Status            AppointmentStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// Window returns the appointment's occupied interval.
func (a *Appointment) Window() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}
