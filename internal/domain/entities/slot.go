package entities

import (
	"time"
)

// Slot is a concrete offerable appointment window for a specific provider
// and service instance. Start and End always carry an explicit offset.
type Slot struct {
	ProviderID        string    `json:"provider_id"`
	BillingProviderID string    `json:"billing_provider_id"`
	ServiceInstanceID string    `json:"service_instance_id"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	RequiresCoVisit   bool      `json:"requires_co_visit"`
}

// Window returns the slot's interval.
func (s Slot) Window() Interval {
	return Interval{Start: s.Start, End: s.End}
}
