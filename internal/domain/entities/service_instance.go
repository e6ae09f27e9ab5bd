package entities

import (
	"strings"
	"time"
)

// ServiceInstance is a concrete bookable combination of a clinical service, a
// payer scope, and a delivery location. A nil PayerID means the instance
// applies to all payers.
type ServiceInstance struct {
	ID                  string     `json:"id" db:"id"`
	ServiceName         string     `json:"service_name" db:"service_name"`
	PayerID             *string    `json:"payer_id" db:"payer_id"`
	DeliveryLocation    string     `json:"delivery_location" db:"delivery_location"`
	DurationMinutes     *int       `json:"duration_minutes" db:"duration_minutes"`
	ExternalBillingCode *string    `json:"external_billing_code" db:"external_billing_code"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// MatchesCategory reports whether the instance's service name matches the
// requested category, case-insensitively.
func (s *ServiceInstance) MatchesCategory(category string) bool {
	return strings.Contains(strings.ToLower(s.ServiceName), strings.ToLower(category))
}

// ScopedToPayer reports whether the instance is scoped to the given payer or
// globally scoped.
func (s *ServiceInstance) ScopedToPayer(payerID string) bool {
	return s.PayerID == nil || *s.PayerID == payerID
}

// HasExternalMapping reports whether the instance can be booked end to end in
// the external billing system.
func (s *ServiceInstance) HasExternalMapping() bool {
	return s.ExternalBillingCode != nil && *s.ExternalBillingCode != ""
}

// ResolvedService is the outcome of service catalog resolution
type ResolvedService struct {
	ServiceInstanceID string `json:"service_instance_id"`
	DurationMinutes   int    `json:"duration_minutes"`
}
