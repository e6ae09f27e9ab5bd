package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// AvailabilityRepository defines the interface for availability rules and
// exceptions. Rule CRUD is owned by the provider-facing scheduling UI.
type AvailabilityRepository interface {
	// ListRules retrieves a provider's recurring availability rules
	ListRules(ctx context.Context, providerID string) ([]*entities.AvailabilityRule, error)

	// ListExceptions retrieves a provider's date-specific exceptions whose
	// dates fall within the range
	ListExceptions(ctx context.Context, providerID string, dateRange entities.DateRange) ([]*entities.AvailabilityException, error)
}
