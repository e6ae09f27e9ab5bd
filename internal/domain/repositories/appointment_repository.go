package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data access
type AppointmentRepository interface {
	// Create inserts an appointment. The storage layer enforces interval
	// exclusivity per provider; a violation surfaces as a conflict error.
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// ListBlocking retrieves scheduled/confirmed appointments for a provider
	// overlapping the range
	ListBlocking(ctx context.Context, providerID string, dateRange entities.DateRange) ([]*entities.Appointment, error)

	// Cancel marks an appointment cancelled, releasing its interval
	Cancel(ctx context.Context, id string) error
}
