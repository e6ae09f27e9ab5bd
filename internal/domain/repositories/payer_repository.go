package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// PayerFilter defines filtering options for payer queries
type PayerFilter struct {
	StatusCode entities.PayerStatusCode
	Limit      int
	Offset     int
}

// PayerRepository defines the interface for payer data access
type PayerRepository interface {
	// GetByID retrieves a payer by ID
	GetByID(ctx context.Context, id string) (*entities.Payer, error)

	// List retrieves payers matching the filter
	List(ctx context.Context, filter PayerFilter) ([]*entities.Payer, error)

	// ListIDs retrieves all payer IDs, used by full refreshes and
	// reconciliation sampling
	ListIDs(ctx context.Context) ([]string, error)
}
