package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// ProviderRepository defines the interface for provider data access
type ProviderRepository interface {
	// GetByID retrieves a provider by ID
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// GetByIDs retrieves multiple providers by ID
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error)

	// SetBookable toggles a provider's bookable flag
	SetBookable(ctx context.Context, id string, bookable bool) error
}
