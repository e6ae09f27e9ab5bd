package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// ServiceInstanceRepository defines the interface for the service catalog.
// It deliberately returns broad candidate sets; the staged narrowing happens
// in the catalog service where each stage is independently inspectable.
type ServiceInstanceRepository interface {
	// GetByID retrieves a service instance by ID
	GetByID(ctx context.Context, id string) (*entities.ServiceInstance, error)

	// ListByCategory retrieves active service instances whose service name
	// matches the category, case-insensitively
	ListByCategory(ctx context.Context, category string) ([]*entities.ServiceInstance, error)
}
