package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// SupervisionRepository defines the interface for the supervision graph
type SupervisionRepository interface {
	// ListByPayer retrieves all supervision relationships for a payer
	ListByPayer(ctx context.Context, payerID string) ([]*entities.SupervisionRelationship, error)

	// ListInEffect retrieves primary supervision relationships for a payer
	// that are within their effective window as of the given instant
	ListInEffect(ctx context.Context, payerID string, asOf time.Time) ([]*entities.SupervisionRelationship, error)

	// GetPrimaryForSupervisee retrieves the supervisee's primary relationship
	// for a payer, if any
	GetPrimaryForSupervisee(ctx context.Context, superviseeID, payerID string, asOf time.Time) (*entities.SupervisionRelationship, error)
}
