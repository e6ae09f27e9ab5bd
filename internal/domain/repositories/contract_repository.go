package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// ContractRepository defines the interface for the contract store. Contract
// CRUD is owned by admin tooling; the engine reads contracts and activates
// them when credentialing completes.
type ContractRepository interface {
	// GetByID retrieves a contract by ID
	GetByID(ctx context.Context, id string) (*entities.Contract, error)

	// ListByPayer retrieves all contracts for a payer, any status
	ListByPayer(ctx context.Context, payerID string) ([]*entities.Contract, error)

	// ListInEffect retrieves contracts for a payer that are active and within
	// their effective window as of the given instant
	ListInEffect(ctx context.Context, payerID string, asOf time.Time) ([]*entities.Contract, error)

	// GetPending retrieves the pending contract for a (provider, payer) pair
	GetPending(ctx context.Context, providerID, payerID string) (*entities.Contract, error)

	// Activate marks a contract active with the given effective date
	Activate(ctx context.Context, id string, effectiveDate time.Time) error
}
