package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// ContractAdapter implements ContractRepository
type ContractAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewContractAdapter creates a new contract adapter
func NewContractAdapter(client *postgres.Client) repositories.ContractRepository {
	return &ContractAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var contractColumns = []interface{}{
	"id", "provider_id", "payer_id", "status", "effective_date",
	"termination_date", "created_at", "updated_at",
}

// GetByID retrieves a contract by ID
func (a *ContractAdapter) GetByID(ctx context.Context, id string) (*entities.Contract, error) {
	query, args, err := a.db.Select(contractColumns...).
		From("contracts").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build contract query", err)
	}

	contract, err := scanContract(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("contract %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get contract", err)
	}
	return contract, nil
}

// ListByPayer retrieves all contracts for a payer, any status
func (a *ContractAdapter) ListByPayer(ctx context.Context, payerID string) ([]*entities.Contract, error) {
	ds := a.db.Select(contractColumns...).
		From("contracts").
		Where(goqu.Ex{"payer_id": payerID}).
		Order(goqu.I("effective_date").Asc())
	return a.queryContracts(ctx, ds)
}

// ListInEffect retrieves contracts active and within their effective window
// as of the given instant
func (a *ContractAdapter) ListInEffect(ctx context.Context, payerID string, asOf time.Time) ([]*entities.Contract, error) {
	ds := a.db.Select(contractColumns...).
		From("contracts").
		Where(
			goqu.Ex{"payer_id": payerID, "status": entities.ContractStatusActive},
			goqu.I("effective_date").Lte(asOf),
			goqu.Or(
				goqu.I("termination_date").IsNull(),
				goqu.I("termination_date").Gt(asOf),
			),
		).
		Order(goqu.I("provider_id").Asc())
	return a.queryContracts(ctx, ds)
}

// GetPending retrieves the pending contract for a (provider, payer) pair
func (a *ContractAdapter) GetPending(ctx context.Context, providerID, payerID string) (*entities.Contract, error) {
	query, args, err := a.db.Select(contractColumns...).
		From("contracts").
		Where(goqu.Ex{
			"provider_id": providerID,
			"payer_id":    payerID,
			"status":      entities.ContractStatusPending,
		}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build contract query", err)
	}

	contract, err := scanContract(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no pending contract for provider %s with payer %s", providerID, payerID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get pending contract", err)
	}
	return contract, nil
}

// Activate marks a contract active with the given effective date
func (a *ContractAdapter) Activate(ctx context.Context, id string, effectiveDate time.Time) error {
	query, args, err := a.db.Update("contracts").
		Set(goqu.Record{
			"status":         entities.ContractStatusActive,
			"effective_date": effectiveDate,
			"updated_at":     time.Now(),
		}).
		Where(goqu.Ex{"id": id, "status": entities.ContractStatusPending}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build activate query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to activate contract", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("contract %s is not pending", id))
	}
	return nil
}

func (a *ContractAdapter) queryContracts(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Contract, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build contract query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list contracts", err)
	}
	defer rows.Close()

	var contracts []*entities.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan contract", err)
		}
		contracts = append(contracts, contract)
	}
	return contracts, rows.Err()
}

func scanContract(row rowScanner) (*entities.Contract, error) {
	contract := &entities.Contract{}
	var termination sql.NullTime

	err := row.Scan(
		&contract.ID,
		&contract.ProviderID,
		&contract.PayerID,
		&contract.Status,
		&contract.EffectiveDate,
		&termination,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if termination.Valid {
		contract.TerminationDate = &termination.Time
	}
	return contract, nil
}
