package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// PayerAdapter implements PayerRepository
type PayerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPayerAdapter creates a new payer adapter
func NewPayerAdapter(client *postgres.Client) repositories.PayerRepository {
	return &PayerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var payerColumns = []interface{}{
	"id", "name", "status_code", "effective_date", "projected_effective_date",
	"created_at", "updated_at",
}

// GetByID retrieves a payer by ID
func (a *PayerAdapter) GetByID(ctx context.Context, id string) (*entities.Payer, error) {
	query, args, err := a.db.Select(payerColumns...).
		From("payers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build payer query", err)
	}

	payer, err := scanPayer(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payer %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get payer", err)
	}
	return payer, nil
}

// List retrieves payers matching the filter
func (a *PayerAdapter) List(ctx context.Context, filter repositories.PayerFilter) ([]*entities.Payer, error) {
	ds := a.db.Select(payerColumns...).From("payers")

	if filter.StatusCode != "" {
		ds = ds.Where(goqu.Ex{"status_code": filter.StatusCode})
	}

	ds = ds.Order(goqu.I("name").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build payer list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list payers", err)
	}
	defer rows.Close()

	var payers []*entities.Payer
	for rows.Next() {
		payer, err := scanPayer(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan payer", err)
		}
		payers = append(payers, payer)
	}
	return payers, rows.Err()
}

// ListIDs retrieves all payer IDs
func (a *PayerAdapter) ListIDs(ctx context.Context) ([]string, error) {
	query, args, err := a.db.Select("id").From("payers").Order(goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build payer id query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list payer ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan payer id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayer(row rowScanner) (*entities.Payer, error) {
	payer := &entities.Payer{}
	var effective, projected sql.NullTime

	err := row.Scan(
		&payer.ID,
		&payer.Name,
		&payer.StatusCode,
		&effective,
		&projected,
		&payer.CreatedAt,
		&payer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if effective.Valid {
		payer.EffectiveDate = &effective.Time
	}
	if projected.Valid {
		payer.ProjectedEffectiveDate = &projected.Time
	}
	return payer, nil
}
