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

// SupervisionAdapter implements SupervisionRepository
type SupervisionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSupervisionAdapter creates a new supervision adapter
func NewSupervisionAdapter(client *postgres.Client) repositories.SupervisionRepository {
	return &SupervisionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var supervisionColumns = []interface{}{
	"id", "supervisee_id", "supervisor_id", "payer_id", "designation",
	"supervision_level", "effective_date", "expiration_date",
	"concurrency_cap", "created_at", "updated_at",
}

// ListByPayer retrieves all supervision relationships for a payer
func (a *SupervisionAdapter) ListByPayer(ctx context.Context, payerID string) ([]*entities.SupervisionRelationship, error) {
	ds := a.db.Select(supervisionColumns...).
		From("supervision_relationships").
		Where(goqu.Ex{"payer_id": payerID}).
		Order(goqu.I("supervisee_id").Asc())
	return a.queryRelationships(ctx, ds)
}

// ListInEffect retrieves primary supervision relationships within their
// effective window as of the given instant
func (a *SupervisionAdapter) ListInEffect(ctx context.Context, payerID string, asOf time.Time) ([]*entities.SupervisionRelationship, error) {
	ds := a.db.Select(supervisionColumns...).
		From("supervision_relationships").
		Where(
			goqu.Ex{
				"payer_id":    payerID,
				"designation": entities.SupervisionDesignationPrimary,
			},
			goqu.I("effective_date").Lte(asOf),
			goqu.Or(
				goqu.I("expiration_date").IsNull(),
				goqu.I("expiration_date").Gt(asOf),
			),
		).
		Order(goqu.I("supervisee_id").Asc())
	return a.queryRelationships(ctx, ds)
}

// GetPrimaryForSupervisee retrieves the supervisee's primary relationship for
// a payer, if any
func (a *SupervisionAdapter) GetPrimaryForSupervisee(ctx context.Context, superviseeID, payerID string, asOf time.Time) (*entities.SupervisionRelationship, error) {
	query, args, err := a.db.Select(supervisionColumns...).
		From("supervision_relationships").
		Where(
			goqu.Ex{
				"supervisee_id": superviseeID,
				"payer_id":      payerID,
				"designation":   entities.SupervisionDesignationPrimary,
			},
			goqu.I("effective_date").Lte(asOf),
			goqu.Or(
				goqu.I("expiration_date").IsNull(),
				goqu.I("expiration_date").Gt(asOf),
			),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build supervision query", err)
	}

	rel, err := scanRelationship(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no primary supervisor for provider %s with payer %s", superviseeID, payerID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get supervision relationship", err)
	}
	return rel, nil
}

func (a *SupervisionAdapter) queryRelationships(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.SupervisionRelationship, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build supervision query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list supervision relationships", err)
	}
	defer rows.Close()

	var relationships []*entities.SupervisionRelationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan supervision relationship", err)
		}
		relationships = append(relationships, rel)
	}
	return relationships, rows.Err()
}

func scanRelationship(row rowScanner) (*entities.SupervisionRelationship, error) {
	rel := &entities.SupervisionRelationship{}
	var expiration sql.NullTime
	var cap sql.NullInt64

	err := row.Scan(
		&rel.ID,
		&rel.SuperviseeID,
		&rel.SupervisorID,
		&rel.PayerID,
		&rel.Designation,
		&rel.Level,
		&rel.EffectiveDate,
		&expiration,
		&cap,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiration.Valid {
		rel.ExpirationDate = &expiration.Time
	}
	if cap.Valid {
		capValue := int(cap.Int64)
		rel.ConcurrencyCap = &capValue
	}
	return rel, nil
}
