package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// ServiceInstanceAdapter implements ServiceInstanceRepository
type ServiceInstanceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceInstanceAdapter creates a new service instance adapter
func NewServiceInstanceAdapter(client *postgres.Client) repositories.ServiceInstanceRepository {
	return &ServiceInstanceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var serviceInstanceColumns = []interface{}{
	"id", "service_name", "payer_id", "delivery_location", "duration_minutes",
	"external_billing_code", "is_active", "created_at", "updated_at",
}

// GetByID retrieves a service instance by ID
func (a *ServiceInstanceAdapter) GetByID(ctx context.Context, id string) (*entities.ServiceInstance, error) {
	query, args, err := a.db.Select(serviceInstanceColumns...).
		From("service_instances").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build service instance query", err)
	}

	instance, err := scanServiceInstance(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service instance %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service instance", err)
	}
	return instance, nil
}

// ListByCategory retrieves active service instances whose service name
// matches the category. This is deliberately a single broad fetch; the
// payer-scope and billing-mapping narrowing happens stage by stage in the
// catalog service.
func (a *ServiceInstanceAdapter) ListByCategory(ctx context.Context, category string) ([]*entities.ServiceInstance, error) {
	pattern := "%" + escapeLikePattern(strings.ToLower(category)) + "%"
	query, args, err := a.db.Select(serviceInstanceColumns...).
		From("service_instances").
		Where(
			goqu.Ex{"is_active": true},
			goqu.L("LOWER(service_name)").Like(pattern),
		).
		Order(goqu.I("service_name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build service instance query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list service instances", err)
	}
	defer rows.Close()

	var instances []*entities.ServiceInstance
	for rows.Next() {
		instance, err := scanServiceInstance(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service instance", err)
		}
		instances = append(instances, instance)
	}
	return instances, rows.Err()
}

// escapeLikePattern neutralizes LIKE metacharacters in caller-supplied text
// so a category of "%" cannot match every service
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func scanServiceInstance(row rowScanner) (*entities.ServiceInstance, error) {
	instance := &entities.ServiceInstance{}
	var payerID, billingCode sql.NullString
	var duration sql.NullInt64

	err := row.Scan(
		&instance.ID,
		&instance.ServiceName,
		&payerID,
		&instance.DeliveryLocation,
		&duration,
		&billingCode,
		&instance.IsActive,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if payerID.Valid {
		instance.PayerID = &payerID.String
	}
	if duration.Valid {
		minutes := int(duration.Int64)
		instance.DurationMinutes = &minutes
	}
	if billingCode.Valid {
		instance.ExternalBillingCode = &billingCode.String
	}
	return instance, nil
}
