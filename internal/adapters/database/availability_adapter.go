package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// AvailabilityAdapter implements AvailabilityRepository
type AvailabilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAvailabilityAdapter creates a new availability adapter
func NewAvailabilityAdapter(client *postgres.Client) repositories.AvailabilityRepository {
	return &AvailabilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListRules retrieves a provider's recurring availability rules
func (a *AvailabilityAdapter) ListRules(ctx context.Context, providerID string) ([]*entities.AvailabilityRule, error) {
	query, args, err := a.db.Select(
		"id", "provider_id", "weekday", "start_minute", "end_minute",
		"is_recurring", "timezone", "created_at", "updated_at",
	).From("availability_rules").
		Where(goqu.Ex{"provider_id": providerID}).
		Order(goqu.I("weekday").Asc(), goqu.I("start_minute").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build availability rule query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list availability rules", err)
	}
	defer rows.Close()

	var rules []*entities.AvailabilityRule
	for rows.Next() {
		rule := &entities.AvailabilityRule{}
		var weekday int
		err := rows.Scan(
			&rule.ID,
			&rule.ProviderID,
			&weekday,
			&rule.StartMinute,
			&rule.EndMinute,
			&rule.IsRecurring,
			&rule.Timezone,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan availability rule", err)
		}
		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ListExceptions retrieves a provider's date-specific exceptions in range
func (a *AvailabilityAdapter) ListExceptions(ctx context.Context, providerID string, dateRange entities.DateRange) ([]*entities.AvailabilityException, error) {
	query, args, err := a.db.Select(
		"id", "provider_id", "date", "kind", "start_minute", "end_minute",
		"created_at", "updated_at",
	).From("availability_exceptions").
		Where(
			goqu.Ex{"provider_id": providerID},
			goqu.I("date").Gte(dateRange.From),
			goqu.I("date").Lt(dateRange.To),
		).
		Order(goqu.I("date").Asc(), goqu.I("start_minute").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build availability exception query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list availability exceptions", err)
	}
	defer rows.Close()

	var exceptions []*entities.AvailabilityException
	for rows.Next() {
		exception := &entities.AvailabilityException{}
		err := rows.Scan(
			&exception.ID,
			&exception.ProviderID,
			&exception.Date,
			&exception.Kind,
			&exception.StartMinute,
			&exception.EndMinute,
			&exception.CreatedAt,
			&exception.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan availability exception", err)
		}
		exceptions = append(exceptions, exception)
	}
	return exceptions, rows.Err()
}
