package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// BookableEntryAdapter implements BookableEntryRepository on the materialized
// bookable_entries table plus a per-payer snapshot row
type BookableEntryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookableEntryAdapter creates a new bookable entry adapter
func NewBookableEntryAdapter(client *postgres.Client) repositories.BookableEntryRepository {
	return &BookableEntryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var bookableEntryColumns = []interface{}{
	"payer_id", "provider_id", "via", "billing_provider_id",
	"rendering_provider_id", "requires_co_visit", "bookable_from",
}

// GetSnapshot retrieves a payer's materialized entries and snapshot metadata
func (a *BookableEntryAdapter) GetSnapshot(ctx context.Context, payerID string) ([]*entities.BookableEntry, *entities.BookabilitySnapshot, error) {
	snapQuery, snapArgs, err := a.db.Select(
		"payer_id", "version", "entry_count", "stale", "refreshed_at",
	).From("bookability_snapshots").
		Where(goqu.Ex{"payer_id": payerID}).
		ToSQL()
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to build snapshot query", err)
	}

	snapshot := &entities.BookabilitySnapshot{}
	err = a.client.DB().QueryRowContext(ctx, snapQuery, snapArgs...).Scan(
		&snapshot.PayerID,
		&snapshot.Version,
		&snapshot.EntryCount,
		&snapshot.Stale,
		&snapshot.RefreshedAt,
	)
	if err == sql.ErrNoRows {
		// Never refreshed; callers fall back to the live path
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to get bookability snapshot", err)
	}

	query, args, err := a.db.Select(bookableEntryColumns...).
		From("bookable_entries").
		Where(goqu.Ex{"payer_id": payerID}).
		Order(goqu.I("provider_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to build entry query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to list bookable entries", err)
	}
	defer rows.Close()

	var entries []*entities.BookableEntry
	for rows.Next() {
		entry := &entities.BookableEntry{}
		err := rows.Scan(
			&entry.PayerID,
			&entry.ProviderID,
			&entry.Via,
			&entry.BillingProviderID,
			&entry.RenderingProviderID,
			&entry.RequiresCoVisit,
			&entry.BookableFrom,
		)
		if err != nil {
			return nil, nil, apperrors.NewInternalError("failed to scan bookable entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewInternalError("failed to read bookable entries", err)
	}
	return entries, snapshot, nil
}

// ReplaceSnapshot atomically swaps a payer's entries in a single transaction.
// Delete plus insert plus snapshot bump commit together, so concurrent
// readers see either the old or the new set, never a mix.
func (a *BookableEntryAdapter) ReplaceSnapshot(ctx context.Context, payerID string, entries []*entities.BookableEntry) (*entities.BookabilitySnapshot, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	deleteQuery, deleteArgs, err := a.db.Delete("bookable_entries").
		Where(goqu.Ex{"payer_id": payerID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to clear bookable entries", err)
	}

	if len(entries) > 0 {
		records := make([]goqu.Record, 0, len(entries))
		for _, entry := range entries {
			records = append(records, goqu.Record{
				"payer_id":              entry.PayerID,
				"provider_id":           entry.ProviderID,
				"via":                   entry.Via,
				"billing_provider_id":   entry.BillingProviderID,
				"rendering_provider_id": entry.RenderingProviderID,
				"requires_co_visit":     entry.RequiresCoVisit,
				"bookable_from":         entry.BookableFrom,
			})
		}

		insertQuery, insertArgs, err := a.db.Insert("bookable_entries").Rows(records).ToSQL()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return nil, apperrors.NewInternalError("failed to insert bookable entries", err)
		}
	}

	now := time.Now()
	snapQuery, snapArgs, err := a.db.Insert("bookability_snapshots").
		Rows(goqu.Record{
			"payer_id":     payerID,
			"version":      1,
			"entry_count":  len(entries),
			"stale":        false,
			"refreshed_at": now,
		}).
		OnConflict(goqu.DoUpdate("payer_id", goqu.Record{
			"version":      goqu.L("bookability_snapshots.version + 1"),
			"entry_count":  len(entries),
			"stale":        false,
			"refreshed_at": now,
		})).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build snapshot upsert", err)
	}
	if _, err := tx.ExecContext(ctx, snapQuery, snapArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to upsert bookability snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit snapshot swap", err)
	}

	return &entities.BookabilitySnapshot{
		PayerID:     payerID,
		EntryCount:  len(entries),
		Stale:       false,
		RefreshedAt: now,
	}, nil
}

// MarkStale flags a payer's snapshot so reads prefer the live path
func (a *BookableEntryAdapter) MarkStale(ctx context.Context, payerID string) error {
	query, args, err := a.db.Update("bookability_snapshots").
		Set(goqu.Record{"stale": true}).
		Where(goqu.Ex{"payer_id": payerID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build mark-stale query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to mark snapshot stale", err)
	}
	return nil
}

// CountByPayer returns the number of materialized entries for a payer
func (a *BookableEntryAdapter) CountByPayer(ctx context.Context, payerID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("bookable_entries").
		Where(goqu.Ex{"payer_id": payerID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count bookable entries", err)
	}
	return count, nil
}
