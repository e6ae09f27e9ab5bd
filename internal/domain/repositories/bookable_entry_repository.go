package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// BookableEntryRepository manages the materialized bookability projection.
// The table is a cache of the live recompute, never a source of truth.
type BookableEntryRepository interface {
	// GetSnapshot retrieves a payer's materialized entries together with the
	// snapshot metadata, or a nil snapshot when the payer has never been
	// refreshed
	GetSnapshot(ctx context.Context, payerID string) ([]*entities.BookableEntry, *entities.BookabilitySnapshot, error)

	// ReplaceSnapshot atomically swaps a payer's entries for the given set in
	// a single transaction. Readers see either the old or the new snapshot,
	// never a mix.
	ReplaceSnapshot(ctx context.Context, payerID string, entries []*entities.BookableEntry) (*entities.BookabilitySnapshot, error)

	// MarkStale flags a payer's snapshot so reads prefer the live path until
	// the next refresh
	MarkStale(ctx context.Context, payerID string) error

	// CountByPayer returns the number of materialized entries for a payer
	CountByPayer(ctx context.Context, payerID string) (int, error)
}
