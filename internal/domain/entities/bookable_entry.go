package entities

import (
	"time"
)

// BookabilityPath says which arrangement makes a provider bookable
type BookabilityPath string

const (
	BookabilityPathDirect     BookabilityPath = "direct"
	BookabilityPathSupervised BookabilityPath = "supervised"
)

// BookableEntry is the resolved statement that a provider may be booked under
// a payer, and who bears billing responsibility. Entries are a materialized
// projection of contracts and supervision relationships; the live recompute
// is the source of truth whenever the two disagree.
type BookableEntry struct {
	PayerID             string          `json:"payer_id" db:"payer_id"`
	ProviderID          string          `json:"provider_id" db:"provider_id"`
	Via                 BookabilityPath `json:"via" db:"via"`
	BillingProviderID   string          `json:"billing_provider_id" db:"billing_provider_id"`
	RenderingProviderID string          `json:"rendering_provider_id" db:"rendering_provider_id"`
	RequiresCoVisit     bool            `json:"requires_co_visit" db:"requires_co_visit"`
	BookableFrom        time.Time       `json:"bookable_from" db:"bookable_from"`
}

// Supervised reports whether booking this provider bills through a supervisor.
func (e *BookableEntry) Supervised() bool {
	return e.Via == BookabilityPathSupervised
}

// BookabilitySnapshot records the state of a payer's materialized entries
type BookabilitySnapshot struct {
	PayerID     string    `json:"payer_id" db:"payer_id"`
	Version     int64     `json:"version" db:"version"`
	EntryCount  int       `json:"entry_count" db:"entry_count"`
	Stale       bool      `json:"stale" db:"stale"`
	RefreshedAt time.Time `json:"refreshed_at" db:"refreshed_at"`
}

// RefreshReport summarizes one refresh of a payer's materialized entries
type RefreshReport struct {
	EntriesProcessed int      `json:"entries_processed"`
	Added            int      `json:"added"`
	Removed          int      `json:"removed"`
	Errors           []string `json:"errors"`
}

// Merge folds another report into this one, used by full refreshes that walk
// every payer.
func (r *RefreshReport) Merge(other RefreshReport) {
	r.EntriesProcessed += other.EntriesProcessed
	r.Added += other.Added
	r.Removed += other.Removed
	r.Errors = append(r.Errors, other.Errors...)
}

// Divergence records a payer whose cached entry count disagreed with the live
// recompute during reconciliation
type Divergence struct {
	PayerID     string `json:"payer_id"`
	CachedCount int    `json:"cached_count"`
	LiveCount   int    `json:"live_count"`
}
