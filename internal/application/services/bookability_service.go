package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/providers"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
)

// BookabilityService decides which providers can be booked under a payer and
// who bears billing responsibility.
//
// ResolveLive recomputes the answer from contracts and the supervision graph
// and is the only source of truth. The materialized bookable_entries table
// and the Redis response cache are read optimizations behind it; whenever
// they disagree with a live recompute, the live result wins and the snapshot
// is marked stale.
type BookabilityService struct {
	payers      repositories.PayerRepository
	contracts   repositories.ContractRepository
	supervision repositories.SupervisionRepository
	entries     repositories.BookableEntryRepository
	cache       providers.CacheProvider
	metrics     *observability.Metrics
	cacheTTL    time.Duration
}

// NewBookabilityService creates a new bookability service. cache and metrics
// may be nil.
func NewBookabilityService(
	payers repositories.PayerRepository,
	contracts repositories.ContractRepository,
	supervision repositories.SupervisionRepository,
	entries repositories.BookableEntryRepository,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cacheTTL time.Duration,
) *BookabilityService {
	return &BookabilityService{
		payers:      payers,
		contracts:   contracts,
		supervision: supervision,
		entries:     entries,
		cache:       cache,
		metrics:     metrics,
		cacheTTL:    cacheTTL,
	}
}

// ResolveLive recomputes the payer's bookable entries from the contract
// store and supervision graph as of the given instant. An empty result is a
// valid answer, not an error.
func (s *BookabilityService) ResolveLive(ctx context.Context, payerID string, asOf time.Time) ([]*entities.BookableEntry, error) {
	payer, err := s.payers.GetByID(ctx, payerID)
	if err != nil {
		return nil, err
	}

	contracts, err := s.contracts.ListInEffect(ctx, payerID, asOf)
	if err != nil {
		return nil, err
	}

	// Direct entries: provider bills the payer itself
	direct := make(map[string]*entities.BookableEntry, len(contracts))
	for _, contract := range contracts {
		direct[contract.ProviderID] = &entities.BookableEntry{
			PayerID:             payerID,
			ProviderID:          contract.ProviderID,
			Via:                 entities.BookabilityPathDirect,
			BillingProviderID:   contract.ProviderID,
			RenderingProviderID: contract.ProviderID,
			BookableFrom:        laterOf(contract.EffectiveDate, payer.EffectiveDate),
		}
	}

	relationships, err := s.supervision.ListInEffect(ctx, payerID, asOf)
	if err != nil {
		return nil, err
	}

	// Supervised entries: billed through a supervisor who holds a direct
	// contract. A provider reachable both ways keeps only the direct entry;
	// supervised billing is a fallback, not an addition.
	result := make([]*entities.BookableEntry, 0, len(direct)+len(relationships))
	for _, entry := range direct {
		result = append(result, entry)
	}
	for _, rel := range relationships {
		if _, hasDirect := direct[rel.SuperviseeID]; hasDirect {
			continue
		}
		supervisorEntry, supervisorDirect := direct[rel.SupervisorID]
		if !supervisorDirect {
			continue
		}
		bookableFrom := laterOf(rel.EffectiveDate, payer.EffectiveDate)
		if supervisorEntry.BookableFrom.After(bookableFrom) {
			bookableFrom = supervisorEntry.BookableFrom
		}
		result = append(result, &entities.BookableEntry{
			PayerID:             payerID,
			ProviderID:          rel.SuperviseeID,
			Via:                 entities.BookabilityPathSupervised,
			BillingProviderID:   rel.SupervisorID,
			RenderingProviderID: rel.SuperviseeID,
			RequiresCoVisit:     rel.RequiresCoVisit(),
			BookableFrom:        bookableFrom,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProviderID < result[j].ProviderID
	})
	return result, nil
}

// Resolve serves the payer's entries from the read-optimized path: Redis
// response cache first, then the materialized snapshot, falling back to a
// live recompute when no fresh snapshot exists. Known-stale snapshots are
// never served.
func (s *BookabilityService) Resolve(ctx context.Context, payerID string, asOf time.Time) ([]*entities.BookableEntry, error) {
	cacheKey := bookabilityCacheKey(payerID)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []*entities.BookableEntry
			if err := json.Unmarshal(data, &cached); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, "bookability")
				}
				return cached, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, "bookability")
		}
	}

	entries, snapshot, err := s.entries.GetSnapshot(ctx, payerID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil || snapshot.Stale {
		// No trustworthy materialized answer; pay the recompute cost rather
		// than show a slot that booking would reject
		live, err := s.ResolveLive(ctx, payerID, asOf)
		if err != nil {
			return nil, err
		}
		entries = live
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, int(s.cacheTTL.Seconds())); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).
					Str("payer_id", payerID).Msg("failed to cache bookability response")
			}
		}
	}
	return entries, nil
}

// Refresh recomputes and atomically replaces the payer's materialized
// entries. Running it twice with no intervening data change yields the same
// entry set.
func (s *BookabilityService) Refresh(ctx context.Context, payerID string, now time.Time) (entities.RefreshReport, error) {
	logger := observability.LoggerFromContext(ctx)

	previous, _, err := s.entries.GetSnapshot(ctx, payerID)
	if err != nil {
		return entities.RefreshReport{}, err
	}

	live, err := s.ResolveLive(ctx, payerID, now)
	if err != nil {
		return entities.RefreshReport{}, err
	}

	if _, err := s.entries.ReplaceSnapshot(ctx, payerID, live); err != nil {
		return entities.RefreshReport{}, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, bookabilityCacheKey(payerID)); err != nil {
			logger.Warn().Err(err).Str("payer_id", payerID).
				Msg("failed to invalidate bookability response cache")
		}
	}

	report := diffEntries(previous, live)
	if s.metrics != nil {
		observability.RecordRefreshMetric(ctx, s.metrics, payerID, len(live))
	}
	logger.Info().Str("payer_id", payerID).
		Int("before", len(previous)).Int("after", len(live)).
		Int("added", report.Added).Int("removed", report.Removed).
		Msg("refreshed bookability snapshot")
	return report, nil
}

// RefreshAll refreshes every payer's snapshot. Per-payer failures are
// collected rather than aborting the sweep.
func (s *BookabilityService) RefreshAll(ctx context.Context, now time.Time) (entities.RefreshReport, error) {
	payerIDs, err := s.payers.ListIDs(ctx)
	if err != nil {
		return entities.RefreshReport{}, err
	}

	var report entities.RefreshReport
	for _, payerID := range payerIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		payerReport, err := s.Refresh(ctx, payerID, now)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("payer %s: %v", payerID, err))
			continue
		}
		report.Merge(payerReport)
	}
	return report, nil
}

// Reconcile compares the materialized entry count against a live recompute
// for a sample of payers. Divergent payers are marked stale so reads prefer
// the live path until the next refresh. Persistent divergence is an
// operational signal, not a per-request error.
func (s *BookabilityService) Reconcile(ctx context.Context, sampleSize int, now time.Time) ([]entities.Divergence, error) {
	logger := observability.LoggerFromContext(ctx)

	payerIDs, err := s.payers.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	if sampleSize > 0 && len(payerIDs) > sampleSize {
		rand.Shuffle(len(payerIDs), func(i, j int) {
			payerIDs[i], payerIDs[j] = payerIDs[j], payerIDs[i]
		})
		payerIDs = payerIDs[:sampleSize]
	}

	var divergences []entities.Divergence
	for _, payerID := range payerIDs {
		if err := ctx.Err(); err != nil {
			return divergences, err
		}

		cachedCount, err := s.entries.CountByPayer(ctx, payerID)
		if err != nil {
			logger.Error().Err(err).Str("payer_id", payerID).Msg("reconcile: failed to count cached entries")
			continue
		}
		live, err := s.ResolveLive(ctx, payerID, now)
		if err != nil {
			logger.Error().Err(err).Str("payer_id", payerID).Msg("reconcile: live recompute failed")
			continue
		}
		if cachedCount == len(live) {
			continue
		}

		divergences = append(divergences, entities.Divergence{
			PayerID:     payerID,
			CachedCount: cachedCount,
			LiveCount:   len(live),
		})
		logger.Warn().Str("payer_id", payerID).
			Int("cached_count", cachedCount).Int("live_count", len(live)).
			Msg("bookability cache diverged from live recompute, marking stale")
		if s.metrics != nil {
			observability.RecordDivergence(ctx, s.metrics, payerID)
		}
		if err := s.entries.MarkStale(ctx, payerID); err != nil {
			logger.Error().Err(err).Str("payer_id", payerID).Msg("failed to mark snapshot stale")
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, bookabilityCacheKey(payerID)); err != nil {
				logger.Warn().Err(err).Str("payer_id", payerID).
					Msg("failed to invalidate bookability response cache")
			}
		}
	}
	return divergences, nil
}

func bookabilityCacheKey(payerID string) string {
	return fmt.Sprintf("bookability:payer:%s", payerID)
}

func laterOf(a time.Time, b *time.Time) time.Time {
	if b != nil && b.After(a) {
		return *b
	}
	return a
}

func diffEntries(before, after []*entities.BookableEntry) entities.RefreshReport {
	key := func(e *entities.BookableEntry) string {
		return e.ProviderID + "|" + string(e.Via)
	}

	beforeSet := make(map[string]struct{}, len(before))
	for _, entry := range before {
		beforeSet[key(entry)] = struct{}{}
	}

	report := entities.RefreshReport{EntriesProcessed: len(after)}
	afterSet := make(map[string]struct{}, len(after))
	for _, entry := range after {
		k := key(entry)
		afterSet[k] = struct{}{}
		if _, existed := beforeSet[k]; !existed {
			report.Added++
		}
	}
	for k := range beforeSet {
		if _, kept := afterSet[k]; !kept {
			report.Removed++
		}
	}
	return report
}
