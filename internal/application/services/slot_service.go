package services

import (
	"context"
	"sort"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// SlotService turns bookable entries, availability windows, and existing
// appointments into concrete offerable slots.
type SlotService struct {
	catalog      *CatalogService
	bookability  *BookabilityService
	availability *AvailabilityService
	appointments repositories.AppointmentRepository
	metrics      *observability.Metrics
	leadTime     time.Duration
	buffer       time.Duration
}

// NewSlotService creates a new slot service. metrics may be nil.
func NewSlotService(
	catalog *CatalogService,
	bookability *BookabilityService,
	availability *AvailabilityService,
	appointments repositories.AppointmentRepository,
	metrics *observability.Metrics,
	leadTime time.Duration,
	buffer time.Duration,
) *SlotService {
	return &SlotService{
		catalog:      catalog,
		bookability:  bookability,
		availability: availability,
		appointments: appointments,
		metrics:      metrics,
		leadTime:     leadTime,
		buffer:       buffer,
	}
}

// GenerateSlots produces every offerable slot for the payer and service
// category within the range, sorted by start time then provider ID.
//
// If the context is cancelled partway through the provider list, the slots
// computed so far are returned along with the context error; callers decide
// whether a partial answer is acceptable.
func (s *SlotService) GenerateSlots(ctx context.Context, payerID, serviceCategory string, dateRange entities.DateRange, now time.Time) ([]*entities.Slot, error) {
	logger := observability.LoggerFromContext(ctx)

	if !dateRange.Valid() {
		return nil, apperrors.NewValidationError("date range end must be after start")
	}

	resolved, err := s.catalog.ResolveBookableService(ctx, payerID, serviceCategory)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(resolved.DurationMinutes) * time.Minute

	entries, err := s.bookability.Resolve(ctx, payerID, now)
	if err != nil {
		return nil, err
	}

	// Slots may not start before the booking lead time has elapsed
	earliest := now.Add(s.leadTime)
	if earliest.After(dateRange.From) {
		dateRange.From = earliest
	}
	if !dateRange.Valid() {
		return nil, nil
	}

	var slots []*entities.Slot
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			logger.Warn().Str("payer_id", payerID).Int("slots_so_far", len(slots)).
				Msg("slot generation cancelled, returning partial result")
			return sortSlots(slots), err
		}

		entrySlots, err := s.slotsForEntry(ctx, entry, resolved.ServiceInstanceID, duration, dateRange)
		if err != nil {
			logger.Error().Err(err).Str("provider_id", entry.RenderingProviderID).
				Str("payer_id", payerID).Msg("failed to generate slots for provider")
			continue
		}
		slots = append(slots, entrySlots...)
	}

	if s.metrics != nil {
		s.metrics.SlotsGeneratedHist.Record(ctx, int64(len(slots)))
	}
	return sortSlots(slots), nil
}

func (s *SlotService) slotsForEntry(ctx context.Context, entry *entities.BookableEntry, serviceInstanceID string, duration time.Duration, dateRange entities.DateRange) ([]*entities.Slot, error) {
	// An entry may only be offered once its bookable-from date has passed
	entryRange := dateRange
	if entry.BookableFrom.After(entryRange.From) {
		entryRange.From = entry.BookableFrom
	}
	if !entryRange.Valid() {
		return nil, nil
	}

	windows, err := s.availability.OpenWindows(ctx, entry.RenderingProviderID, entryRange)
	if err != nil {
		return nil, err
	}

	// A co-visit needs the supervisor physically present, so only time open
	// for both providers is offerable
	if entry.RequiresCoVisit {
		supervisorWindows, err := s.availability.OpenWindows(ctx, entry.BillingProviderID, entryRange)
		if err != nil {
			return nil, err
		}
		windows = entities.IntersectIntervals(windows, supervisorWindows)
	}

	blocked, err := s.blockedIntervals(ctx, entry, entryRange)
	if err != nil {
		return nil, err
	}

	// The grid is anchored at each window's start: tile back-to-back first,
	// then drop slots an appointment overlaps. An appointment never shifts
	// the slots after it onto a new grid.
	var slots []*entities.Slot
	for _, window := range windows {
		for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(duration + s.buffer) {
			candidate := entities.Interval{Start: start, End: start.Add(duration)}
			if overlapsAny(candidate, blocked) {
				continue
			}
			slots = append(slots, &entities.Slot{
				ProviderID:        entry.RenderingProviderID,
				BillingProviderID: entry.BillingProviderID,
				ServiceInstanceID: serviceInstanceID,
				Start:             candidate.Start,
				End:               candidate.End,
				RequiresCoVisit:   entry.RequiresCoVisit,
			})
		}
	}
	return slots, nil
}

// blockedIntervals collects the appointment windows that make a slot
// unofferable for the entry: the rendering provider's, plus the
// supervisor's when the visit needs both in the room.
func (s *SlotService) blockedIntervals(ctx context.Context, entry *entities.BookableEntry, dateRange entities.DateRange) ([]entities.Interval, error) {
	blocking, err := s.appointments.ListBlocking(ctx, entry.RenderingProviderID, dateRange)
	if err != nil {
		return nil, err
	}
	blocked := make([]entities.Interval, 0, len(blocking))
	for _, appt := range blocking {
		blocked = append(blocked, appt.Window())
	}

	if entry.RequiresCoVisit && entry.BillingProviderID != entry.RenderingProviderID {
		supervisorBlocking, err := s.appointments.ListBlocking(ctx, entry.BillingProviderID, dateRange)
		if err != nil {
			return nil, err
		}
		for _, appt := range supervisorBlocking {
			blocked = append(blocked, appt.Window())
		}
	}
	return blocked, nil
}

func overlapsAny(candidate entities.Interval, blocked []entities.Interval) bool {
	for _, b := range blocked {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

func sortSlots(slots []*entities.Slot) []*entities.Slot {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].ProviderID < slots[j].ProviderID
	})
	return slots
}
