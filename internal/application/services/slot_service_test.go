package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

type slotFixture struct {
	catalogRepo  *MockServiceInstanceRepository
	payers       *MockPayerRepository
	contracts    *MockContractRepository
	supervision  *MockSupervisionRepository
	entries      *MockBookableEntryRepository
	availability *MockAvailabilityRepository
	appointments *MockAppointmentRepository
	service      *services.SlotService
}

func newSlotFixture(leadTime, buffer time.Duration) *slotFixture {
	f := &slotFixture{
		catalogRepo:  new(MockServiceInstanceRepository),
		payers:       new(MockPayerRepository),
		contracts:    new(MockContractRepository),
		supervision:  new(MockSupervisionRepository),
		entries:      new(MockBookableEntryRepository),
		availability: new(MockAvailabilityRepository),
		appointments: new(MockAppointmentRepository),
	}
	bookability := services.NewBookabilityService(f.payers, f.contracts, f.supervision, f.entries, nil, nil, time.Minute)
	f.service = services.NewSlotService(
		services.NewCatalogService(f.catalogRepo),
		bookability,
		services.NewAvailabilityService(f.availability),
		f.appointments,
		nil,
		leadTime,
		buffer,
	)
	return f
}

func (f *slotFixture) givenCatalog(durationMinutes int) {
	f.catalogRepo.On("ListByCategory", mock.Anything, "Therapy Intake").Return([]*entities.ServiceInstance{
		serviceInstance("svc-1", nil, intPtr(durationMinutes), strPtr("EHR-90791")),
	}, nil)
}

func (f *slotFixture) givenEntries(entries ...*entities.BookableEntry) {
	f.entries.On("GetSnapshot", mock.Anything, "payer-1").Return(entries,
		&entities.BookabilitySnapshot{PayerID: "payer-1", EntryCount: len(entries)}, nil)
}

func (f *slotFixture) givenMondayMornings(providerID string) {
	f.availability.On("ListRules", mock.Anything, providerID).Return([]*entities.AvailabilityRule{
		{ID: providerID + "-mornings", ProviderID: providerID, Weekday: time.Monday,
			StartMinute: 540, EndMinute: 720, IsRecurring: true, Timezone: "UTC"},
	}, nil)
	f.availability.On("ListExceptions", mock.Anything, providerID, mock.Anything).
		Return([]*entities.AvailabilityException{}, nil)
}

func (f *slotFixture) givenNoBlocking(providerID string) {
	f.appointments.On("ListBlocking", mock.Anything, providerID, mock.Anything).
		Return([]*entities.Appointment{}, nil)
}

func directEntry(providerID string, bookableFrom time.Time) *entities.BookableEntry {
	return &entities.BookableEntry{
		PayerID:             "payer-1",
		ProviderID:          providerID,
		Via:                 entities.BookabilityPathDirect,
		BillingProviderID:   providerID,
		RenderingProviderID: providerID,
		BookableFrom:        bookableFrom,
	}
}

// Monday June 2, 2025
func mondayRange() entities.DateRange {
	return entities.DateRange{
		From: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateSlots_TilesWindowWithoutOverlap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))
	f.givenMondayMornings("prov-a")
	f.givenNoBlocking("prov-a")

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 3, "a 3-hour window tiles into three 60-minute slots")
	for i, slot := range slots {
		assert.Equal(t, "prov-a", slot.ProviderID)
		assert.Equal(t, "svc-1", slot.ServiceInstanceID)
		assert.Equal(t, time.Hour, slot.End.Sub(slot.Start))
		if i > 0 {
			assert.False(t, slot.Start.Before(slots[i-1].End), "slots must not overlap")
		}
	}
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestGenerateSlots_BufferSpacesSlots(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 15*time.Minute)
	f.givenCatalog(30)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))
	f.givenMondayMornings("prov-a")
	f.givenNoBlocking("prov-a")

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.NotEmpty(t, slots)
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 45*time.Minute, slots[i].Start.Sub(slots[i-1].Start),
			"consecutive starts are duration plus buffer apart")
	}
}

func TestGenerateSlots_BlockingAppointmentExcludesSlots(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))
	f.givenMondayMornings("prov-a")
	f.appointments.On("ListBlocking", mock.Anything, "prov-a", mock.Anything).
		Return([]*entities.Appointment{{
			ID:         "appt-1",
			ProviderID: "prov-a",
			StartTime:  time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
			Status:     entities.AppointmentStatusScheduled,
		}}, nil)

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC), slots[1].Start)
}

func TestGenerateSlots_MisalignedAppointmentKeepsGridAnchored(t *testing.T) {
	// A 9:30-10:30 appointment inside a 9:00-12:00 window knocks out the
	// 9:00 and 10:00 slots but must not re-anchor the grid at 10:30; the
	// only remaining slot is 11:00-12:00
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))
	f.givenMondayMornings("prov-a")
	f.appointments.On("ListBlocking", mock.Anything, "prov-a", mock.Anything).
		Return([]*entities.Appointment{{
			ID:         "appt-1",
			ProviderID: "prov-a",
			StartTime:  time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
			Status:     entities.AppointmentStatusScheduled,
		}}, nil)

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), slots[0].End)
}

func TestGenerateSlots_LeadTimeClampsRangeStart(t *testing.T) {
	// 22 hours of lead time pushes the earliest offerable start to 10:00 on
	// Monday, dropping the 9:00 slot
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(22*time.Hour, 0)
	f.givenCatalog(60)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))
	f.givenMondayMornings("prov-a")
	f.givenNoBlocking("prov-a")

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestGenerateSlots_RangeEntirelyInsideLeadTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(7*24*time.Hour, 0)
	f.givenCatalog(60)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_CoVisitIntersectsSupervisorWindows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(&entities.BookableEntry{
		PayerID:             "payer-1",
		ProviderID:          "resident",
		Via:                 entities.BookabilityPathSupervised,
		BillingProviderID:   "attending",
		RenderingProviderID: "resident",
		RequiresCoVisit:     true,
		BookableFrom:        now.AddDate(0, -1, 0),
	})
	f.givenMondayMornings("resident")
	// Attending only free 10:00-11:00
	f.availability.On("ListRules", mock.Anything, "attending").Return([]*entities.AvailabilityRule{
		{ID: "attending-late", ProviderID: "attending", Weekday: time.Monday,
			StartMinute: 600, EndMinute: 660, IsRecurring: true, Timezone: "UTC"},
	}, nil)
	f.availability.On("ListExceptions", mock.Anything, "attending", mock.Anything).
		Return([]*entities.AvailabilityException{}, nil)
	f.givenNoBlocking("resident")
	f.givenNoBlocking("attending")

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 1, "co-visit slots exist only where both calendars are open")
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, "attending", slots[0].BillingProviderID)
	assert.True(t, slots[0].RequiresCoVisit)
}

func TestGenerateSlots_CoVisitRespectsSupervisorAppointments(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(&entities.BookableEntry{
		PayerID:             "payer-1",
		ProviderID:          "resident",
		Via:                 entities.BookabilityPathSupervised,
		BillingProviderID:   "attending",
		RenderingProviderID: "resident",
		RequiresCoVisit:     true,
		BookableFrom:        now.AddDate(0, -1, 0),
	})
	f.givenMondayMornings("resident")
	f.givenMondayMornings("attending")
	f.givenNoBlocking("resident")
	// Attending already booked 9:00-10:00
	f.appointments.On("ListBlocking", mock.Anything, "attending", mock.Anything).
		Return([]*entities.Appointment{{
			ID:         "appt-1",
			ProviderID: "attending",
			StartTime:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			Status:     entities.AppointmentStatusConfirmed,
		}}, nil)

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), slots[0].Start,
		"the supervisor's existing appointment blocks the co-visit")
}

func TestGenerateSlots_BookableFromClampsEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	// Provider only becomes bookable at 11:00 on the Monday
	f.givenEntries(directEntry("prov-a", time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)))
	f.givenMondayMornings("prov-a")
	f.givenNoBlocking("prov-a")

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestGenerateSlots_SortedByStartThenProvider(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(
		directEntry("prov-b", now.AddDate(0, -1, 0)),
		directEntry("prov-a", now.AddDate(0, -1, 0)),
	)
	f.givenMondayMornings("prov-a")
	f.givenMondayMornings("prov-b")
	f.givenNoBlocking("prov-a")
	f.givenNoBlocking("prov-b")

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err)
	assert.Len(t, slots, 6)
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		ordered := prev.Start.Before(cur.Start) ||
			(prev.Start.Equal(cur.Start) && prev.ProviderID <= cur.ProviderID)
		assert.True(t, ordered, "slots must be ordered by start time, then provider ID")
	}
}

func TestGenerateSlots_ProviderFailureSkipsProviderOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(
		directEntry("prov-a", now.AddDate(0, -1, 0)),
		directEntry("prov-broken", now.AddDate(0, -1, 0)),
	)
	f.givenMondayMornings("prov-a")
	f.givenNoBlocking("prov-a")
	f.availability.On("ListRules", mock.Anything, "prov-broken").
		Return(nil, apperrors.NewInternalError("db down", nil))

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", mondayRange(), now)

	assert.NoError(t, err, "one provider's failure must not empty the whole answer")
	assert.Len(t, slots, 3)
	for _, slot := range slots {
		assert.Equal(t, "prov-a", slot.ProviderID)
	}
}

func TestGenerateSlots_CancelledContextReturnsPartialResult(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)
	f.givenCatalog(60)
	f.givenEntries(directEntry("prov-a", now.AddDate(0, -1, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slots, err := f.service.GenerateSlots(ctx, "payer-1", "Therapy Intake", mondayRange(), now)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, slots)
}

func TestGenerateSlots_InvalidRange(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newSlotFixture(0, 0)

	slots, err := f.service.GenerateSlots(context.Background(), "payer-1", "Therapy Intake", entities.DateRange{
		From: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}, now)

	assert.Nil(t, slots)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
