package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

type bookabilityFixture struct {
	payers      *MockPayerRepository
	contracts   *MockContractRepository
	supervision *MockSupervisionRepository
	entries     *MockBookableEntryRepository
	cache       *MockCacheProvider
	service     *services.BookabilityService
}

func newBookabilityFixture(withCache bool) *bookabilityFixture {
	f := &bookabilityFixture{
		payers:      new(MockPayerRepository),
		contracts:   new(MockContractRepository),
		supervision: new(MockSupervisionRepository),
		entries:     new(MockBookableEntryRepository),
	}
	if withCache {
		f.cache = new(MockCacheProvider)
		f.service = services.NewBookabilityService(f.payers, f.contracts, f.supervision, f.entries, f.cache, nil, 5*time.Minute)
	} else {
		f.service = services.NewBookabilityService(f.payers, f.contracts, f.supervision, f.entries, nil, nil, 5*time.Minute)
	}
	return f
}

func activeContract(providerID, payerID string, effective time.Time) *entities.Contract {
	return &entities.Contract{
		ID:            providerID + "-" + payerID,
		ProviderID:    providerID,
		PayerID:       payerID,
		Status:        entities.ContractStatusActive,
		EffectiveDate: effective,
	}
}

func supervisionRel(superviseeID, supervisorID, payerID string, level entities.SupervisionLevel, effective time.Time) *entities.SupervisionRelationship {
	return &entities.SupervisionRelationship{
		ID:            superviseeID + "-" + supervisorID,
		SuperviseeID:  superviseeID,
		SupervisorID:  supervisorID,
		PayerID:       payerID,
		Designation:   entities.SupervisionDesignationPrimary,
		Level:         level,
		EffectiveDate: effective,
	}
}

func TestResolveLive_DirectEntries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	contractStart := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1", StatusCode: entities.PayerStatusApproved}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-1", contractStart),
		activeContract("prov-b", "payer-1", contractStart),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)

	result, err := f.service.ResolveLive(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	for _, entry := range result {
		assert.Equal(t, entities.BookabilityPathDirect, entry.Via)
		assert.Equal(t, entry.ProviderID, entry.BillingProviderID)
		assert.Equal(t, entry.ProviderID, entry.RenderingProviderID)
		assert.False(t, entry.RequiresCoVisit)
		assert.Equal(t, contractStart, entry.BookableFrom)
	}
	// Sorted by provider ID
	assert.Equal(t, "prov-a", result[0].ProviderID)
	assert.Equal(t, "prov-b", result[1].ProviderID)
}

func TestResolveLive_SupervisedEntryBillsThroughSupervisor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("attending", "payer-1", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{
		supervisionRel("resident", "attending", "payer-1", entities.SupervisionLevelCoVisitRequired, start),
	}, nil)

	result, err := f.service.ResolveLive(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 2)

	resident := result[len(result)-1]
	assert.Equal(t, "resident", resident.ProviderID)
	assert.Equal(t, entities.BookabilityPathSupervised, resident.Via)
	assert.Equal(t, "attending", resident.BillingProviderID)
	assert.Equal(t, "resident", resident.RenderingProviderID)
	assert.True(t, resident.RequiresCoVisit)
}

func TestResolveLive_DirectWinsOverSupervised(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("attending", "payer-1", start),
		activeContract("resident", "payer-1", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{
		supervisionRel("resident", "attending", "payer-1", entities.SupervisionLevelSignOffOnly, start),
	}, nil)

	result, err := f.service.ResolveLive(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	for _, entry := range result {
		if entry.ProviderID == "resident" {
			assert.Equal(t, entities.BookabilityPathDirect, entry.Via)
			assert.Equal(t, "resident", entry.BillingProviderID)
		}
	}
}

func TestResolveLive_SupervisorWithoutDirectContractIsSkipped(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{
		supervisionRel("resident", "attending", "payer-1", entities.SupervisionLevelCoVisitRequired, start),
	}, nil)

	result, err := f.service.ResolveLive(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Empty(t, result, "supervision cannot make anyone bookable without a supervisor contract")
}

func TestResolveLive_BookableFromIsLatestGate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	contractStart := now.AddDate(0, -2, 0)
	relationshipStart := now.AddDate(0, -1, 0)
	payerEffective := now.AddDate(0, 0, 10)

	f := newBookabilityFixture(false)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{
		ID:            "payer-1",
		StatusCode:    entities.PayerStatusApproved,
		EffectiveDate: &payerEffective,
	}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("attending", "payer-1", contractStart),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{
		supervisionRel("resident", "attending", "payer-1", entities.SupervisionLevelSignOffOnly, relationshipStart),
	}, nil)

	result, err := f.service.ResolveLive(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	// A future payer effective date gates every entry, direct and supervised
	for _, entry := range result {
		assert.Equal(t, payerEffective, entry.BookableFrom)
	}
}

func TestResolveLive_SupervisedInheritsSupervisorGate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	contractStart := now.AddDate(0, 0, 5) // supervisor's contract starts later
	relationshipStart := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("attending", "payer-1", contractStart),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{
		supervisionRel("resident", "attending", "payer-1", entities.SupervisionLevelSignOffOnly, relationshipStart),
	}, nil)

	result, err := f.service.ResolveLive(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	for _, entry := range result {
		if entry.ProviderID == "resident" {
			assert.Equal(t, contractStart, entry.BookableFrom,
				"supervised entry cannot be bookable before its supervisor")
		}
	}
}

func TestResolve_ServesFromResponseCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cached := []*entities.BookableEntry{{
		PayerID: "payer-1", ProviderID: "prov-a", Via: entities.BookabilityPathDirect,
		BillingProviderID: "prov-a", RenderingProviderID: "prov-a", BookableFrom: now.AddDate(0, -1, 0),
	}}
	data, _ := json.Marshal(cached)

	f := newBookabilityFixture(true)
	f.cache.On("Get", mock.Anything, "bookability:payer:payer-1").Return(data, nil)

	result, err := f.service.Resolve(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "prov-a", result[0].ProviderID)
	f.entries.AssertNotCalled(t, "GetSnapshot", mock.Anything, mock.Anything)
}

func TestResolve_FreshSnapshotSkipsRecompute(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []*entities.BookableEntry{{
		PayerID: "payer-1", ProviderID: "prov-a", Via: entities.BookabilityPathDirect,
		BillingProviderID: "prov-a", RenderingProviderID: "prov-a", BookableFrom: now.AddDate(0, -1, 0),
	}}

	f := newBookabilityFixture(false)
	f.entries.On("GetSnapshot", mock.Anything, "payer-1").Return(entries,
		&entities.BookabilitySnapshot{PayerID: "payer-1", Version: 3, EntryCount: 1, Stale: false}, nil)

	result, err := f.service.Resolve(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Equal(t, entries, result)
	f.payers.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestResolve_StaleSnapshotFallsBackToLive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	staleEntries := []*entities.BookableEntry{
		{PayerID: "payer-1", ProviderID: "gone-provider", Via: entities.BookabilityPathDirect},
	}

	f := newBookabilityFixture(false)
	f.entries.On("GetSnapshot", mock.Anything, "payer-1").Return(staleEntries,
		&entities.BookabilitySnapshot{PayerID: "payer-1", Stale: true}, nil)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-1", now.AddDate(0, -1, 0)),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)

	result, err := f.service.Resolve(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "prov-a", result[0].ProviderID, "stale snapshot must never be served")
}

func TestResolve_MissingSnapshotFallsBackToLive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := newBookabilityFixture(false)
	f.entries.On("GetSnapshot", mock.Anything, "payer-1").Return(nil, nil, nil)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)

	result, err := f.service.Resolve(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestRefresh_ReplacesSnapshotAndReportsDiff(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	previous := []*entities.BookableEntry{
		{PayerID: "payer-1", ProviderID: "prov-a", Via: entities.BookabilityPathDirect},
		{PayerID: "payer-1", ProviderID: "gone-provider", Via: entities.BookabilityPathDirect},
	}

	f := newBookabilityFixture(true)
	f.entries.On("GetSnapshot", mock.Anything, "payer-1").Return(previous, &entities.BookabilitySnapshot{PayerID: "payer-1"}, nil)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-1", start),
		activeContract("prov-b", "payer-1", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)
	f.entries.On("ReplaceSnapshot", mock.Anything, "payer-1", mock.Anything).
		Return(&entities.BookabilitySnapshot{PayerID: "payer-1", Version: 2, EntryCount: 2}, nil)
	f.cache.On("Delete", mock.Anything, "bookability:payer:payer-1").Return(nil)

	report, err := f.service.Refresh(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.EntriesProcessed)
	assert.Equal(t, 1, report.Added)   // prov-b appeared
	assert.Equal(t, 1, report.Removed) // gone-provider dropped
	f.entries.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestRefresh_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	existing := []*entities.BookableEntry{
		{PayerID: "payer-1", ProviderID: "prov-a", Via: entities.BookabilityPathDirect},
	}

	f := newBookabilityFixture(false)
	f.entries.On("GetSnapshot", mock.Anything, "payer-1").Return(existing, &entities.BookabilitySnapshot{PayerID: "payer-1"}, nil)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-1", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)
	f.entries.On("ReplaceSnapshot", mock.Anything, "payer-1", mock.Anything).
		Return(&entities.BookabilitySnapshot{PayerID: "payer-1"}, nil)

	report, err := f.service.Refresh(context.Background(), "payer-1", now)

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 0, report.Removed)
}

func TestRefreshAll_CollectsPerPayerErrors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("ListIDs", mock.Anything).Return([]string{"payer-ok", "payer-broken"}, nil)

	f.entries.On("GetSnapshot", mock.Anything, "payer-ok").Return(nil, nil, nil)
	f.payers.On("GetByID", mock.Anything, "payer-ok").Return(&entities.Payer{ID: "payer-ok"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-ok", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-ok", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-ok", now).Return([]*entities.SupervisionRelationship{}, nil)
	f.entries.On("ReplaceSnapshot", mock.Anything, "payer-ok", mock.Anything).
		Return(&entities.BookabilitySnapshot{PayerID: "payer-ok"}, nil)

	f.entries.On("GetSnapshot", mock.Anything, "payer-broken").Return(nil, nil, errors.New("connection reset"))

	report, err := f.service.RefreshAll(context.Background(), now)

	assert.NoError(t, err, "one broken payer must not abort the sweep")
	assert.Equal(t, 1, report.EntriesProcessed)
	assert.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "payer-broken")
}

func TestReconcile_DivergenceMarksStaleAndInvalidatesCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(true)
	f.payers.On("ListIDs", mock.Anything).Return([]string{"payer-1"}, nil)
	f.entries.On("CountByPayer", mock.Anything, "payer-1").Return(3, nil)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-1", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)
	f.entries.On("MarkStale", mock.Anything, "payer-1").Return(nil)
	f.cache.On("Delete", mock.Anything, "bookability:payer:payer-1").Return(nil)

	divergences, err := f.service.Reconcile(context.Background(), 10, now)

	assert.NoError(t, err)
	assert.Len(t, divergences, 1)
	assert.Equal(t, "payer-1", divergences[0].PayerID)
	assert.Equal(t, 3, divergences[0].CachedCount)
	assert.Equal(t, 1, divergences[0].LiveCount)
	f.entries.AssertCalled(t, "MarkStale", mock.Anything, "payer-1")
	f.cache.AssertCalled(t, "Delete", mock.Anything, "bookability:payer:payer-1")
}

func TestReconcile_AgreementLeavesSnapshotAlone(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("ListIDs", mock.Anything).Return([]string{"payer-1"}, nil)
	f.entries.On("CountByPayer", mock.Anything, "payer-1").Return(1, nil)
	f.payers.On("GetByID", mock.Anything, "payer-1").Return(&entities.Payer{ID: "payer-1"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.Contract{
		activeContract("prov-a", "payer-1", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, "payer-1", now).Return([]*entities.SupervisionRelationship{}, nil)

	divergences, err := f.service.Reconcile(context.Background(), 10, now)

	assert.NoError(t, err)
	assert.Empty(t, divergences)
	f.entries.AssertNotCalled(t, "MarkStale", mock.Anything, mock.Anything)
}

func TestReconcile_SampleSizeLimitsWork(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	f := newBookabilityFixture(false)
	f.payers.On("ListIDs", mock.Anything).Return([]string{"payer-1", "payer-2", "payer-3", "payer-4"}, nil)
	f.entries.On("CountByPayer", mock.Anything, mock.Anything).Return(1, nil)
	f.payers.On("GetByID", mock.Anything, mock.Anything).Return(&entities.Payer{ID: "any"}, nil)
	f.contracts.On("ListInEffect", mock.Anything, mock.Anything, now).Return([]*entities.Contract{
		activeContract("prov-a", "any", start),
	}, nil)
	f.supervision.On("ListInEffect", mock.Anything, mock.Anything, now).Return([]*entities.SupervisionRelationship{}, nil)

	_, err := f.service.Reconcile(context.Background(), 2, now)

	assert.NoError(t, err)
	f.entries.AssertNumberOfCalls(t, "CountByPayer", 2)
}
