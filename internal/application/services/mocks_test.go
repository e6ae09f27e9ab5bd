package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
)

// Mocks shared by the service tests in this package

type MockPayerRepository struct {
	mock.Mock
}

func (m *MockPayerRepository) GetByID(ctx context.Context, id string) (*entities.Payer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payer), args.Error(1)
}

func (m *MockPayerRepository) List(ctx context.Context, filter repositories.PayerFilter) ([]*entities.Payer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payer), args.Error(1)
}

func (m *MockPayerRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) GetByID(ctx context.Context, id string) (*entities.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contract), args.Error(1)
}

func (m *MockContractRepository) ListByPayer(ctx context.Context, payerID string) ([]*entities.Contract, error) {
	args := m.Called(ctx, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Contract), args.Error(1)
}

func (m *MockContractRepository) ListInEffect(ctx context.Context, payerID string, asOf time.Time) ([]*entities.Contract, error) {
	args := m.Called(ctx, payerID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Contract), args.Error(1)
}

func (m *MockContractRepository) GetPending(ctx context.Context, providerID, payerID string) (*entities.Contract, error) {
	args := m.Called(ctx, providerID, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contract), args.Error(1)
}

func (m *MockContractRepository) Activate(ctx context.Context, id string, effectiveDate time.Time) error {
	args := m.Called(ctx, id, effectiveDate)
	return args.Error(0)
}

type MockSupervisionRepository struct {
	mock.Mock
}

func (m *MockSupervisionRepository) ListByPayer(ctx context.Context, payerID string) ([]*entities.SupervisionRelationship, error) {
	args := m.Called(ctx, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SupervisionRelationship), args.Error(1)
}

func (m *MockSupervisionRepository) ListInEffect(ctx context.Context, payerID string, asOf time.Time) ([]*entities.SupervisionRelationship, error) {
	args := m.Called(ctx, payerID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SupervisionRelationship), args.Error(1)
}

func (m *MockSupervisionRepository) GetPrimaryForSupervisee(ctx context.Context, superviseeID, payerID string, asOf time.Time) (*entities.SupervisionRelationship, error) {
	args := m.Called(ctx, superviseeID, payerID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SupervisionRelationship), args.Error(1)
}

type MockBookableEntryRepository struct {
	mock.Mock
}

func (m *MockBookableEntryRepository) GetSnapshot(ctx context.Context, payerID string) ([]*entities.BookableEntry, *entities.BookabilitySnapshot, error) {
	args := m.Called(ctx, payerID)
	var entries []*entities.BookableEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]*entities.BookableEntry)
	}
	var snapshot *entities.BookabilitySnapshot
	if args.Get(1) != nil {
		snapshot = args.Get(1).(*entities.BookabilitySnapshot)
	}
	return entries, snapshot, args.Error(2)
}

func (m *MockBookableEntryRepository) ReplaceSnapshot(ctx context.Context, payerID string, entries []*entities.BookableEntry) (*entities.BookabilitySnapshot, error) {
	args := m.Called(ctx, payerID, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookabilitySnapshot), args.Error(1)
}

func (m *MockBookableEntryRepository) MarkStale(ctx context.Context, payerID string) error {
	args := m.Called(ctx, payerID)
	return args.Error(0)
}

func (m *MockBookableEntryRepository) CountByPayer(ctx context.Context, payerID string) (int, error) {
	args := m.Called(ctx, payerID)
	return args.Int(0), args.Error(1)
}

type MockProviderRepository struct {
	mock.Mock
}

func (m *MockProviderRepository) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Provider), args.Error(1)
}

func (m *MockProviderRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Provider), args.Error(1)
}

func (m *MockProviderRepository) SetBookable(ctx context.Context, id string, bookable bool) error {
	args := m.Called(ctx, id, bookable)
	return args.Error(0)
}

type MockServiceInstanceRepository struct {
	mock.Mock
}

func (m *MockServiceInstanceRepository) GetByID(ctx context.Context, id string) (*entities.ServiceInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ServiceInstance), args.Error(1)
}

func (m *MockServiceInstanceRepository) ListByCategory(ctx context.Context, category string) ([]*entities.ServiceInstance, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ServiceInstance), args.Error(1)
}

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) ListRules(ctx context.Context, providerID string) ([]*entities.AvailabilityRule, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AvailabilityRule), args.Error(1)
}

func (m *MockAvailabilityRepository) ListExceptions(ctx context.Context, providerID string, dateRange entities.DateRange) ([]*entities.AvailabilityException, error) {
	args := m.Called(ctx, providerID, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AvailabilityException), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListBlocking(ctx context.Context, providerID string, dateRange entities.DateRange) ([]*entities.Appointment, error) {
	args := m.Called(ctx, providerID, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Cancel(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCredentialingRepository struct {
	mock.Mock
}

func (m *MockCredentialingRepository) GetTemplate(ctx context.Context, payerID string) (*entities.WorkflowTemplate, error) {
	args := m.Called(ctx, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WorkflowTemplate), args.Error(1)
}

func (m *MockCredentialingRepository) ReplaceTasks(ctx context.Context, application *entities.CredentialingApplication, tasks []*entities.CredentialingTask) error {
	args := m.Called(ctx, application, tasks)
	return args.Error(0)
}

func (m *MockCredentialingRepository) ListTasks(ctx context.Context, providerID, payerID string) ([]*entities.CredentialingTask, error) {
	args := m.Called(ctx, providerID, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CredentialingTask), args.Error(1)
}

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.BookabilityEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookabilityEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.BookabilityEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}
