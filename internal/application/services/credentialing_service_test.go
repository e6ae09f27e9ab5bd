package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

type credentialingFixture struct {
	credentialing *MockCredentialingRepository
	contracts     *MockContractRepository
	providerRepo  *MockProviderRepository
	eventBus      *MockEventBus
	service       *services.CredentialingService
}

func newCredentialingFixture() *credentialingFixture {
	f := &credentialingFixture{
		credentialing: new(MockCredentialingRepository),
		contracts:     new(MockContractRepository),
		providerRepo:  new(MockProviderRepository),
		eventBus:      new(MockEventBus),
	}
	f.service = services.NewCredentialingService(f.credentialing, f.contracts, f.providerRepo, f.eventBus)
	return f
}

func workflowTemplate() *entities.WorkflowTemplate {
	return &entities.WorkflowTemplate{
		ID:      "tmpl-1",
		PayerID: "payer-1",
		Steps: []entities.WorkflowStep{
			{Position: 1, Name: "Submit roster form", Description: "Send the provider roster form"},
			{Position: 2, Name: "CAQH attestation", Description: "Confirm the CAQH profile is attested"},
			{Position: 3, Name: "Await countersignature", Description: "Payer returns the signed agreement"},
		},
	}
}

func doneTask(name string, position int) *entities.CredentialingTask {
	return &entities.CredentialingTask{
		ID: name, ProviderID: "prov-a", PayerID: "payer-1",
		Position: position, Name: name, Status: entities.CredentialingTaskStatusDone,
	}
}

func TestInstantiateTasks_GeneratesOrderedChecklist(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	f.credentialing.On("GetTemplate", mock.Anything, "payer-1").Return(workflowTemplate(), nil)
	f.credentialing.On("ReplaceTasks", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	tasks, err := f.service.InstantiateTasks(context.Background(), "prov-a", "payer-1", now)

	assert.NoError(t, err)
	assert.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Position, "template step order is preserved")
		assert.Equal(t, entities.CredentialingTaskStatusPending, task.Status)
		assert.Equal(t, "prov-a", task.ProviderID)
		assert.Equal(t, "payer-1", task.PayerID)
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, tasks[0].ApplicationID, task.ApplicationID)
	}
	assert.Equal(t, "Submit roster form", tasks[0].Name)
	f.credentialing.AssertExpectations(t)
}

func TestInstantiateTasks_PayerWithoutTemplate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	f.credentialing.On("GetTemplate", mock.Anything, "payer-1").
		Return(nil, apperrors.NewNotFoundError("no workflow template for payer"))

	tasks, err := f.service.InstantiateTasks(context.Background(), "prov-a", "payer-1", now)

	assert.Nil(t, tasks)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnprocessable),
		"onboarding must never proceed with an empty checklist")
	f.credentialing.AssertNotCalled(t, "ReplaceTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivateContract_AllTasksDone(t *testing.T) {
	effectiveDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	f.credentialing.On("ListTasks", mock.Anything, "prov-a", "payer-1").Return([]*entities.CredentialingTask{
		doneTask("Submit roster form", 1),
		doneTask("CAQH attestation", 2),
	}, nil)
	f.contracts.On("GetPending", mock.Anything, "prov-a", "payer-1").Return(&entities.Contract{
		ID: "contract-1", ProviderID: "prov-a", PayerID: "payer-1", Status: entities.ContractStatusPending,
	}, nil)
	f.contracts.On("Activate", mock.Anything, "contract-1", effectiveDate).Return(nil)
	f.providerRepo.On("SetBookable", mock.Anything, "prov-a", true).Return(nil)
	f.eventBus.On("Publish", mock.Anything, providers.EventChannelBookabilityUpdates, mock.Anything).Return(nil)

	contract, err := f.service.ActivateContract(context.Background(), "prov-a", "payer-1", effectiveDate)

	assert.NoError(t, err)
	assert.Equal(t, entities.ContractStatusActive, contract.Status)
	assert.Equal(t, effectiveDate, contract.EffectiveDate)
	f.contracts.AssertExpectations(t)
	f.providerRepo.AssertExpectations(t)
	f.eventBus.AssertExpectations(t)
}

func TestActivateContract_PublishesContractChangedEvent(t *testing.T) {
	effectiveDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	f.credentialing.On("ListTasks", mock.Anything, "prov-a", "payer-1").
		Return([]*entities.CredentialingTask{doneTask("Submit roster form", 1)}, nil)
	f.contracts.On("GetPending", mock.Anything, "prov-a", "payer-1").
		Return(&entities.Contract{ID: "contract-1"}, nil)
	f.contracts.On("Activate", mock.Anything, "contract-1", effectiveDate).Return(nil)
	f.providerRepo.On("SetBookable", mock.Anything, "prov-a", true).Return(nil)

	var published *entities.BookabilityEvent
	f.eventBus.On("Publish", mock.Anything, providers.EventChannelBookabilityUpdates, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(2).(*entities.BookabilityEvent)
		}).Return(nil)

	_, err := f.service.ActivateContract(context.Background(), "prov-a", "payer-1", effectiveDate)

	assert.NoError(t, err)
	assert.NotNil(t, published)
	assert.Equal(t, "payer-1", published.PayerID)
	assert.Equal(t, "prov-a", published.ProviderID)
	assert.Equal(t, entities.BookabilityEventTypeContractChanged, published.EventType)
}

func TestActivateContract_PendingTaskBlocksActivation(t *testing.T) {
	effectiveDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	pending := doneTask("CAQH attestation", 2)
	pending.Status = entities.CredentialingTaskStatusPending
	f.credentialing.On("ListTasks", mock.Anything, "prov-a", "payer-1").Return([]*entities.CredentialingTask{
		doneTask("Submit roster form", 1),
		pending,
	}, nil)

	contract, err := f.service.ActivateContract(context.Background(), "prov-a", "payer-1", effectiveDate)

	assert.Nil(t, contract)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnprocessable))
	assert.Contains(t, err.Error(), "CAQH attestation")
	f.contracts.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivateContract_NoTasksBlocksActivation(t *testing.T) {
	effectiveDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	f.credentialing.On("ListTasks", mock.Anything, "prov-a", "payer-1").
		Return([]*entities.CredentialingTask{}, nil)

	contract, err := f.service.ActivateContract(context.Background(), "prov-a", "payer-1", effectiveDate)

	assert.Nil(t, contract)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnprocessable))
}

func TestActivateContract_NoPendingContract(t *testing.T) {
	effectiveDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f := newCredentialingFixture()
	f.credentialing.On("ListTasks", mock.Anything, "prov-a", "payer-1").
		Return([]*entities.CredentialingTask{doneTask("Submit roster form", 1)}, nil)
	f.contracts.On("GetPending", mock.Anything, "prov-a", "payer-1").
		Return(nil, apperrors.NewNotFoundError("no pending contract"))

	contract, err := f.service.ActivateContract(context.Background(), "prov-a", "payer-1", effectiveDate)

	assert.Nil(t, contract)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
