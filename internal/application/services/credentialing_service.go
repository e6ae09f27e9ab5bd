package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/providers"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// CredentialingService drives a provider's onboarding with a payer: it
// instantiates the payer's workflow template into tasks and activates the
// contract once every task is done.
type CredentialingService struct {
	credentialing repositories.CredentialingRepository
	contracts     repositories.ContractRepository
	providerRepo  repositories.ProviderRepository
	eventBus      providers.EventBus
}

// NewCredentialingService creates a new credentialing service. eventBus may
// be nil.
func NewCredentialingService(
	credentialing repositories.CredentialingRepository,
	contracts repositories.ContractRepository,
	providerRepo repositories.ProviderRepository,
	eventBus providers.EventBus,
) *CredentialingService {
	return &CredentialingService{
		credentialing: credentialing,
		contracts:     contracts,
		providerRepo:  providerRepo,
		eventBus:      eventBus,
	}
}

// InstantiateTasks generates the provider's task checklist from the payer's
// workflow template. A payer without a template is a hard error; onboarding
// must never silently proceed with an empty checklist. Re-running replaces
// any prior tasks for the pair.
func (s *CredentialingService) InstantiateTasks(ctx context.Context, providerID, payerID string, now time.Time) ([]*entities.CredentialingTask, error) {
	logger := observability.LoggerFromContext(ctx)

	template, err := s.credentialing.GetTemplate(ctx, payerID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnprocessableError(
				fmt.Sprintf("payer %s has no credentialing workflow template", payerID))
		}
		return nil, err
	}

	application := &entities.CredentialingApplication{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		PayerID:    payerID,
		Status:     "open",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tasks := make([]*entities.CredentialingTask, 0, len(template.Steps))
	for _, step := range template.Steps {
		tasks = append(tasks, &entities.CredentialingTask{
			ID:            uuid.New().String(),
			ApplicationID: application.ID,
			ProviderID:    providerID,
			PayerID:       payerID,
			Position:      step.Position,
			Name:          step.Name,
			Description:   step.Description,
			Status:        entities.CredentialingTaskStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := s.credentialing.ReplaceTasks(ctx, application, tasks); err != nil {
		return nil, err
	}

	logger.Info().Str("provider_id", providerID).Str("payer_id", payerID).
		Int("tasks", len(tasks)).Msg("instantiated credentialing tasks")
	return tasks, nil
}

// ActivateContract activates the pair's pending contract once every
// credentialing task is done, marks the provider bookable, and publishes a
// contract-changed event so the payer's bookability snapshot is refreshed.
func (s *CredentialingService) ActivateContract(ctx context.Context, providerID, payerID string, effectiveDate time.Time) (*entities.Contract, error) {
	logger := observability.LoggerFromContext(ctx)

	tasks, err := s.credentialing.ListTasks(ctx, providerID, payerID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("no credentialing tasks exist for provider %s and payer %s", providerID, payerID))
	}
	for _, task := range tasks {
		if task.Status != entities.CredentialingTaskStatusDone {
			return nil, apperrors.NewUnprocessableError(
				fmt.Sprintf("credentialing task %q is not done", task.Name))
		}
	}

	contract, err := s.contracts.GetPending(ctx, providerID, payerID)
	if err != nil {
		return nil, err
	}
	if err := s.contracts.Activate(ctx, contract.ID, effectiveDate); err != nil {
		return nil, err
	}
	contract.Status = entities.ContractStatusActive
	contract.EffectiveDate = effectiveDate

	if err := s.providerRepo.SetBookable(ctx, providerID, true); err != nil {
		logger.Error().Err(err).Str("provider_id", providerID).
			Msg("contract activated but failed to mark provider bookable")
	}

	if s.eventBus != nil {
		event := entities.NewBookabilityEvent(payerID, providerID, entities.BookabilityEventTypeContractChanged)
		if err := s.eventBus.Publish(ctx, providers.EventChannelBookabilityUpdates, event); err != nil {
			logger.Warn().Err(err).Str("payer_id", payerID).
				Msg("failed to publish contract activation event")
		}
	}

	logger.Info().Str("contract_id", contract.ID).
		Str("provider_id", providerID).Str("payer_id", payerID).
		Time("effective_date", effectiveDate).Msg("activated contract")
	return contract, nil
}
