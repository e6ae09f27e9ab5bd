package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// CatalogService resolves the one canonical bookable service definition for a
// payer and clinical service category.
//
// Resolution is a pipeline of independently inspectable filtering stages
// rather than one relational join. Collapsing the stages into a single query
// is what makes zero-result bugs impossible to diagnose; each stage's
// candidate count is logged so a failure names the stage that emptied the
// set.
type CatalogService struct {
	repo repositories.ServiceInstanceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repositories.ServiceInstanceRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ResolveBookableService picks the canonical bookable service instance for
// the payer and category.
func (s *CatalogService) ResolveBookableService(ctx context.Context, payerID, serviceCategory string) (*entities.ResolvedService, error) {
	logger := observability.LoggerFromContext(ctx)

	// Stage 1: all instances whose service name matches the category
	candidates, err := s.repo.ListByCategory(ctx, serviceCategory)
	if err != nil {
		return nil, err
	}

	// Stage 2: payer-specific or globally scoped
	var scoped []*entities.ServiceInstance
	for _, candidate := range candidates {
		if candidate.ScopedToPayer(payerID) {
			scoped = append(scoped, candidate)
		}
	}
	if len(scoped) == 0 {
		logger.Debug().Str("payer_id", payerID).Str("category", serviceCategory).
			Int("matched", len(candidates)).
			Msg("no service instance in scope for payer")
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("no bookable %s service for payer %s", serviceCategory, payerID))
	}

	// Stage 3: must have a confirmed external billing mapping to be bookable
	// end to end
	var mapped []*entities.ServiceInstance
	for _, candidate := range scoped {
		if candidate.HasExternalMapping() {
			mapped = append(mapped, candidate)
		}
	}
	if len(mapped) == 0 {
		logger.Debug().Str("payer_id", payerID).Str("category", serviceCategory).
			Int("scoped", len(scoped)).
			Msg("no service instance with external billing mapping")
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("no bookable %s service for payer %s", serviceCategory, payerID))
	}

	// Stage 4: a payer-specific match beats a global one; more than one
	// candidate at the same specificity is a catalog defect, never a silent
	// pick
	chosen, err := pickCanonical(mapped, payerID, serviceCategory)
	if err != nil {
		return nil, err
	}

	// Stage 5: a chosen instance without a duration cannot produce slots
	if chosen.DurationMinutes == nil {
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("service instance %s has no duration configured", chosen.ID))
	}

	logger.Debug().Str("payer_id", payerID).Str("category", serviceCategory).
		Int("matched", len(candidates)).Int("scoped", len(scoped)).Int("mapped", len(mapped)).
		Str("service_instance_id", chosen.ID).
		Msg("resolved bookable service")

	return &entities.ResolvedService{
		ServiceInstanceID: chosen.ID,
		DurationMinutes:   *chosen.DurationMinutes,
	}, nil
}

func pickCanonical(candidates []*entities.ServiceInstance, payerID, serviceCategory string) (*entities.ServiceInstance, error) {
	var payerSpecific, global []*entities.ServiceInstance
	for _, candidate := range candidates {
		if candidate.PayerID != nil {
			payerSpecific = append(payerSpecific, candidate)
		} else {
			global = append(global, candidate)
		}
	}

	pool := payerSpecific
	if len(pool) == 0 {
		pool = global
	}
	if len(pool) > 1 {
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("ambiguous service catalog: %d %s instances resolve for payer %s",
				len(pool), serviceCategory, payerID))
	}
	return pool[0], nil
}
