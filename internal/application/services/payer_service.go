package services

import (
	"context"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
)

// PayerService answers patient-facing questions about payers
type PayerService struct {
	repo         repositories.PayerRepository
	futureWindow time.Duration
}

// NewPayerService creates a new payer service
func NewPayerService(repo repositories.PayerRepository, futureWindow time.Duration) *PayerService {
	return &PayerService{repo: repo, futureWindow: futureWindow}
}

// GetAcceptance classifies whether the payer's plans are accepted as of now
func (s *PayerService) GetAcceptance(ctx context.Context, payerID string, now time.Time) (*entities.AcceptanceResult, error) {
	payer, err := s.repo.GetByID(ctx, payerID)
	if err != nil {
		return nil, err
	}
	result := entities.ClassifyAcceptanceWithWindow(payer, now, s.futureWindow)
	return &result, nil
}

// ListPayers retrieves payers matching the filter
func (s *PayerService) ListPayers(ctx context.Context, filter repositories.PayerFilter) ([]*entities.Payer, error) {
	return s.repo.List(ctx, filter)
}
