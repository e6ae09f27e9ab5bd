package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
)

// PayerOperations defines the payer operations the handler needs
type PayerOperations interface {
	GetAcceptance(ctx context.Context, payerID string, now time.Time) (*entities.AcceptanceResult, error)
	ListPayers(ctx context.Context, filter repositories.PayerFilter) ([]*entities.Payer, error)
}

// PayerHandler handles payer requests
type PayerHandler struct {
	service PayerOperations
}

// NewPayerHandler creates a new payer handler
func NewPayerHandler(service PayerOperations) *PayerHandler {
	return &PayerHandler{service: service}
}

// GetAcceptance handles GET /api/payers/{id}/acceptance
func (h *PayerHandler) GetAcceptance(w http.ResponseWriter, r *http.Request) {
	payerID := r.PathValue("id")
	if payerID == "" {
		respondWithError(w, http.StatusBadRequest, "payer ID is required")
		return
	}

	result, err := h.service.GetAcceptance(r.Context(), payerID, time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListPayers handles GET /api/payers
func (h *PayerHandler) ListPayers(w http.ResponseWriter, r *http.Request) {
	filter := repositories.PayerFilter{Limit: 100}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.StatusCode = entities.PayerStatusCode(status)
	}

	payers, err := h.service.ListPayers(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"payers": payers,
		"count":  len(payers),
	})
}
