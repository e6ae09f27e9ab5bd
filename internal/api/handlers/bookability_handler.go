package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// BookabilityResolver defines the bookability operations the handler needs
type BookabilityResolver interface {
	Resolve(ctx context.Context, payerID string, asOf time.Time) ([]*entities.BookableEntry, error)
	ResolveLive(ctx context.Context, payerID string, asOf time.Time) ([]*entities.BookableEntry, error)
	Refresh(ctx context.Context, payerID string, now time.Time) (entities.RefreshReport, error)
	RefreshAll(ctx context.Context, now time.Time) (entities.RefreshReport, error)
	Reconcile(ctx context.Context, sampleSize int, now time.Time) ([]entities.Divergence, error)
}

// BookabilityHandler handles bookability resolution requests
type BookabilityHandler struct {
	service             BookabilityResolver
	reconcileSampleSize int
}

// NewBookabilityHandler creates a new bookability handler
func NewBookabilityHandler(service BookabilityResolver, reconcileSampleSize int) *BookabilityHandler {
	return &BookabilityHandler{
		service:             service,
		reconcileSampleSize: reconcileSampleSize,
	}
}

// GetBookability handles GET /api/bookability?payer_id=...&as_of=...
func (h *BookabilityHandler) GetBookability(w http.ResponseWriter, r *http.Request) {
	payerID, err := parsePayerID(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	entries, err := h.service.Resolve(r.Context(), payerID, asOf)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"payer_id": payerID,
		"entries":  entries,
		"count":    len(entries),
	})
}

// GetBookabilityLive handles GET /api/bookability/live?payer_id=...&as_of=...
// It bypasses every cache and recomputes from the contract store.
func (h *BookabilityHandler) GetBookabilityLive(w http.ResponseWriter, r *http.Request) {
	payerID, err := parsePayerID(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	entries, err := h.service.ResolveLive(r.Context(), payerID, asOf)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"payer_id": payerID,
		"entries":  entries,
		"count":    len(entries),
	})
}

// RefreshBookability handles POST /api/bookability/refresh. With a payer_id
// it refreshes one payer; without, every payer.
func (h *BookabilityHandler) RefreshBookability(w http.ResponseWriter, r *http.Request) {
	payerID := r.URL.Query().Get("payer_id")
	if payerID != "" {
		if err := validation.Validate(payerID, is.UUID); err != nil {
			respondWithError(w, http.StatusBadRequest, "payer_id must be a valid UUID")
			return
		}
	}
	now := time.Now()

	var report entities.RefreshReport
	var err error
	if payerID != "" {
		report, err = h.service.Refresh(r.Context(), payerID, now)
	} else {
		report, err = h.service.RefreshAll(r.Context(), now)
	}
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// ReconcileBookability handles GET /api/bookability/reconcile
func (h *BookabilityHandler) ReconcileBookability(w http.ResponseWriter, r *http.Request) {
	sampleSize := h.reconcileSampleSize
	if sizeStr := r.URL.Query().Get("sample_size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 0 {
			respondWithError(w, http.StatusBadRequest, "sample_size must be a non-negative integer")
			return
		}
		sampleSize = size
	}

	divergences, err := h.service.Reconcile(r.Context(), sampleSize, time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"divergences": divergences,
		"count":       len(divergences),
	})
}
