package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// SlotGenerator defines the slot generation operation the handler needs
type SlotGenerator interface {
	GenerateSlots(ctx context.Context, payerID, serviceCategory string, dateRange entities.DateRange, now time.Time) ([]*entities.Slot, error)
}

// SlotHandler handles slot generation requests
type SlotHandler struct {
	service SlotGenerator
}

// NewSlotHandler creates a new slot handler
func NewSlotHandler(service SlotGenerator) *SlotHandler {
	return &SlotHandler{service: service}
}

// GetSlots handles
// GET /api/slots?payer_id=...&service_category=...&from=...&to=...&tz=...
// Slot times always carry an explicit offset; tz only changes which offset
// they are rendered in.
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	payerID, err := parsePayerID(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	serviceCategory := r.URL.Query().Get("service_category")
	if serviceCategory == "" {
		respondWithError(w, http.StatusBadRequest, "service_category query parameter is required")
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "unknown tz identifier")
			return
		}
	}

	slots, err := h.service.GenerateSlots(r.Context(), payerID, serviceCategory, dateRange, time.Now())
	if err != nil {
		// A cancelled request may still carry a partial answer; the client is
		// gone so just report the error
		respondWithAppError(w, err)
		return
	}

	for _, slot := range slots {
		slot.Start = slot.Start.In(loc)
		slot.End = slot.End.In(loc)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"slots": slots,
		"count": len(slots),
	})
}
