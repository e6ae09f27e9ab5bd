package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// BookingOperations defines the booking operations the handler needs
type BookingOperations interface {
	Book(ctx context.Context, req services.BookRequest, now time.Time) (*entities.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) error
}

// AppointmentHandler handles appointment booking requests
type AppointmentHandler struct {
	service BookingOperations
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service BookingOperations) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type bookAppointmentRequest struct {
	ProviderID      string `json:"provider_id"`
	PatientID       string `json:"patient_id"`
	PayerID         string `json:"payer_id"`
	ServiceCategory string `json:"service_category"`
	StartTime       string `json:"start_time"`
}

func (r bookAppointmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProviderID, validation.Required, is.UUID),
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.PayerID, validation.Required, is.UUID),
		validation.Field(&r.ServiceCategory, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.StartTime, validation.Required, validation.Date(time.RFC3339)),
	)
}

// BookAppointment handles POST /api/appointments
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid start_time format (use RFC3339)")
		return
	}

	appointment, err := h.service.Book(r.Context(), services.BookRequest{
		ProviderID:      req.ProviderID,
		PatientID:       req.PatientID,
		PayerID:         req.PayerID,
		ServiceCategory: req.ServiceCategory,
		StartTime:       startTime,
	}, time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// CancelAppointment handles DELETE /api/appointments/{id}
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.Validate(id, validation.Required, is.UUID); err != nil {
		respondWithError(w, http.StatusBadRequest, "appointment ID must be a valid UUID")
		return
	}

	if err := h.service.Cancel(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(entities.AppointmentStatusCancelled),
	})
}
