package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// CredentialingOperations defines the credentialing operations the handler needs
type CredentialingOperations interface {
	InstantiateTasks(ctx context.Context, providerID, payerID string, now time.Time) ([]*entities.CredentialingTask, error)
	ActivateContract(ctx context.Context, providerID, payerID string, effectiveDate time.Time) (*entities.Contract, error)
}

// CredentialingTaskLister lists tasks for a (provider, payer) pair
type CredentialingTaskLister interface {
	ListTasks(ctx context.Context, providerID, payerID string) ([]*entities.CredentialingTask, error)
}

// CredentialingHandler handles provider onboarding requests
type CredentialingHandler struct {
	service CredentialingOperations
	tasks   CredentialingTaskLister
}

// NewCredentialingHandler creates a new credentialing handler
func NewCredentialingHandler(service CredentialingOperations, tasks CredentialingTaskLister) *CredentialingHandler {
	return &CredentialingHandler{service: service, tasks: tasks}
}

type instantiateTasksRequest struct {
	ProviderID string `json:"provider_id"`
	PayerID    string `json:"payer_id"`
}

func (r instantiateTasksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProviderID, validation.Required, is.UUID),
		validation.Field(&r.PayerID, validation.Required, is.UUID),
	)
}

// InstantiateTasks handles POST /api/credentialing/tasks
func (h *CredentialingHandler) InstantiateTasks(w http.ResponseWriter, r *http.Request) {
	var req instantiateTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.service.InstantiateTasks(r.Context(), req.ProviderID, req.PayerID, time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// ListTasks handles GET /api/credentialing/tasks?provider_id=...&payer_id=...
func (h *CredentialingHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	providerID := r.URL.Query().Get("provider_id")
	payerID := r.URL.Query().Get("payer_id")
	if providerID == "" || payerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider_id and payer_id query parameters are required")
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), providerID, payerID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

type activateContractRequest struct {
	ProviderID    string `json:"provider_id"`
	PayerID       string `json:"payer_id"`
	EffectiveDate string `json:"effective_date"`
}

func (r activateContractRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProviderID, validation.Required, is.UUID),
		validation.Field(&r.PayerID, validation.Required, is.UUID),
		validation.Field(&r.EffectiveDate, validation.Required, validation.Date(time.RFC3339)),
	)
}

// ActivateContract handles POST /api/credentialing/activate
func (h *CredentialingHandler) ActivateContract(w http.ResponseWriter, r *http.Request) {
	var req activateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	effectiveDate, err := time.Parse(time.RFC3339, req.EffectiveDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid effective_date format (use RFC3339)")
		return
	}

	contract, err := h.service.ActivateContract(r.Context(), req.ProviderID, req.PayerID, effectiveDate)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, contract)
}
