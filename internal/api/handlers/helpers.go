package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the service error taxonomy onto HTTP statuses
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeUnprocessable:
			respondWithError(w, http.StatusUnprocessableEntity, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}

// parsePayerID reads the required payer_id query parameter. Malformed IDs
// stop here; resolution never sees them.
func parsePayerID(r *http.Request) (string, error) {
	payerID := r.URL.Query().Get("payer_id")
	if err := validation.Validate(payerID, validation.Required, is.UUID); err != nil {
		return "", apperrors.NewValidationError("payer_id must be a valid UUID")
	}
	return payerID, nil
}

// parseAsOf reads an optional as_of RFC3339 query parameter, defaulting to
// the current instant
func parseAsOf(r *http.Request) (time.Time, error) {
	asOfStr := r.URL.Query().Get("as_of")
	if asOfStr == "" {
		return time.Now(), nil
	}
	asOf, err := time.Parse(time.RFC3339, asOfStr)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid as_of date format (use RFC3339)")
	}
	return asOf, nil
}

// parseDateRange reads from/to RFC3339 query parameters into a range
func parseDateRange(r *http.Request) (entities.DateRange, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return entities.DateRange{}, apperrors.NewValidationError("from and to query parameters are required")
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return entities.DateRange{}, apperrors.NewValidationError("invalid from date format (use RFC3339)")
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return entities.DateRange{}, apperrors.NewValidationError("invalid to date format (use RFC3339)")
	}

	dateRange := entities.DateRange{From: from, To: to}
	if !dateRange.Valid() {
		return entities.DateRange{}, apperrors.NewValidationError("to must be after from")
	}
	return dateRange, nil
}
