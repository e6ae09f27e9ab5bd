package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// BookRequest carries everything needed to book one appointment
type BookRequest struct {
	ProviderID      string
	PatientID       string
	PayerID         string
	ServiceCategory string
	StartTime       time.Time
}

// BookingService books appointments against slots. Bookability is
// re-verified live at booking time; the slot the patient saw may have been
// generated from a snapshot that has since gone stale.
type BookingService struct {
	catalog      *CatalogService
	bookability  *BookabilityService
	providers    repositories.ProviderRepository
	appointments repositories.AppointmentRepository
	metrics      *observability.Metrics
	leadTime     time.Duration
}

// NewBookingService creates a new booking service. metrics may be nil.
func NewBookingService(
	catalog *CatalogService,
	bookability *BookabilityService,
	providers repositories.ProviderRepository,
	appointments repositories.AppointmentRepository,
	metrics *observability.Metrics,
	leadTime time.Duration,
) *BookingService {
	return &BookingService{
		catalog:      catalog,
		bookability:  bookability,
		providers:    providers,
		appointments: appointments,
		metrics:      metrics,
		leadTime:     leadTime,
	}
}

// Book validates and creates an appointment. The appointment duration comes
// from the resolved service instance, never from the caller. Two concurrent
// bookings of the same slot race at the storage layer; exactly one wins and
// the loser receives a conflict error.
func (s *BookingService) Book(ctx context.Context, req BookRequest, now time.Time) (*entities.Appointment, error) {
	logger := observability.LoggerFromContext(ctx)

	if req.StartTime.Before(now.Add(s.leadTime)) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("appointments must be booked at least %s in advance", s.leadTime))
	}

	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsActive || !provider.IsBookable {
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("provider %s is not currently bookable", req.ProviderID))
	}

	resolved, err := s.catalog.ResolveBookableService(ctx, req.PayerID, req.ServiceCategory)
	if err != nil {
		return nil, err
	}

	entry, err := s.resolveEntry(ctx, req.PayerID, req.ProviderID, now)
	if err != nil {
		return nil, err
	}
	if entry.BookableFrom.After(req.StartTime) {
		return nil, apperrors.NewUnprocessableError(
			fmt.Sprintf("provider %s is not bookable under payer %s until %s",
				req.ProviderID, req.PayerID, entry.BookableFrom.Format(time.RFC3339)))
	}

	appointment := &entities.Appointment{
		ID:                uuid.New().String(),
		ProviderID:        req.ProviderID,
		BillingProviderID: entry.BillingProviderID,
		PatientID:         req.PatientID,
		ServiceInstanceID: resolved.ServiceInstanceID,
		PayerID:           req.PayerID,
		StartTime:         req.StartTime,
		EndTime:           req.StartTime.Add(time.Duration(resolved.DurationMinutes) * time.Minute),
		Status:            entities.AppointmentStatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			if s.metrics != nil {
				s.metrics.SlotConflictCount.Add(ctx, 1,
					metric.WithAttributes(attribute.String("provider.id", req.ProviderID)))
			}
			logger.Info().Str("provider_id", req.ProviderID).
				Time("start_time", req.StartTime).Msg("slot lost to concurrent booking")
		}
		return nil, err
	}

	logger.Info().Str("appointment_id", appointment.ID).
		Str("provider_id", appointment.ProviderID).
		Str("billing_provider_id", appointment.BillingProviderID).
		Str("payer_id", appointment.PayerID).
		Time("start_time", appointment.StartTime).
		Msg("booked appointment")
	return appointment, nil
}

// Cancel releases an appointment's interval
func (s *BookingService) Cancel(ctx context.Context, appointmentID string) error {
	if _, err := s.appointments.GetByID(ctx, appointmentID); err != nil {
		return err
	}
	return s.appointments.Cancel(ctx, appointmentID)
}

// resolveEntry finds the live bookable entry for the provider under the
// payer. Booking uses the live path, not the materialized one, so a stale
// snapshot can never admit an unbookable provider.
func (s *BookingService) resolveEntry(ctx context.Context, payerID, providerID string, now time.Time) (*entities.BookableEntry, error) {
	entries, err := s.bookability.ResolveLive(ctx, payerID, now)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.ProviderID == providerID {
			return entry, nil
		}
	}
	return nil, apperrors.NewUnprocessableError(
		fmt.Sprintf("provider %s is not bookable under payer %s", providerID, payerID))
}
