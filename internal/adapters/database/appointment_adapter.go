package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// Postgres error codes raised by the appointment exclusivity constraints
const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

// AppointmentAdapter implements AppointmentRepository
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var appointmentColumns = []interface{}{
	"id", "provider_id", "billing_provider_id", "patient_id",
	"service_instance_id", "payer_id", "start_time", "end_time", "status",
	"created_at", "updated_at",
}

// Create inserts an appointment. The appointments table carries an exclusion
// constraint on (provider_id, interval) for blocking statuses; concurrent
// inserts for the same window lose here, not in application code.
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":                  appointment.ID,
		"provider_id":         appointment.ProviderID,
		"billing_provider_id": appointment.BillingProviderID,
		"patient_id":          appointment.PatientID,
		"service_instance_id": appointment.ServiceInstanceID,
		"payer_id":            appointment.PayerID,
		"start_time":          appointment.StartTime,
		"end_time":            appointment.EndTime,
		"status":              appointment.Status,
		"created_at":          appointment.CreatedAt,
		"updated_at":          appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			code := string(pqErr.Code)
			if code == pqExclusionViolation || code == pqUniqueViolation {
				return apperrors.NewConflictError("slot no longer available")
			}
		}
		return apperrors.NewInternalError("failed to create appointment", err)
	}
	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build appointment query", err)
	}

	appointment := &entities.Appointment{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&appointment.ProviderID,
		&appointment.BillingProviderID,
		&appointment.PatientID,
		&appointment.ServiceInstanceID,
		&appointment.PayerID,
		&appointment.StartTime,
		&appointment.EndTime,
		&appointment.Status,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// ListBlocking retrieves scheduled/confirmed appointments overlapping the
// range for a provider, using the half-open overlap test
func (a *AppointmentAdapter) ListBlocking(ctx context.Context, providerID string, dateRange entities.DateRange) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(
			goqu.Ex{"provider_id": providerID},
			goqu.Ex{"status": []entities.AppointmentStatus{
				entities.AppointmentStatusScheduled,
				entities.AppointmentStatusConfirmed,
			}},
			goqu.I("start_time").Lt(dateRange.To),
			goqu.I("end_time").Gt(dateRange.From),
		).
		Order(goqu.I("start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build appointment query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment := &entities.Appointment{}
		err := rows.Scan(
			&appointment.ID,
			&appointment.ProviderID,
			&appointment.BillingProviderID,
			&appointment.PatientID,
			&appointment.ServiceInstanceID,
			&appointment.PayerID,
			&appointment.StartTime,
			&appointment.EndTime,
			&appointment.Status,
			&appointment.CreatedAt,
			&appointment.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	return appointments, rows.Err()
}

// Cancel marks an appointment cancelled
func (a *AppointmentAdapter) Cancel(ctx context.Context, id string) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"status":     entities.AppointmentStatusCancelled,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build cancel query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to cancel appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", id))
	}
	return nil
}
