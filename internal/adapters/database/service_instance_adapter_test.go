package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/database"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

func newServiceInstanceAdapter(t *testing.T) (repositories.ServiceInstanceRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewServiceInstanceAdapter(postgres.NewClientFromDB(db)), mock
}

var serviceInstanceRowColumns = []string{
	"id", "service_name", "payer_id", "delivery_location", "duration_minutes",
	"external_billing_code", "is_active", "created_at", "updated_at",
}

func TestServiceInstanceListByCategory(t *testing.T) {
	adapter, mock := newServiceInstanceAdapter(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM "service_instances" WHERE .+LOWER\(service_name\) LIKE '%therapy intake%'`).
		WillReturnRows(sqlmock.NewRows(serviceInstanceRowColumns).
			AddRow("svc-1", "Therapy Intake", "payer-1", "telehealth", 45, "90791", true, now, now).
			AddRow("svc-2", "Therapy Intake", nil, "telehealth", nil, nil, true, now, now))

	instances, err := adapter.ListByCategory(context.Background(), "Therapy Intake")

	assert.NoError(t, err)
	require.Len(t, instances, 2)
	require.NotNil(t, instances[0].PayerID)
	assert.Equal(t, "payer-1", *instances[0].PayerID)
	assert.Nil(t, instances[1].PayerID, "global instance has no payer scope")
	assert.Nil(t, instances[1].DurationMinutes)
}

func TestServiceInstanceListByCategory_EscapesLikeMetacharacters(t *testing.T) {
	adapter, mock := newServiceInstanceAdapter(t)

	// A category of "%" must search for a literal percent sign, not match
	// every service
	mock.ExpectQuery(`LIKE '%\\%%'`).
		WillReturnRows(sqlmock.NewRows(serviceInstanceRowColumns))

	instances, err := adapter.ListByCategory(context.Background(), "%")

	assert.NoError(t, err)
	assert.Empty(t, instances)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceInstanceGetByID_NotFound(t *testing.T) {
	adapter, mock := newServiceInstanceAdapter(t)

	mock.ExpectQuery(`SELECT .+ FROM "service_instances"`).
		WillReturnRows(sqlmock.NewRows(serviceInstanceRowColumns))

	instance, err := adapter.GetByID(context.Background(), "missing")

	assert.Nil(t, instance)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
