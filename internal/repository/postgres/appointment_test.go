package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

func appointmentColumns() []string {
	return []string{"id", "user_id", "customer_id", "service_id", "service_description",
		"starts_at", "duration", "status", "notes", "whatsapp_sent", "cancel_reason",
		"created_at", "updated_at"}
}

func TestAppointmentListRangeBoundsTheWindow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	userID := uuid.New()
	from := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	now := time.Now()

	mock.ExpectQuery(`WHERE user_id = \$1 AND starts_at >= \$2 AND starts_at < \$3`).
		WithArgs(userID, from, to).
		WillReturnRows(sqlmock.NewRows(appointmentColumns()).
			AddRow(uuid.New().String(), userID.String(), uuid.New().String(), nil, "Haircut",
				from.Add(10*time.Hour), 45, "confirmed", "", false, nil, now, now))

	appointments, err := repo.ListRange(context.Background(), userID, from, to)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Haircut", appointments[0].ServiceDescription)
	assert.Nil(t, appointments[0].ServiceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentDeleteMissingRowIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("DELETE FROM appointments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMetricUpsertNormalizesDateAndMergesOnConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMetricRepository(db)

	userID := uuid.New()
	mock.ExpectExec(`(?s)INSERT INTO appointment_metrics.+ON CONFLICT \(user_id, metric_date\) DO UPDATE`).
		WithArgs(userID, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), 3, 1.5, 50.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &model.AppointmentMetric{
		UserID:              userID,
		MetricDate:          time.Date(2026, 8, 20, 14, 45, 0, 0, time.UTC),
		DailyTotal:          3,
		MovingAverage:       1.5,
		PercentageVariation: 50.0,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
