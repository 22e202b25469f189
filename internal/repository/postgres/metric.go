package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type metricRepository struct {
	db *DB
}

func NewMetricRepository(db *DB) repository.MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error) {
	query := `
		SELECT user_id, metric_date, daily_total, moving_average, percentage_variation, computed_at
		FROM appointment_metrics
		WHERE user_id = $1 AND metric_date = $2
	`

	var metric model.AppointmentMetric
	if err := r.db.GetContext(ctx, &metric, query, userID, civilDate(date)); err != nil {
		return nil, classify("metric", err)
	}
	return &metric, nil
}

// Upsert writes through on conflict so recomputation always wins.
func (r *metricRepository) Upsert(ctx context.Context, metric *model.AppointmentMetric) error {
	query := `
		INSERT INTO appointment_metrics (
			user_id, metric_date, daily_total, moving_average, percentage_variation, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, metric_date) DO UPDATE
		SET daily_total = EXCLUDED.daily_total,
			moving_average = EXCLUDED.moving_average,
			percentage_variation = EXCLUDED.percentage_variation,
			computed_at = EXCLUDED.computed_at
	`
	metric.ComputedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		metric.UserID,
		civilDate(metric.MetricDate),
		metric.DailyTotal,
		metric.MovingAverage,
		metric.PercentageVariation,
		metric.ComputedAt,
	)
	if err != nil {
		return classify("metric", err)
	}
	return nil
}

func (r *metricRepository) List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.AppointmentMetric, error) {
	query := `
		SELECT user_id, metric_date, daily_total, moving_average, percentage_variation, computed_at
		FROM appointment_metrics
		WHERE user_id = $1 AND metric_date >= $2 AND metric_date <= $3
		ORDER BY metric_date ASC
	`

	var metrics []*model.AppointmentMetric
	if err := r.db.SelectContext(ctx, &metrics, query, userID, civilDate(from), civilDate(to)); err != nil {
		return nil, classify("metric", err)
	}
	return metrics, nil
}

// civilDate strips the time of day so the DATE column compares cleanly.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
