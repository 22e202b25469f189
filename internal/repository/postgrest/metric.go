package postgrest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type metricRepository struct {
	client *Client
}

func NewMetricRepository(client *Client) repository.MetricRepository {
	return &metricRepository{client: client}
}

func (r *metricRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error) {
	var row metricRow
	err := r.client.From("appointment_metrics").
		Eq("user_id", userID).
		Eq("metric_date", date.Format("2006-01-02")).
		Single().
		Get(ctx, &row)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *metricRepository) Upsert(ctx context.Context, metric *model.AppointmentMetric) error {
	metric.ComputedAt = time.Now()

	return r.client.From("appointment_metrics").
		OnConflict("user_id,metric_date").
		Upsert(ctx, metricRowFrom(metric), nil)
}

func (r *metricRepository) List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.AppointmentMetric, error) {
	var rows []metricRow
	err := r.client.From("appointment_metrics").
		Eq("user_id", userID).
		Gte("metric_date", from.Format("2006-01-02")).
		Lte("metric_date", to.Format("2006-01-02")).
		Order("metric_date", true).
		Get(ctx, &rows)
	if err != nil {
		return nil, err
	}

	metrics := make([]*model.AppointmentMetric, 0, len(rows))
	for i := range rows {
		metrics = append(metrics, rows[i].toModel())
	}
	return metrics, nil
}
