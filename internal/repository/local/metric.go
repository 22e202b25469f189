package local

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type MetricRepository struct {
	store *Store
}

func NewMetricRepository(store *Store) *MetricRepository {
	return &MetricRepository{store: store}
}

func (r *MetricRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error) {
	metric, ok := r.store.metrics.get(metricKey(userID, date))
	if !ok {
		return nil, apperrors.NewNotFound("metric", nil)
	}
	return &metric, nil
}

func (r *MetricRepository) Upsert(ctx context.Context, metric *model.AppointmentMetric) error {
	metric.ComputedAt = time.Now()
	return r.store.metrics.put(metricKey(metric.UserID, metric.MetricDate), *metric)
}

func (r *MetricRepository) List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.AppointmentMetric, error) {
	var out []*model.AppointmentMetric
	for _, metric := range r.store.metrics.list() {
		if metric.UserID != userID {
			continue
		}
		if metric.MetricDate.Before(from) || metric.MetricDate.After(to) {
			continue
		}
		m := metric
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MetricDate.Before(out[j].MetricDate)
	})
	return out, nil
}

// Mirror stores a copy fetched from the primary tier.
func (r *MetricRepository) Mirror(metric *model.AppointmentMetric) {
	_ = r.store.metrics.put(metricKey(metric.UserID, metric.MetricDate), *metric)
}
