package fallback

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type metricRepository struct {
	guard
	primary repository.MetricRepository
	replica *local.MetricRepository
}

func (r *metricRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error) {
	done := r.instrument("metric", "get")
	metric, err := r.primary.Get(ctx, userID, date)
	done(err)
	if err == nil {
		r.replica.Mirror(metric)
		return metric, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("metric", "get", err)
	return r.replica.Get(ctx, userID, date)
}

func (r *metricRepository) Upsert(ctx context.Context, metric *model.AppointmentMetric) error {
	done := r.instrument("metric", "upsert")
	err := r.primary.Upsert(ctx, metric)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(metric)
	return nil
}

func (r *metricRepository) List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.AppointmentMetric, error) {
	done := r.instrument("metric", "list")
	metrics, err := r.primary.List(ctx, userID, from, to)
	done(err)
	if err == nil {
		for _, metric := range metrics {
			r.replica.Mirror(metric)
		}
		return metrics, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("metric", "list", err)
	return r.replica.List(ctx, userID, from, to)
}
