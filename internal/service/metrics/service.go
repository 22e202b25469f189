package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

const dateKey = "2006-01-02"

type Service struct {
	appointmentRepo repository.AppointmentRepository
	metricRepo      repository.MetricRepository
	cache           *cache.Cache
}

func NewService(appointmentRepo repository.AppointmentRepository, metricRepo repository.MetricRepository, c *cache.Cache) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		metricRepo:      metricRepo,
		cache:           c,
	}
}

// Daily returns the metrics row for the date, read-through: a stored row is
// served while fresh, anything else is recomputed from the appointment
// window and upserted.
func (s *Service) Daily(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error) {
	day := civilDate(date)
	key := cache.Key("metric", userID, day.Format(dateKey))

	return cache.Fetch(s.cache, key, func() (*model.AppointmentMetric, error) {
		stored, err := s.metricRepo.Get(ctx, userID, day)
		if err == nil && fresh(stored.ComputedAt, day) {
			return stored, nil
		}
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get metric: %w", err)
		}
		return s.Recompute(ctx, userID, day)
	})
}

// Recompute rebuilds the row for the date from the trailing appointment
// window and upserts it. Also invoked by the rollup worker.
func (s *Service) Recompute(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error) {
	day := civilDate(date)
	from := day.AddDate(0, 0, -Window)
	to := day.AddDate(0, 0, 1)

	appointments, err := s.appointmentRepo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment window: %w", err)
	}

	computed := Compute(appointments, day)
	metric := &model.AppointmentMetric{
		UserID:              userID,
		MetricDate:          day,
		DailyTotal:          computed.DailyTotal,
		MovingAverage:       computed.MovingAverage,
		PercentageVariation: computed.PercentageVariation,
		ComputedAt:          time.Now(),
	}
	if err := s.metricRepo.Upsert(ctx, metric); err != nil {
		return nil, fmt.Errorf("failed to store metric: %w", err)
	}

	s.cache.Delete(cache.Key("metric", userID, day.Format(dateKey)))
	return metric, nil
}

// History lists the stored rows for the trailing number of days, today
// included. Days that were never computed are simply absent.
func (s *Service) History(ctx context.Context, userID uuid.UUID, days int) ([]*model.AppointmentMetric, error) {
	if days <= 0 || days > 365 {
		days = Window
	}
	to := civilDate(time.Now())
	from := to.AddDate(0, 0, -(days - 1))

	key := cache.Key("metric", userID, "history", strconv.Itoa(days))
	return cache.Fetch(s.cache, key, func() ([]*model.AppointmentMetric, error) {
		rows, err := s.metricRepo.List(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list metrics: %w", err)
		}
		return rows, nil
	})
}

// fresh reports whether a stored row still answers reads: rows computed
// after their metric day ended are final, and today's row only goes stale
// when the calendar rolls over (mutations refresh it through the worker).
func fresh(computedAt, day time.Time) bool {
	if !computedAt.Before(day.AddDate(0, 0, 1)) {
		return true
	}
	return civilDate(computedAt).Equal(civilDate(time.Now()))
}
