// Package worker holds the background loops run by the worker binary: the
// metric recompute subscriber, the nightly rollup and the agenda mailer.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	metricsService "github.com/agendahub/agenda-api/internal/service/metrics"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/messaging"
	"github.com/agendahub/agenda-api/pkg/metrics"
)

// DefaultRollupSchedule closes out the previous day shortly after midnight.
const DefaultRollupSchedule = "15 0 * * *"

// MetricsWorker keeps the stored daily metrics in step with bookings. Every
// appointment event triggers a recompute of the affected day, and a nightly
// schedule rolls up the previous day for all tenants so closed days get a
// final row even when nobody asks for them.
type MetricsWorker struct {
	svc      *metricsService.Service
	users    repository.UserRepository
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
	schedule string
}

func NewMetricsWorker(svc *metricsService.Service, users repository.UserRepository,
	broker messaging.Broker, log *logger.Logger, m *metrics.Metrics, schedule string) *MetricsWorker {
	if schedule == "" {
		schedule = DefaultRollupSchedule
	}
	return &MetricsWorker{
		svc:      svc,
		users:    users,
		broker:   broker,
		logger:   log.WithComponent("metrics_worker"),
		metrics:  m,
		schedule: schedule,
	}
}

// Start consumes appointment events until the context is cancelled.
func (w *MetricsWorker) Start(ctx context.Context) error {
	events, err := w.broker.Subscribe(ctx, model.EventTopicAppointments)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventTopicAppointments, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.rollup(ctx) }); err != nil {
		return fmt.Errorf("invalid rollup schedule %q: %w", w.schedule, err)
	}
	c.Start()
	defer c.Stop()

	w.logger.Info("metrics worker started", "schedule", w.schedule)

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ctx, payload)
		}
	}
}

func (w *MetricsWorker) handle(ctx context.Context, payload []byte) {
	var event model.AppointmentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		w.logger.Warn("dropping undecodable appointment event", "error", err.Error())
		return
	}
	if event.Appointment == nil {
		w.logger.Warn("dropping appointment event without payload", "type", event.Type)
		return
	}

	day := event.Appointment.StartsAt
	if _, err := w.svc.Recompute(ctx, event.Appointment.UserID, day); err != nil {
		w.logger.Error(err, "failed to recompute metrics",
			"user_id", event.Appointment.UserID.String(),
			"date", day.Format("2006-01-02"))
	}
}

func (w *MetricsWorker) rollup(ctx context.Context) {
	start := time.Now()
	yesterday := civilDate(start).AddDate(0, 0, -1)

	users, err := w.users.List(ctx)
	if err != nil {
		w.logger.Error(err, "failed to list tenants for rollup")
		return
	}

	failures := 0
	for _, user := range users {
		if _, err := w.svc.Recompute(ctx, user.ID, yesterday); err != nil {
			failures++
			w.logger.Error(err, "failed to roll up metrics", "user_id", user.ID.String())
		}
	}

	if w.metrics != nil {
		w.metrics.RollupRuns.Inc()
		w.metrics.RollupLatency.Observe(time.Since(start).Seconds())
	}
	w.logger.Info("daily metric rollup finished",
		"date", yesterday.Format("2006-01-02"),
		"tenants", len(users),
		"failures", failures)
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
