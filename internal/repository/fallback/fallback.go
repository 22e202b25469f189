// Package fallback decorates connected-tier repositories with the local
// replica. Reads that fail with an unavailability error are served from the
// replica; successful calls keep the replica loosely in sync. Writes never
// queue: when the primary is down the error surfaces to the caller.
package fallback

import (
	"time"

	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/metrics"
)

type guard struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func newGuard(log *logger.Logger, m *metrics.Metrics) guard {
	return guard{logger: log.WithComponent("fallback"), metrics: m}
}

// serve records one read answered by the replica instead of the primary.
func (g *guard) serve(entity, operation string, err error) {
	g.logger.Warn("primary storage unavailable, serving from local replica",
		"entity", entity, "operation", operation, "reason", err.Error())
	if g.metrics != nil {
		g.metrics.FallbackServes.WithLabelValues(entity).Inc()
	}
}

// instrument times one primary-tier call; the returned func takes its error.
func (g *guard) instrument(entity, operation string) func(error) {
	start := time.Now()
	return func(err error) {
		if g.metrics == nil {
			return
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		op := entity + "_" + operation
		g.metrics.StorageOperations.WithLabelValues("primary", op, status).Inc()
		g.metrics.StorageLatency.WithLabelValues("primary", op).Observe(time.Since(start).Seconds())
	}
}

// Wrap decorates every connected repository with its replica counterpart
// backed by the given store.
func Wrap(primary *repository.Repositories, store *local.Store, log *logger.Logger, m *metrics.Metrics) *repository.Repositories {
	g := newGuard(log, m)
	return &repository.Repositories{
		User:        &userRepository{guard: g, primary: primary.User, replica: local.NewUserRepository(store)},
		Profile:     &profileRepository{guard: g, primary: primary.Profile, replica: local.NewProfileRepository(store)},
		Customer:    &customerRepository{guard: g, primary: primary.Customer, replica: local.NewCustomerRepository(store)},
		Service:     &serviceRepository{guard: g, primary: primary.Service, replica: local.NewServiceRepository(store)},
		Appointment: &appointmentRepository{guard: g, primary: primary.Appointment, replica: local.NewAppointmentRepository(store)},
		Metric:      &metricRepository{guard: g, primary: primary.Metric, replica: local.NewMetricRepository(store)},
	}
}
