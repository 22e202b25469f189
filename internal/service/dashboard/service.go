package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/service/appointment"
	"github.com/agendahub/agenda-api/internal/service/catalog"
	"github.com/agendahub/agenda-api/internal/service/customer"
	"github.com/agendahub/agenda-api/internal/service/metrics"
)

// Service assembles the landing-screen snapshot from the other services.
// The five reads are independent, so they fan out concurrently.
type Service struct {
	appointments *appointment.Service
	customers    *customer.Service
	catalog      *catalog.Service
	metrics      *metrics.Service
}

func NewService(appointments *appointment.Service, customers *customer.Service,
	cat *catalog.Service, m *metrics.Service) *Service {
	return &Service{
		appointments: appointments,
		customers:    customers,
		catalog:      cat,
		metrics:      m,
	}
}

func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (*model.DashboardSnapshot, error) {
	snapshot := &model.DashboardSnapshot{}
	now := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appointments, err := s.appointments.Day(ctx, userID, now)
		if err != nil {
			return fmt.Errorf("failed to load today's appointments: %w", err)
		}
		snapshot.TodayAppointments = appointments
		return nil
	})
	g.Go(func() error {
		count, err := s.appointments.CountPending(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count pending appointments: %w", err)
		}
		snapshot.PendingCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.customers.CountActive(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count customers: %w", err)
		}
		snapshot.ActiveCustomers = count
		return nil
	})
	g.Go(func() error {
		count, err := s.catalog.Count(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count services: %w", err)
		}
		snapshot.CatalogSize = count
		return nil
	})
	g.Go(func() error {
		metric, err := s.metrics.Daily(ctx, userID, now)
		if err != nil {
			return fmt.Errorf("failed to load daily metrics: %w", err)
		}
		snapshot.TodayMetrics = metric
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
