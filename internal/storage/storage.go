// Package storage assembles the repository set for the configured tier:
// direct SQL, the hosted REST surface, or the local demo store.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/agendahub/agenda-api/config"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/fallback"
	"github.com/agendahub/agenda-api/internal/repository/local"
	"github.com/agendahub/agenda-api/internal/repository/postgres"
	"github.com/agendahub/agenda-api/internal/repository/postgrest"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/metrics"
)

const probeTimeout = 4 * time.Second

// Storage bundles the assembled repositories with the tier they run on.
type Storage struct {
	Repos *repository.Repositories
	Mode  config.Mode

	// Pinger reaches the connected tier; nil in demo mode.
	Pinger repository.Pinger

	closers []func() error
}

// Open builds the repository set for cfg.Mode(). Connected tiers get the
// local store attached as a fallback replica and are probed once; a failed
// probe is logged, not fatal.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Storage, error) {
	store, err := local.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	mode := cfg.Mode()
	s := &Storage{Mode: mode}

	switch mode {
	case config.ModePostgres:
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		primary := &repository.Repositories{
			User:        postgres.NewUserRepository(db),
			Profile:     postgres.NewProfileRepository(db),
			Customer:    postgres.NewCustomerRepository(db),
			Service:     postgres.NewServiceRepository(db),
			Appointment: postgres.NewAppointmentRepository(db),
			Metric:      postgres.NewMetricRepository(db),
		}
		s.Repos = fallback.Wrap(primary, store, log, m)
		s.Pinger = db
		s.closers = append(s.closers, db.Close)

	case config.ModePostgrest:
		client, err := postgrest.NewClient(cfg.Backend)
		if err != nil {
			return nil, fmt.Errorf("failed to build backend client: %w", err)
		}
		primary := &repository.Repositories{
			User:        postgrest.NewUserRepository(client),
			Profile:     postgrest.NewProfileRepository(client),
			Customer:    postgrest.NewCustomerRepository(client),
			Service:     postgrest.NewServiceRepository(client),
			Appointment: postgrest.NewAppointmentRepository(client),
			Metric:      postgrest.NewMetricRepository(client),
		}
		s.Repos = fallback.Wrap(primary, store, log, m)
		s.Pinger = client

	default:
		if err := local.Seed(ctx, store, cfg.Demo.Email, cfg.Demo.Password); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		s.Repos = &repository.Repositories{
			User:        local.NewUserRepository(store),
			Profile:     local.NewProfileRepository(store),
			Customer:    local.NewCustomerRepository(store),
			Service:     local.NewServiceRepository(store),
			Appointment: local.NewAppointmentRepository(store),
			Metric:      local.NewMetricRepository(store),
		}
	}

	s.probe(ctx, log)
	return s, nil
}

// probe checks the connected tier once at startup so a dead backend shows up
// in the logs immediately instead of on the first request.
func (s *Storage) probe(ctx context.Context, log *logger.Logger) {
	if s.Pinger == nil {
		log.Info("storage ready", "mode", string(s.Mode))
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := s.Pinger.Ping(probeCtx); err != nil {
		log.Warn("storage backend unreachable at startup, reads will fall back to local replica",
			"mode", string(s.Mode), "reason", err.Error())
		return
	}
	log.Info("storage ready", "mode", string(s.Mode))
}

// Ready reports whether the active tier answers; demo mode is always ready.
func (s *Storage) Ready(ctx context.Context) error {
	if s.Pinger == nil {
		return nil
	}
	return s.Pinger.Ping(ctx)
}

func (s *Storage) Close() error {
	var firstErr error
	for _, close := range s.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
