package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
)

// All repository interfaces in one file. Every query is scoped to the owning
// user; no call crosses tenants.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	ProfileRepository interface {
		Create(ctx context.Context, profile *model.Profile) error
		Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
		Update(ctx context.Context, profile *model.Profile) error
	}

	CustomerRepository interface {
		Create(ctx context.Context, customer *model.Customer) error
		Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error)
		GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*model.Customer, error)
		Update(ctx context.Context, customer *model.Customer) error
		UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.CustomerStatus) error
		List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error)
		CountByStatus(ctx context.Context, userID uuid.UUID, status model.CustomerStatus) (int, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, userID, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, userID, id uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.Service, error)
		Count(ctx context.Context, userID uuid.UUID) (int, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, userID, id uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID, filter *model.AppointmentFilter) ([]*model.Appointment, error)
		ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		CountByStatus(ctx context.Context, userID uuid.UUID, status model.AppointmentStatus) (int, error)
	}

	MetricRepository interface {
		Get(ctx context.Context, userID uuid.UUID, date time.Time) (*model.AppointmentMetric, error)
		Upsert(ctx context.Context, metric *model.AppointmentMetric) error
		List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.AppointmentMetric, error)
	}
)

// Repositories bundles one implementation of every interface, as produced by
// the storage factory.
type Repositories struct {
	User        UserRepository
	Profile     ProfileRepository
	Customer    CustomerRepository
	Service     ServiceRepository
	Appointment AppointmentRepository
	Metric      MetricRepository
}

// Pinger is implemented by connected tiers for the startup probe and the
// readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
