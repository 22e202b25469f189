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

type appointmentRepository struct {
	guard
	primary repository.AppointmentRepository
	replica *local.AppointmentRepository
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	done := r.instrument("appointment", "create")
	err := r.primary.Create(ctx, appointment)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(appointment)
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	done := r.instrument("appointment", "get")
	appointment, err := r.primary.Get(ctx, userID, id)
	done(err)
	if err == nil {
		r.replica.Mirror(appointment)
		return appointment, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("appointment", "get", err)
	return r.replica.Get(ctx, userID, id)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	done := r.instrument("appointment", "update")
	err := r.primary.Update(ctx, appointment)
	done(err)
	if err != nil {
		return err
	}
	r.replica.Mirror(appointment)
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	done := r.instrument("appointment", "delete")
	err := r.primary.Delete(ctx, userID, id)
	done(err)
	if err != nil {
		return err
	}
	_ = r.replica.Delete(ctx, userID, id)
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, userID uuid.UUID, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	done := r.instrument("appointment", "list")
	appointments, err := r.primary.List(ctx, userID, filter)
	done(err)
	if err == nil {
		for _, appointment := range appointments {
			r.replica.Mirror(appointment)
		}
		return appointments, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("appointment", "list", err)
	return r.replica.List(ctx, userID, filter)
}

func (r *appointmentRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	done := r.instrument("appointment", "list_range")
	appointments, err := r.primary.ListRange(ctx, userID, from, to)
	done(err)
	if err == nil {
		for _, appointment := range appointments {
			r.replica.Mirror(appointment)
		}
		return appointments, nil
	}
	if !apperrors.IsUnavailable(err) {
		return nil, err
	}
	r.serve("appointment", "list_range", err)
	return r.replica.ListRange(ctx, userID, from, to)
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.AppointmentStatus) (int, error) {
	done := r.instrument("appointment", "count_by_status")
	count, err := r.primary.CountByStatus(ctx, userID, status)
	done(err)
	if err == nil {
		return count, nil
	}
	if !apperrors.IsUnavailable(err) {
		return 0, err
	}
	r.serve("appointment", "count_by_status", err)
	return r.replica.CountByStatus(ctx, userID, status)
}
