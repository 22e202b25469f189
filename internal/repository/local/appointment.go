package local

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type AppointmentRepository struct {
	store *Store
}

func NewAppointmentRepository(store *Store) *AppointmentRepository {
	return &AppointmentRepository{store: store}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusPending
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	return r.store.appointments.put(appointment.ID.String(), *appointment)
}

func (r *AppointmentRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	appointment, ok := r.store.appointments.get(id.String())
	if !ok || appointment.UserID != userID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return &appointment, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	existing, ok := r.store.appointments.get(appointment.ID.String())
	if !ok || existing.UserID != appointment.UserID {
		return apperrors.NewNotFound("appointment", nil)
	}
	appointment.CreatedAt = existing.CreatedAt
	appointment.UpdatedAt = time.Now()
	return r.store.appointments.put(appointment.ID.String(), *appointment)
}

func (r *AppointmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	appointment, ok := r.store.appointments.get(id.String())
	if !ok || appointment.UserID != userID {
		return apperrors.NewNotFound("appointment", nil)
	}
	return r.store.appointments.delete(id.String())
}

func (r *AppointmentRepository) List(ctx context.Context, userID uuid.UUID, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, appointment := range r.store.appointments.list() {
		if appointment.UserID != userID {
			continue
		}
		if filter != nil && !matchesFilter(&appointment, filter) {
			continue
		}
		a := appointment
		out = append(out, &a)
	}
	sortByStart(out)
	return out, nil
}

func (r *AppointmentRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, appointment := range r.store.appointments.list() {
		if appointment.UserID != userID {
			continue
		}
		if appointment.StartsAt.Before(from) || !appointment.StartsAt.Before(to) {
			continue
		}
		a := appointment
		out = append(out, &a)
	}
	sortByStart(out)
	return out, nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.AppointmentStatus) (int, error) {
	count := 0
	for _, appointment := range r.store.appointments.list() {
		if appointment.UserID == userID && appointment.Status == status {
			count++
		}
	}
	return count, nil
}

// Mirror stores a copy fetched from the primary tier.
func (r *AppointmentRepository) Mirror(appointment *model.Appointment) {
	_ = r.store.appointments.put(appointment.ID.String(), *appointment)
}

func matchesFilter(appointment *model.Appointment, filter *model.AppointmentFilter) bool {
	if filter.CustomerID != uuid.Nil && appointment.CustomerID != filter.CustomerID {
		return false
	}
	if filter.Status != "" && appointment.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && appointment.StartsAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !appointment.StartsAt.Before(filter.To) {
		return false
	}
	return true
}

func sortByStart(appointments []*model.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartsAt.Before(appointments[j].StartsAt)
	})
}
