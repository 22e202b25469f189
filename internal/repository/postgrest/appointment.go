package postgrest

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type appointmentRepository struct {
	client *Client
}

func NewAppointmentRepository(client *Client) repository.AppointmentRepository {
	return &appointmentRepository{client: client}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusPending
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	return r.client.From("appointments").Insert(ctx, appointment, nil)
}

func (r *appointmentRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.client.From("appointments").
		Eq("user_id", userID).
		Eq("id", id).
		Single().
		Get(ctx, &appointment)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	appointment.UpdatedAt = time.Now()

	payload := map[string]interface{}{
		"customer_id":         appointment.CustomerID,
		"service_id":          appointment.ServiceID,
		"service_description": appointment.ServiceDescription,
		"starts_at":           rfc3339(appointment.StartsAt),
		"duration":            appointment.Duration,
		"status":              appointment.Status,
		"notes":               appointment.Notes,
		"whatsapp_sent":       appointment.WhatsappSent,
		"cancel_reason":       appointment.CancelReason,
		"updated_at":          rfc3339(appointment.UpdatedAt),
	}

	return r.client.From("appointments").
		Eq("user_id", appointment.UserID).
		Eq("id", appointment.ID).
		Update(ctx, payload, nil)
}

func (r *appointmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := r.client.From("appointments").
		Eq("user_id", userID).
		Eq("id", id).
		Delete(ctx)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperrors.NewNotFound("appointment", sql.ErrNoRows)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, userID uuid.UUID, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	query := r.client.From("appointments").
		Eq("user_id", userID).
		Order("starts_at", true)

	if filter != nil {
		if filter.CustomerID != uuid.Nil {
			query = query.Eq("customer_id", filter.CustomerID)
		}
		if filter.Status != "" {
			query = query.Eq("status", filter.Status)
		}
		if !filter.From.IsZero() {
			query = query.Gte("starts_at", rfc3339(filter.From))
		}
		if !filter.To.IsZero() {
			query = query.Lt("starts_at", rfc3339(filter.To))
		}
	}

	var appointments []*model.Appointment
	if err := query.Get(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	var appointments []*model.Appointment
	err := r.client.From("appointments").
		Eq("user_id", userID).
		Gte("starts_at", rfc3339(from)).
		Lt("starts_at", rfc3339(to)).
		Order("starts_at", true).
		Get(ctx, &appointments)
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.AppointmentStatus) (int, error) {
	return r.client.From("appointments").
		Eq("user_id", userID).
		Eq("status", status).
		Count(ctx)
}
