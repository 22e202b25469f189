package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
)

type appointmentRepository struct {
	db *DB
}

func NewAppointmentRepository(db *DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, customer_id, service_id, service_description,
			starts_at, duration, status, notes, whatsapp_sent, cancel_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusPending
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UserID,
		appointment.CustomerID,
		appointment.ServiceID,
		appointment.ServiceDescription,
		appointment.StartsAt,
		appointment.Duration,
		appointment.Status,
		appointment.Notes,
		appointment.WhatsappSent,
		appointment.CancelReason,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return classify("appointment", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, user_id, customer_id, service_id, service_description,
			   starts_at, duration, status, notes, whatsapp_sent, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE user_id = $1 AND id = $2
	`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, userID, id); err != nil {
		return nil, classify("appointment", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET customer_id = $1, service_id = $2, service_description = $3,
			starts_at = $4, duration = $5, status = $6, notes = $7,
			whatsapp_sent = $8, cancel_reason = $9, updated_at = $10
		WHERE user_id = $11 AND id = $12
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.CustomerID,
		appointment.ServiceID,
		appointment.ServiceDescription,
		appointment.StartsAt,
		appointment.Duration,
		appointment.Status,
		appointment.Notes,
		appointment.WhatsappSent,
		appointment.CancelReason,
		appointment.UpdatedAt,
		appointment.UserID,
		appointment.ID,
	)
	if err != nil {
		return classify("appointment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return classify("appointment", sql.ErrNoRows)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return classify("appointment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return classify("appointment", sql.ErrNoRows)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, userID uuid.UUID, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, customer_id, service_id, service_description,
			   starts_at, duration, status, notes, whatsapp_sent, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argCount := 2

	if filter != nil {
		if filter.CustomerID != uuid.Nil {
			query += fmt.Sprintf(" AND customer_id = $%d", argCount)
			args = append(args, filter.CustomerID)
			argCount++
		}
		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filter.Status)
			argCount++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND starts_at >= $%d", argCount)
			args = append(args, filter.From)
			argCount++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND starts_at < $%d", argCount)
			args = append(args, filter.To)
			argCount++
		}
	}

	query += " ORDER BY starts_at ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, classify("appointment", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, customer_id, service_id, service_description,
			   starts_at, duration, status, notes, whatsapp_sent, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE user_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at ASC
	`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, userID, from, to); err != nil {
		return nil, classify("appointment", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.AppointmentStatus) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE user_id = $1 AND status = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, status); err != nil {
		return 0, classify("appointment", err)
	}
	return count, nil
}
