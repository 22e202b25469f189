package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// CanTransitionTo reports whether the status change is allowed. Cancelled
// and completed are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
	default:
		return false
	}
}

type Appointment struct {
	Base
	UserID             uuid.UUID         `db:"user_id" json:"user_id"`
	CustomerID         uuid.UUID         `db:"customer_id" json:"customer_id"`
	ServiceID          *uuid.UUID        `db:"service_id" json:"service_id,omitempty"`
	ServiceDescription string            `db:"service_description" json:"service_description"`
	StartsAt           time.Time         `db:"starts_at" json:"starts_at"`
	Duration           int               `db:"duration" json:"duration"` // in minutes
	Status             AppointmentStatus `db:"status" json:"status"`
	Notes              string            `db:"notes" json:"notes,omitempty"`
	WhatsappSent       bool              `db:"whatsapp_sent" json:"whatsapp_sent"`
	CancelReason       *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// EndsAt derives the slot end from the duration snapshot.
func (a *Appointment) EndsAt() time.Time {
	return a.StartsAt.Add(time.Duration(a.Duration) * time.Minute)
}

// NewCustomerPayload lets a booking create its customer in the same call.
type NewCustomerPayload struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type CreateAppointmentRequest struct {
	CustomerID         *uuid.UUID          `json:"customer_id"`
	Customer           *NewCustomerPayload `json:"customer"`
	ServiceID          *uuid.UUID          `json:"service_id"`
	ServiceDescription string              `json:"service_description"`
	StartsAt           time.Time           `json:"starts_at" binding:"required"`
	Duration           int                 `json:"duration" binding:"omitempty,min=5,max=480"`
	Notes              string              `json:"notes"`
}

type UpdateAppointmentRequest struct {
	ServiceID          *uuid.UUID `json:"service_id"`
	ServiceDescription *string    `json:"service_description"`
	StartsAt           *time.Time `json:"starts_at"`
	Duration           *int       `json:"duration" binding:"omitempty,min=5,max=480"`
	Notes              *string    `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status       AppointmentStatus `json:"status" binding:"required,oneof=confirmed cancelled completed"`
	CancelReason *string           `json:"cancel_reason"`
}

type AppointmentFilter struct {
	CustomerID uuid.UUID         `form:"customer_id"`
	Status     AppointmentStatus `form:"status"`
	From       time.Time         `form:"from" time_format:"2006-01-02"`
	To         time.Time         `form:"to" time_format:"2006-01-02"`
}

// ReminderLink is the wa.me URL handed back for a manual WhatsApp send.
type ReminderLink struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	URL           string    `json:"url"`
	Message       string    `json:"message"`
}
