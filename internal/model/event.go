package model

import (
	"time"
)

// Appointment lifecycle event types published to the broker.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentUpdated   = "appointment.updated"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
)

// EventTopicAppointments is the single topic carrying lifecycle events.
const EventTopicAppointments = "appointments"

// AppointmentEvent is the payload for every lifecycle event. The worker uses
// user_id and starts_at to recompute the affected daily metric.
type AppointmentEvent struct {
	Type        string       `json:"type"`
	Appointment *Appointment `json:"appointment"`
	OccurredAt  time.Time    `json:"occurred_at"`
}
