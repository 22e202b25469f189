package local

import (
	"context"
	"fmt"
	"time"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/pkg/security"
)

// Seed populates an empty store with a demo owner and a small sample
// agenda so the app is usable straight after first boot.
func Seed(ctx context.Context, store *Store, email, password string) error {
	if !store.Empty() {
		return nil
	}

	hasher := security.NewBcryptHasher(0)
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	users := NewUserRepository(store)
	profiles := NewProfileRepository(store)
	customers := NewCustomerRepository(store)
	services := NewServiceRepository(store)
	appointments := NewAppointmentRepository(store)

	owner := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, owner); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	profile := &model.Profile{
		UserID:       owner.ID,
		Name:         "Demo Owner",
		BusinessName: "Demo Studio",
		Phone:        "+1 555 010 0100",
	}
	if err := profiles.Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to seed demo profile: %w", err)
	}

	catalog := []*model.Service{
		{UserID: owner.ID, Name: "Haircut", Description: "Classic cut and finish", Duration: 30, Price: 35},
		{UserID: owner.ID, Name: "Beard Trim", Description: "Shape and line-up", Duration: 20, Price: 20},
		{UserID: owner.ID, Name: "Color Treatment", Description: "Full color with wash", Duration: 90, Price: 120},
	}
	for _, svc := range catalog {
		if err := services.Create(ctx, svc); err != nil {
			return fmt.Errorf("failed to seed demo service: %w", err)
		}
	}

	sample := []*model.Customer{
		{UserID: owner.ID, Name: "Alice Moreno", Email: "alice@example.com", Phone: "+1 555 010 0101"},
		{UserID: owner.ID, Name: "Bruno Costa", Email: "bruno@example.com", Phone: "+1 555 010 0102"},
		{UserID: owner.ID, Name: "Carla Nunes", Email: "carla@example.com"},
	}
	for _, c := range sample {
		if err := customers.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to seed demo customer: %w", err)
		}
	}

	today := time.Now()
	morning := time.Date(today.Year(), today.Month(), today.Day(), 9, 0, 0, 0, today.Location())
	slots := []*model.Appointment{
		{
			UserID:     owner.ID,
			CustomerID: sample[0].ID,
			ServiceID:  &catalog[0].ID,
			StartsAt:   morning,
			Duration:   catalog[0].Duration,
			Status:     model.AppointmentStatusConfirmed,
		},
		{
			UserID:     owner.ID,
			CustomerID: sample[1].ID,
			ServiceID:  &catalog[1].ID,
			StartsAt:   morning.Add(2 * time.Hour),
			Duration:   catalog[1].Duration,
			Status:     model.AppointmentStatusPending,
		},
		{
			UserID:             owner.ID,
			CustomerID:         sample[2].ID,
			ServiceDescription: "Consultation",
			StartsAt:           morning.Add(26 * time.Hour),
			Duration:           30,
			Status:             model.AppointmentStatusPending,
		},
	}
	for _, appt := range slots {
		if err := appointments.Create(ctx, appt); err != nil {
			return fmt.Errorf("failed to seed demo appointment: %w", err)
		}
	}

	return nil
}
