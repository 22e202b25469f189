package appointment_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/local"
	"github.com/agendahub/agenda-api/internal/service/appointment"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/messaging"
)

// captureBroker records published event types so tests can assert the
// lifecycle stream without a running broker.
type captureBroker struct {
	messaging.Broker
	types []string
}

func newCaptureBroker() *captureBroker {
	return &captureBroker{Broker: messaging.NewNoopBroker()}
}

func (b *captureBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if event, ok := message.(*model.AppointmentEvent); ok {
		b.types = append(b.types, event.Type)
	}
	return nil
}

type fixture struct {
	service   *appointment.Service
	customers repository.CustomerRepository
	catalog   repository.ServiceRepository
	broker    *captureBroker
	userID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := local.NewStore(t.TempDir())
	require.NoError(t, err)

	quiet := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	broker := newCaptureBroker()
	customers := local.NewCustomerRepository(store)
	catalog := local.NewServiceRepository(store)

	svc := appointment.NewService(
		local.NewAppointmentRepository(store),
		customers, catalog, broker,
		cache.New(time.Minute, time.Minute, nil),
		quiet, nil,
	)
	return &fixture{service: svc, customers: customers, catalog: catalog, broker: broker, userID: uuid.New()}
}

func (f *fixture) seedCustomer(t *testing.T, name, email, phone string) *model.Customer {
	t.Helper()
	customer := &model.Customer{UserID: f.userID, Name: name, Email: email, Phone: phone, Status: model.CustomerStatusActive}
	require.NoError(t, f.customers.Create(context.Background(), customer))
	return customer
}

func (f *fixture) seedService(t *testing.T, name string, duration int) *model.Service {
	t.Helper()
	service := &model.Service{UserID: f.userID, Name: name, Duration: duration, Price: 40}
	require.NoError(t, f.catalog.Create(context.Background(), service))
	return service
}

func TestCreateSnapshotsCatalogService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "+1 555 010 0101")
	service := f.seedService(t, "Haircut", 45)

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		CustomerID: &customer.ID,
		ServiceID:  &service.ID,
		StartsAt:   time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, created.Status)
	assert.Equal(t, "Haircut", created.ServiceDescription)
	assert.Equal(t, 45, created.Duration)
	assert.Equal(t, []string{model.EventAppointmentCreated}, f.broker.types)

	// Renaming the catalog entry later must not touch the booking.
	service.Name = "Premium Haircut"
	service.Duration = 90
	require.NoError(t, f.catalog.Update(ctx, service))

	got, err := f.service.Get(ctx, f.userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", got.ServiceDescription)
	assert.Equal(t, 45, got.Duration)
}

func TestCreateWithNewCustomerPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		Customer:           &model.NewCustomerPayload{Name: "Bruno Costa", Email: "bruno@example.com", Phone: "+1 555 010 0102"},
		ServiceDescription: "Consultation",
		StartsAt:           time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.CustomerID)

	customer, err := f.customers.Get(ctx, f.userID, created.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Bruno Costa", customer.Name)
	assert.Equal(t, model.CustomerStatusActive, customer.Status)

	// A second booking for the same email must surface the conflict, not
	// silently reuse the existing customer.
	_, err = f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		Customer:           &model.NewCustomerPayload{Name: "Bruno C.", Email: "bruno@example.com"},
		ServiceDescription: "Consultation",
		StartsAt:           time.Now().Add(72 * time.Hour),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateRequiresServiceOrDescription(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Carla Nunes", "carla@example.com", "")

	_, err := f.service.Create(context.Background(), f.userID, &model.CreateAppointmentRequest{
		CustomerID: &customer.ID,
		StartsAt:   time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateFillsDefaultDuration(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "")

	created, err := f.service.Create(context.Background(), f.userID, &model.CreateAppointmentRequest{
		CustomerID:         &customer.ID,
		ServiceDescription: "Quick touch-up",
		StartsAt:           time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, created.Duration)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "")

	book := func() *model.Appointment {
		created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
			CustomerID:         &customer.ID,
			ServiceDescription: "Haircut",
			StartsAt:           time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)
		return created
	}

	// pending -> confirmed -> completed is the happy path.
	a := book()
	confirmed, err := f.service.UpdateStatus(ctx, f.userID, a.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	completed, err := f.service.UpdateStatus(ctx, f.userID, a.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)

	// Terminal states admit nothing.
	_, err = f.service.UpdateStatus(ctx, f.userID, a.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot change status")

	// pending cannot jump straight to completed.
	b := book()
	_, err = f.service.UpdateStatus(ctx, f.userID, b.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCompleted})
	require.Error(t, err)

	// Cancelling keeps the reason.
	reason := "customer asked to reschedule"
	cancelled, err := f.service.UpdateStatus(ctx, f.userID, b.ID, &model.UpdateAppointmentStatusRequest{
		Status:       model.AppointmentStatusCancelled,
		CancelReason: &reason,
	})
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, reason, *cancelled.CancelReason)

	assert.Contains(t, f.broker.types, model.EventAppointmentCompleted)
	assert.Contains(t, f.broker.types, model.EventAppointmentCancelled)
}

func TestUpdateRejectsTerminalAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "")

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		CustomerID:         &customer.ID,
		ServiceDescription: "Haircut",
		StartsAt:           time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, f.userID, created.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled})
	require.NoError(t, err)

	notes := "bring references"
	_, err = f.service.Update(ctx, f.userID, created.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be modified")
}

func TestDeleteOnlyCancelledAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "")

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		CustomerID:         &customer.ID,
		ServiceDescription: "Haircut",
		StartsAt:           time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.userID, created.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only cancelled")

	_, err = f.service.UpdateStatus(ctx, f.userID, created.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled})
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, f.userID, created.ID))

	_, err = f.service.Get(ctx, f.userID, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReminderBuildsWhatsappLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "+1 (555) 010-0101")

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		CustomerID:         &customer.ID,
		ServiceDescription: "Haircut",
		StartsAt:           time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	link, err := f.service.Reminder(ctx, f.userID, created.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link.URL, "https://wa.me/15550100101?text="), link.URL)
	assert.Contains(t, link.Message, "Alice Moreno")
	assert.Contains(t, link.Message, "Haircut")
	assert.Contains(t, link.Message, "14:30")

	got, err := f.service.Get(ctx, f.userID, created.ID)
	require.NoError(t, err)
	assert.True(t, got.WhatsappSent)
}

func TestReminderRequiresPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Bruno Costa", "bruno@example.com", "")

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		CustomerID:         &customer.ID,
		ServiceDescription: "Haircut",
		StartsAt:           time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.service.Reminder(ctx, f.userID, created.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no phone number")
}

func TestDayReturnsOnlyThatDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "")

	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	for _, startsAt := range []time.Time{
		day.Add(9 * time.Hour),
		day.Add(16 * time.Hour),
		day.AddDate(0, 0, 1).Add(10 * time.Hour),
	} {
		_, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
			CustomerID:         &customer.ID,
			ServiceDescription: "Haircut",
			StartsAt:           startsAt,
		})
		require.NoError(t, err)
	}

	appointments, err := f.service.Day(ctx, f.userID, day.Add(13*time.Hour))
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.True(t, appointments[0].StartsAt.Before(appointments[1].StartsAt))
}

func TestAppointmentsAreTenantScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Alice Moreno", "alice@example.com", "")

	created, err := f.service.Create(ctx, f.userID, &model.CreateAppointmentRequest{
		CustomerID:         &customer.ID,
		ServiceDescription: "Haircut",
		StartsAt:           time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.service.Get(ctx, uuid.New(), created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
