package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/handler"
	"github.com/agendahub/agenda-api/internal/middleware"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository/local"
	appointmentService "github.com/agendahub/agenda-api/internal/service/appointment"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/messaging"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	router       *gin.Engine
	appointments *local.AppointmentRepository
	customers    *local.CustomerRepository
	catalog      *local.ServiceRepository
	ownerID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterTagNames()

	store, err := local.NewStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		appointments: local.NewAppointmentRepository(store),
		customers:    local.NewCustomerRepository(store),
		catalog:      local.NewServiceRepository(store),
		ownerID:      uuid.New(),
	}

	quiet := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := appointmentService.NewService(f.appointments, f.customers, f.catalog,
		messaging.NewNoopBroker(), cache.New(time.Minute, time.Minute, nil), quiet, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, f.ownerID) })
	NewHandler(svc).RegisterRoutes(api)
	f.router = r

	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (f *fixture) seedCustomer(t *testing.T, name, phone string) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		UserID: f.ownerID,
		Name:   name,
		Email:  fmt.Sprintf("%s@clients.test", uuid.NewString()[:8]),
		Phone:  phone,
	}
	require.NoError(t, f.customers.Create(context.Background(), customer))
	return customer
}

func (f *fixture) book(t *testing.T, customerID uuid.UUID, startsAt time.Time, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	appointment := &model.Appointment{
		UserID:             f.ownerID,
		CustomerID:         customerID,
		ServiceDescription: "Haircut",
		StartsAt:           startsAt,
		Duration:           30,
		Status:             status,
	}
	require.NoError(t, f.appointments.Create(context.Background(), appointment))
	return appointment
}

func TestCreateWithInlineCustomer(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"customer": gin.H{
			"name":  "Maria Silva",
			"email": "maria@clients.test",
		},
		"service_description": "Consultation",
		"starts_at":           time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, model.AppointmentStatusPending, created.Status)
	assert.Equal(t, 30, created.Duration, "bookings without a duration fall back to the default slot")

	customer, err := f.customers.GetByEmail(context.Background(), f.ownerID, "maria@clients.test")
	require.NoError(t, err, "the inline customer payload must create the customer")
	assert.Equal(t, customer.ID, created.CustomerID)
}

func TestCreateSnapshotsTheCatalogService(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Bruno Costa", "")

	service := &model.Service{UserID: f.ownerID, Name: "Color Treatment", Duration: 90, Price: 120}
	require.NoError(t, f.catalog.Create(context.Background(), service))

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"customer_id": customer.ID,
		"service_id":  service.ID,
		"starts_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 90, created.Duration)
	assert.Equal(t, "Color Treatment", created.ServiceDescription)
}

func TestCreateWithoutCustomerIs400(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"service_description": "Haircut",
		"starts_at":           time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestStatusMachine(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Maria Silva", "")
	booking := f.book(t, customer.ID, time.Now().Add(24*time.Hour), model.AppointmentStatusPending)
	path := "/api/v1/appointments/" + booking.ID.String() + "/status"

	// pending cannot complete directly
	w, _ := f.do(t, http.MethodPatch, path, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPatch, path, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := f.do(t, http.MethodPatch, path, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)

	// completed is terminal
	w, _ = f.do(t, http.MethodPatch, path, gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusOutsideTheMachineIsRejectedByBinding(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Maria Silva", "")
	booking := f.book(t, customer.ID, time.Now().Add(24*time.Hour), model.AppointmentStatusPending)

	w, env := f.do(t, http.MethodPatch, "/api/v1/appointments/"+booking.ID.String()+"/status",
		gin.H{"status": "snoozed"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", env.Message)
}

func TestCancelRecordsTheReason(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Maria Silva", "")
	booking := f.book(t, customer.ID, time.Now().Add(24*time.Hour), model.AppointmentStatusPending)

	w, env := f.do(t, http.MethodPatch, "/api/v1/appointments/"+booking.ID.String()+"/status",
		gin.H{"status": "cancelled", "cancel_reason": "client is travelling"})

	require.Equal(t, http.StatusOK, w.Code)

	var updated model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.NotNil(t, updated.CancelReason)
	assert.Equal(t, "client is travelling", *updated.CancelReason)
}

func TestDeleteOnlyRemovesCancelledBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Maria Silva", "")
	booking := f.book(t, customer.ID, time.Now().Add(24*time.Hour), model.AppointmentStatusPending)
	path := "/api/v1/appointments/" + booking.ID.String()

	w, _ := f.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPatch, path+"/status", gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.appointments.Get(ctx, f.ownerID, booking.ID)
	assert.Error(t, err)
}

func TestDayListsTheDateInStartOrder(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Maria Silva", "")

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)
	f.book(t, customer.ID, day.Add(14*time.Hour), model.AppointmentStatusConfirmed)
	f.book(t, customer.ID, day.Add(9*time.Hour), model.AppointmentStatusPending)
	f.book(t, customer.ID, day.Add(26*time.Hour), model.AppointmentStatusPending)

	w, env := f.do(t, http.MethodGet, "/api/v1/appointments/day?date=2026-09-14", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var agenda []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &agenda))
	require.Len(t, agenda, 2, "the next day's booking stays out")
	assert.True(t, agenda[0].StartsAt.Before(agenda[1].StartsAt))
}

func TestDayRejectsMalformedDates(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodGet, "/api/v1/appointments/day?date=14-09-2026", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReminderBuildsWhatsAppLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, "Maria Silva", "+1 (555) 010-0101")
	booking := f.book(t, customer.ID, time.Now().Add(24*time.Hour), model.AppointmentStatusConfirmed)

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments/"+booking.ID.String()+"/reminder", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var link model.ReminderLink
	require.NoError(t, json.Unmarshal(env.Data, &link))
	assert.Contains(t, link.URL, "https://wa.me/15550100101?text=")
	assert.Contains(t, link.Message, "Maria Silva")
	assert.Contains(t, link.Message, "Haircut")

	reminded, err := f.appointments.Get(ctx, f.ownerID, booking.ID)
	require.NoError(t, err)
	assert.True(t, reminded.WhatsappSent)
}

func TestReminderWithoutPhoneIs400(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Carla Nunes", "")
	booking := f.book(t, customer.ID, time.Now().Add(24*time.Hour), model.AppointmentStatusConfirmed)

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments/"+booking.ID.String()+"/reminder", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}
