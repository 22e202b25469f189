package local

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agenda-api/internal/model"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
	"github.com/agendahub/agenda-api/pkg/security"
)

func TestStoreReloadsPersistedRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	owner := &model.User{Email: "owner@studio.test", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(store).Create(ctx, owner))

	customer := &model.Customer{UserID: owner.ID, Name: "Maria Silva", Email: "maria@clients.test"}
	require.NoError(t, NewCustomerRepository(store).Create(ctx, customer))

	startsAt := time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC)
	appointment := &model.Appointment{
		UserID:             owner.ID,
		CustomerID:         customer.ID,
		ServiceDescription: "Haircut",
		StartsAt:           startsAt,
		Duration:           30,
	}
	require.NoError(t, NewAppointmentRepository(store).Create(ctx, appointment))

	// A fresh store over the same directory must see everything.
	reopened, err := NewStore(dir)
	require.NoError(t, err)

	user, err := NewUserRepository(reopened).GetByEmail(ctx, "owner@studio.test")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, user.ID)

	got, err := NewCustomerRepository(reopened).Get(ctx, owner.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", got.Name)

	day, err := NewAppointmentRepository(reopened).ListRange(ctx, owner.ID, startsAt.Add(-time.Hour), startsAt.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.True(t, day[0].StartsAt.Equal(startsAt))
}

func TestCreateFillsIdentityAndDefaults(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	customer := &model.Customer{UserID: uuid.New(), Name: "Bruno Costa", Email: "bruno@clients.test"}
	require.NoError(t, NewCustomerRepository(store).Create(ctx, customer))

	assert.NotEqual(t, uuid.Nil, customer.ID)
	assert.Equal(t, model.CustomerStatusActive, customer.Status)
	assert.False(t, customer.CreatedAt.IsZero())
}

func TestDuplicateUserEmailConflicts(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	users := NewUserRepository(store)
	require.NoError(t, users.Create(ctx, &model.User{Email: "owner@studio.test", PasswordHash: "x"}))

	err = users.Create(ctx, &model.User{Email: "Owner@Studio.Test", PasswordHash: "y"})
	assert.True(t, apperrors.IsConflict(err), "email uniqueness is case-insensitive")
}

func TestListRangeIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	userID := uuid.New()
	appointments := NewAppointmentRepository(store)
	day := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	for _, startsAt := range []time.Time{day, day.Add(10 * time.Hour), day.Add(24 * time.Hour)} {
		require.NoError(t, appointments.Create(ctx, &model.Appointment{
			UserID:     userID,
			CustomerID: uuid.New(),
			StartsAt:   startsAt,
			Duration:   30,
		}))
	}

	got, err := appointments.ListRange(ctx, userID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2, "the window includes its start and excludes its end")
	assert.True(t, got[0].StartsAt.Equal(day))
	assert.True(t, got[1].StartsAt.Equal(day.Add(10*time.Hour)))
}

func TestMetricUpsertKeysByDay(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	userID := uuid.New()
	metrics := NewMetricRepository(store)
	date := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, metrics.Upsert(ctx, &model.AppointmentMetric{UserID: userID, MetricDate: date, DailyTotal: 2}))
	require.NoError(t, metrics.Upsert(ctx, &model.AppointmentMetric{UserID: userID, MetricDate: date, DailyTotal: 5}))

	row, err := metrics.Get(ctx, userID, date)
	require.NoError(t, err)
	assert.Equal(t, 5, row.DailyTotal, "the second upsert replaces the first")
	assert.False(t, row.ComputedAt.IsZero())

	window, err := metrics.List(ctx, userID, date.AddDate(0, 0, -7), date)
	require.NoError(t, err)
	assert.Len(t, window, 1)
}

func TestSeedPopulatesEmptyStoreOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, store, "demo@agendahub.app", "demo1234"))

	users := NewUserRepository(store)
	owner, err := users.GetByEmail(ctx, "demo@agendahub.app")
	require.NoError(t, err)

	hasher := security.NewBcryptHasher(0)
	assert.NoError(t, hasher.Compare(owner.PasswordHash, "demo1234"))

	services, err := NewServiceRepository(store).List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, services, 3)

	customers, err := NewCustomerRepository(store).List(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.Len(t, customers, 3)

	// Seeding again, even after a reopen, must not duplicate anything.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, reopened, "demo@agendahub.app", "demo1234"))

	all, err := NewUserRepository(reopened).List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
