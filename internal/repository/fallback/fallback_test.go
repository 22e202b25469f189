package fallback_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/internal/repository/fallback"
	"github.com/agendahub/agenda-api/internal/repository/local"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
	"github.com/agendahub/agenda-api/pkg/logger"
)

// flakyCustomers stands in for a connected tier that can drop offline.
type flakyCustomers struct {
	inner repository.CustomerRepository
	down  *bool
}

func (f *flakyCustomers) offline() error {
	if *f.down {
		return apperrors.NewUnavailable("backend", errors.New("connection refused"))
	}
	return nil
}

func (f *flakyCustomers) Create(ctx context.Context, customer *model.Customer) error {
	if err := f.offline(); err != nil {
		return err
	}
	return f.inner.Create(ctx, customer)
}

func (f *flakyCustomers) Get(ctx context.Context, userID, id uuid.UUID) (*model.Customer, error) {
	if err := f.offline(); err != nil {
		return nil, err
	}
	return f.inner.Get(ctx, userID, id)
}

func (f *flakyCustomers) GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*model.Customer, error) {
	if err := f.offline(); err != nil {
		return nil, err
	}
	return f.inner.GetByEmail(ctx, userID, email)
}

func (f *flakyCustomers) Update(ctx context.Context, customer *model.Customer) error {
	if err := f.offline(); err != nil {
		return err
	}
	return f.inner.Update(ctx, customer)
}

func (f *flakyCustomers) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.CustomerStatus) error {
	if err := f.offline(); err != nil {
		return err
	}
	return f.inner.UpdateStatus(ctx, userID, id, status)
}

func (f *flakyCustomers) List(ctx context.Context, userID uuid.UUID, filter *model.CustomerFilter) ([]*model.Customer, error) {
	if err := f.offline(); err != nil {
		return nil, err
	}
	return f.inner.List(ctx, userID, filter)
}

func (f *flakyCustomers) CountByStatus(ctx context.Context, userID uuid.UUID, status model.CustomerStatus) (int, error) {
	if err := f.offline(); err != nil {
		return 0, err
	}
	return f.inner.CountByStatus(ctx, userID, status)
}

type harness struct {
	repos        *repository.Repositories
	replicaStore *local.Store
	primaryStore *local.Store
	down         *bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	primaryStore, err := local.NewStore(t.TempDir())
	require.NoError(t, err)
	replicaStore, err := local.NewStore(t.TempDir())
	require.NoError(t, err)

	down := new(bool)
	primary := &repository.Repositories{
		User:        local.NewUserRepository(primaryStore),
		Profile:     local.NewProfileRepository(primaryStore),
		Customer:    &flakyCustomers{inner: local.NewCustomerRepository(primaryStore), down: down},
		Service:     local.NewServiceRepository(primaryStore),
		Appointment: local.NewAppointmentRepository(primaryStore),
		Metric:      local.NewMetricRepository(primaryStore),
	}

	quiet := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return &harness{
		repos:        fallback.Wrap(primary, replicaStore, quiet, nil),
		replicaStore: replicaStore,
		primaryStore: primaryStore,
		down:         down,
	}
}

func TestReadsFallBackToReplicaWhenPrimaryDown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := uuid.New()

	customer := &model.Customer{UserID: userID, Name: "Maria Silva", Email: "maria@clients.test"}
	require.NoError(t, h.repos.Customer.Create(ctx, customer))

	*h.down = true

	got, err := h.repos.Customer.Get(ctx, userID, customer.ID)
	require.NoError(t, err, "read should be served from the replica")
	assert.Equal(t, "Maria Silva", got.Name)

	count, err := h.repos.Customer.CountByStatus(ctx, userID, model.CustomerStatusActive)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWritesFailWhenPrimaryDown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	*h.down = true

	err := h.repos.Customer.Create(ctx, &model.Customer{
		UserID: uuid.New(),
		Name:   "Bruno Costa",
		Email:  "bruno@clients.test",
	})
	assert.True(t, apperrors.IsUnavailable(err), "writes never queue against the replica")
}

func TestPrimaryReadsRefreshTheReplica(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := uuid.New()

	// Row exists only on the primary, as if written by another instance.
	primaryOnly := local.NewCustomerRepository(h.primaryStore)
	customer := &model.Customer{UserID: userID, Name: "Ana Moreno", Email: "ana@clients.test"}
	require.NoError(t, primaryOnly.Create(ctx, customer))

	got, err := h.repos.Customer.Get(ctx, userID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Moreno", got.Name)

	*h.down = true

	got, err = h.repos.Customer.Get(ctx, userID, customer.ID)
	require.NoError(t, err, "the successful read should have mirrored the row")
	assert.Equal(t, "Ana Moreno", got.Name)
}

func TestNotFoundPassesThroughWithoutReplicaRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := uuid.New()

	// The replica holding a row must not mask a primary not-found: only
	// unavailability switches reads over.
	replicaOnly := local.NewCustomerRepository(h.replicaStore)
	stale := &model.Customer{UserID: userID, Name: "Ghost", Email: "ghost@clients.test"}
	require.NoError(t, replicaOnly.Create(ctx, stale))

	_, err := h.repos.Customer.Get(ctx, userID, stale.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
