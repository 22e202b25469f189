package customer

import (
	"bytes"
	"context"
	"encoding/json"
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
	customerService "github.com/agendahub/agenda-api/internal/service/customer"
	"github.com/agendahub/agenda-api/internal/service/export"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	router  *gin.Engine
	repo    *local.CustomerRepository
	ownerID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterTagNames()

	store, err := local.NewStore(t.TempDir())
	require.NoError(t, err)
	repo := local.NewCustomerRepository(store)

	svc := customerService.NewService(repo, cache.New(time.Minute, time.Minute, nil))
	ownerID := uuid.New()

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, ownerID) })
	NewHandler(svc, export.NewService(svc)).RegisterRoutes(api)

	return &fixture{router: r, repo: repo, ownerID: ownerID}
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

func (f *fixture) seed(t *testing.T, name, email string) *model.Customer {
	t.Helper()
	customer := &model.Customer{UserID: f.ownerID, Name: name, Email: email, Phone: "+1 555 010 0101"}
	require.NoError(t, f.repo.Create(context.Background(), customer))
	return customer
}

func TestCreateReturnsWrappedCustomer(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/customers", gin.H{
		"name":  "Maria Silva",
		"email": "maria@clients.test",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", env.Status)

	var created model.Customer
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Maria Silva", created.Name)
	assert.Equal(t, model.CustomerStatusActive, created.Status)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateValidationFailureListsFields(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/customers", gin.H{
		"name":  "",
		"email": "not-an-email",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "validation failed", env.Message)

	var details []handler.ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &details))
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

func TestGetUnknownCustomerIs404(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestMalformedIDIs400(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodGet, "/api/v1/customers/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateEmailIs409(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Maria Silva", "maria@clients.test")

	w, env := f.do(t, http.MethodPost, "/api/v1/customers", gin.H{
		"name":  "Maria Again",
		"email": "maria@clients.test",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestDeleteParksAndRestoreRevives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seed(t, "Bruno Costa", "bruno@clients.test")

	w, _ := f.do(t, http.MethodDelete, "/api/v1/customers/"+customer.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	parked, err := f.repo.Get(ctx, f.ownerID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CustomerStatusInactive, parked.Status)

	w, _ = f.do(t, http.MethodPost, "/api/v1/customers/"+customer.ID.String()+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)

	restored, err := f.repo.Get(ctx, f.ownerID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CustomerStatusActive, restored.Status)
}

func TestListFiltersBySearchTerm(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Ana Moreno", "ana@clients.test")
	f.seed(t, "Bruno Costa", "bruno@clients.test")

	w, env := f.do(t, http.MethodGet, "/api/v1/customers?search=ana", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var customers []*model.Customer
	require.NoError(t, json.Unmarshal(env.Data, &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "Ana Moreno", customers[0].Name)
}

func TestListPaginatesOnlyWhenAsked(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Ana Moreno", "ana@clients.test")
	f.seed(t, "Bruno Costa", "bruno@clients.test")
	f.seed(t, "Carla Nunes", "carla@clients.test")

	// No page param: the whole set, no window headers.
	w, env := f.do(t, http.MethodGet, "/api/v1/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []*model.Customer
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 3)
	assert.Empty(t, w.Header().Get("X-Total-Count"))

	w, env = f.do(t, http.MethodGet, "/api/v1/customers?page=2&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var windowed []*model.Customer
	require.NoError(t, json.Unmarshal(env.Data, &windowed))
	require.Len(t, windowed, 1)
	assert.Equal(t, "Carla Nunes", windowed[0].Name, "customers list orders by name")
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "2", w.Header().Get("X-Page"))
}

func TestExportStreamsCSVAttachment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Maria Silva", "maria@clients.test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/export?format=csv", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=customers_")
	assert.Contains(t, w.Body.String(), "Name,Email,Phone")
	assert.Contains(t, w.Body.String(), "Maria Silva")
}

func TestUnsupportedExportFormatIs400(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/customers/export?format=xml", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}
