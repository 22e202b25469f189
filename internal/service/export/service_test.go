package export_test

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository/local"
	"github.com/agendahub/agenda-api/internal/service/customer"
	"github.com/agendahub/agenda-api/internal/service/export"
)

func newExportFixture(t *testing.T) (*export.Service, *customer.Service, uuid.UUID) {
	t.Helper()
	store, err := local.NewStore(t.TempDir())
	require.NoError(t, err)

	customers := customer.NewService(local.NewCustomerRepository(store), cache.New(time.Minute, time.Minute, nil))
	return export.NewService(customers), customers, uuid.New()
}

func TestCustomersCSVIncludesInactive(t *testing.T) {
	svc, customers, userID := newExportFixture(t)
	ctx := context.Background()

	_, err := customers.Create(ctx, userID, &model.CreateCustomerRequest{Name: "Alice Moreno", Email: "alice@example.com", Phone: "+1 555 010 0101"})
	require.NoError(t, err)
	parked, err := customers.Create(ctx, userID, &model.CreateCustomerRequest{Name: "Bruno Costa", Email: "bruno@example.com"})
	require.NoError(t, err)
	require.NoError(t, customers.Delete(ctx, userID, parked.ID))

	doc, err := svc.Customers(ctx, userID, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", doc.ContentType)
	assert.True(t, strings.HasPrefix(doc.Filename, "customers_"))
	assert.True(t, strings.HasSuffix(doc.Filename, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(doc.Body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus both customers")
	assert.Equal(t, []string{"Name", "Email", "Phone", "Address", "Status", "Notes", "Created At"}, records[0])

	statuses := map[string]string{records[1][0]: records[1][4], records[2][0]: records[2][4]}
	assert.Equal(t, "active", statuses["Alice Moreno"])
	assert.Equal(t, "inactive", statuses["Bruno Costa"])
}

func TestCustomersTextIsAlignedListing(t *testing.T) {
	svc, customers, userID := newExportFixture(t)
	ctx := context.Background()

	_, err := customers.Create(ctx, userID, &model.CreateCustomerRequest{Name: "Alice Moreno", Email: "alice@example.com"})
	require.NoError(t, err)

	doc, err := svc.Customers(ctx, userID, export.FormatText)
	require.NoError(t, err)

	body := string(doc.Body)
	assert.Contains(t, body, "Total: 1")
	assert.Contains(t, body, "NAME")
	assert.Contains(t, body, "Alice Moreno")
	assert.Contains(t, body, "alice@example.com")
}

func TestCustomersRejectsUnknownFormat(t *testing.T) {
	svc, _, userID := newExportFixture(t)

	_, err := svc.Customers(context.Background(), userID, export.Format("pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}
