package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/service/customer"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
)

// Document is a rendered report ready to stream back as a download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Service renders customer reports from in-memory result sets. Exports are
// point-in-time listings, so nothing here touches storage directly.
type Service struct {
	customers *customer.Service
}

func NewService(customers *customer.Service) *Service {
	return &Service{customers: customers}
}

// Customers renders the full customer list, active and inactive, in the
// requested format.
func (s *Service) Customers(ctx context.Context, userID uuid.UUID, format Format) (*Document, error) {
	customers, err := s.customers.List(ctx, userID, &model.CustomerFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load customers for export: %w", err)
	}

	filename := fmt.Sprintf("customers_%s.%s", time.Now().Format("20060102_150405"), format)
	switch format {
	case FormatCSV:
		body, err := renderCSV(customers)
		if err != nil {
			return nil, err
		}
		return &Document{Filename: filename, ContentType: "text/csv", Body: body}, nil
	case FormatText:
		return &Document{Filename: filename, ContentType: "text/plain; charset=utf-8", Body: renderText(customers)}, nil
	default:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unsupported export format: %s", format), nil)
	}
}

func renderCSV(customers []*model.Customer) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write([]string{"Name", "Email", "Phone", "Address", "Status", "Notes", "Created At"})
	for _, c := range customers {
		writer.Write([]string{
			c.Name,
			c.Email,
			c.Phone,
			c.Address,
			string(c.Status),
			c.Notes,
			c.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to render customer csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderText(customers []*model.Customer) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Customer report (%s)\n", time.Now().Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&buf, "Total: %d\n\n", len(customers))

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tSTATUS")
	for _, c := range customers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Email, c.Phone, c.Status)
	}
	w.Flush()
	return buf.Bytes()
}
