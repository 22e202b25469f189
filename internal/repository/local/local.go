package local

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
)

// Store is the JSON-file tier. It is the only storage in demo mode and the
// fallback replica in connected modes.
type Store struct {
	dir          string
	users        *table[model.User]
	profiles     *table[model.Profile]
	customers    *table[model.Customer]
	services     *table[model.Service]
	appointments *table[model.Appointment]
	metrics      *table[model.AppointmentMetric]
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	users, err := newTable[model.User](dataDir, "users")
	if err != nil {
		return nil, err
	}
	profiles, err := newTable[model.Profile](dataDir, "user_profile")
	if err != nil {
		return nil, err
	}
	customers, err := newTable[model.Customer](dataDir, "customers")
	if err != nil {
		return nil, err
	}
	services, err := newTable[model.Service](dataDir, "user_services")
	if err != nil {
		return nil, err
	}
	appointments, err := newTable[model.Appointment](dataDir, "appointments")
	if err != nil {
		return nil, err
	}
	metrics, err := newTable[model.AppointmentMetric](dataDir, "appointment_metrics")
	if err != nil {
		return nil, err
	}

	return &Store{
		dir:          dataDir,
		users:        users,
		profiles:     profiles,
		customers:    customers,
		services:     services,
		appointments: appointments,
		metrics:      metrics,
	}, nil
}

// Empty reports whether the store has no owners yet, i.e. first boot.
func (s *Store) Empty() bool {
	return s.users.len() == 0
}

func metricKey(userID uuid.UUID, date time.Time) string {
	return userID.String() + "|" + date.Format("2006-01-02")
}
