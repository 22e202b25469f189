package appointment

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/messaging"
	"github.com/agendahub/agenda-api/pkg/metrics"
)

// defaultDuration fills bookings that name neither a duration nor a catalog
// service.
const defaultDuration = 30

type Service struct {
	repo         repository.AppointmentRepository
	customerRepo repository.CustomerRepository
	catalogRepo  repository.ServiceRepository
	broker       messaging.Broker
	cache        *cache.Cache
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(repo repository.AppointmentRepository, customerRepo repository.CustomerRepository,
	catalogRepo repository.ServiceRepository, broker messaging.Broker, c *cache.Cache,
	log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		catalogRepo:  catalogRepo,
		broker:       broker,
		cache:        c,
		logger:       log.WithComponent("appointment"),
		metrics:      m,
	}
}

// Create books a slot. When the request carries a new-customer payload the
// customer insert runs first; the two writes are sequenced, not
// transactional, so a failed booking can leave the new customer behind.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	customerID, err := s.resolveCustomer(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		UserID:             userID,
		CustomerID:         customerID,
		ServiceID:          req.ServiceID,
		ServiceDescription: req.ServiceDescription,
		StartsAt:           req.StartsAt,
		Duration:           req.Duration,
		Status:             model.AppointmentStatusPending,
		Notes:              req.Notes,
	}
	if err := s.fillFromCatalog(ctx, userID, appointment); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.invalidate(userID)
	s.publish(ctx, model.EventAppointmentCreated, appointment)
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	key := cache.Key("appointment", userID, id.String())
	return cache.Fetch(s.cache, key, func() (*model.Appointment, error) {
		appointment, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get appointment: %w", err)
		}
		return appointment, nil
	})
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	if filter == nil {
		filter = &model.AppointmentFilter{}
	}
	key := cache.Key("appointment", userID, "list", filter.CustomerID.String(), string(filter.Status),
		filter.From.Format("2006-01-02"), filter.To.Format("2006-01-02"))
	return cache.Fetch(s.cache, key, func() ([]*model.Appointment, error) {
		appointments, err := s.repo.List(ctx, userID, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
		return appointments, nil
	})
}

// Day returns the agenda for one civil date, ordered by start time.
func (s *Service) Day(ctx context.Context, userID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	key := cache.Key("appointment", userID, "day", from.Format("2006-01-02"))
	return cache.Fetch(s.cache, key, func() ([]*model.Appointment, error) {
		appointments, err := s.repo.ListRange(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list day appointments: %w", err)
		}
		return appointments, nil
	})
}

// Update reschedules or re-describes a booking. Terminal appointments are
// immutable.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appointment.Status == model.AppointmentStatusCancelled || appointment.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("%s appointments cannot be modified", appointment.Status), nil)
	}

	if req.ServiceID != nil {
		appointment.ServiceID = req.ServiceID
		// Re-snapshot from the catalog unless the request pins its own values.
		service, err := s.catalogRepo.Get(ctx, userID, *req.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		if req.Duration == nil {
			appointment.Duration = service.Duration
		}
		if req.ServiceDescription == nil {
			appointment.ServiceDescription = service.Name
		}
	}
	if req.ServiceDescription != nil {
		appointment.ServiceDescription = *req.ServiceDescription
	}
	if req.StartsAt != nil {
		appointment.StartsAt = *req.StartsAt
	}
	if req.Duration != nil {
		appointment.Duration = *req.Duration
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.invalidate(userID)
	s.publish(ctx, model.EventAppointmentUpdated, appointment)
	return appointment, nil
}

// UpdateStatus walks the status machine: pending may confirm or cancel,
// confirmed may complete or cancel, nothing leaves a terminal state.
func (s *Service) UpdateStatus(ctx context.Context, userID, id uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if !appointment.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("cannot change status from %s to %s", appointment.Status, req.Status), nil)
	}

	appointment.Status = req.Status
	if req.Status == model.AppointmentStatusCancelled {
		appointment.CancelReason = req.CancelReason
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.invalidate(userID)
	s.publish(ctx, eventTypeFor(req.Status), appointment)
	return appointment, nil
}

// Delete removes a booking for good; only cancelled ones qualify.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	appointment, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	if appointment.Status != model.AppointmentStatusCancelled {
		return apperrors.NewBadRequest("only cancelled appointments can be deleted", nil)
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.invalidate(userID)
	return nil
}

// Reminder builds a wa.me link with a prefilled message for the booking's
// customer and marks the appointment as reminded.
func (s *Service) Reminder(ctx context.Context, userID, id uuid.UUID) (*model.ReminderLink, error) {
	appointment, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	customer, err := s.customerRepo.Get(ctx, userID, appointment.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	phone := phoneDigits(customer.Phone)
	if phone == "" {
		return nil, apperrors.NewBadRequest("customer has no phone number", nil)
	}

	what := appointment.ServiceDescription
	if what == "" {
		what = "appointment"
	}
	message := fmt.Sprintf("Hi %s! Reminding you of your %s on %s at %s. See you soon!",
		customer.Name, what,
		appointment.StartsAt.Format("Monday, 02 Jan"),
		appointment.StartsAt.Format("15:04"))

	appointment.WhatsappSent = true
	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	s.invalidate(userID)

	return &model.ReminderLink{
		AppointmentID: appointment.ID,
		URL:           fmt.Sprintf("https://wa.me/%s?text=%s", phone, url.QueryEscape(message)),
		Message:       message,
	}, nil
}

func (s *Service) CountPending(ctx context.Context, userID uuid.UUID) (int, error) {
	key := cache.Key("appointment", userID, "count", "pending")
	return cache.Fetch(s.cache, key, func() (int, error) {
		count, err := s.repo.CountByStatus(ctx, userID, model.AppointmentStatusPending)
		if err != nil {
			return 0, fmt.Errorf("failed to count appointments: %w", err)
		}
		return count, nil
	})
}

// resolveCustomer returns the referenced customer's id, creating the named
// one first when the booking brings a new client. A duplicate email
// surfaces as a conflict for the caller to resolve.
func (s *Service) resolveCustomer(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (uuid.UUID, error) {
	if req.CustomerID != nil {
		customer, err := s.customerRepo.Get(ctx, userID, *req.CustomerID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to get customer: %w", err)
		}
		return customer.ID, nil
	}
	if req.Customer == nil {
		return uuid.Nil, apperrors.NewBadRequest("customer_id or customer payload is required", nil)
	}

	customer := &model.Customer{
		UserID: userID,
		Name:   req.Customer.Name,
		Email:  req.Customer.Email,
		Phone:  req.Customer.Phone,
		Status: model.CustomerStatusActive,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.cache.InvalidatePrefix(cache.Key("customer", userID))
	return customer.ID, nil
}

// fillFromCatalog snapshots duration and description from the selected
// service so later catalog edits never rewrite history.
func (s *Service) fillFromCatalog(ctx context.Context, userID uuid.UUID, appointment *model.Appointment) error {
	if appointment.ServiceID != nil {
		service, err := s.catalogRepo.Get(ctx, userID, *appointment.ServiceID)
		if err != nil {
			return fmt.Errorf("failed to get service: %w", err)
		}
		if appointment.Duration == 0 {
			appointment.Duration = service.Duration
		}
		if appointment.ServiceDescription == "" {
			appointment.ServiceDescription = service.Name
		}
		return nil
	}

	if appointment.ServiceDescription == "" {
		return apperrors.NewBadRequest("service_id or service_description is required", nil)
	}
	if appointment.Duration == 0 {
		appointment.Duration = defaultDuration
	}
	return nil
}

// publish is fire-and-forget: a dead broker never fails a booking.
func (s *Service) publish(ctx context.Context, eventType string, appointment *model.Appointment) {
	event := &model.AppointmentEvent{
		Type:        eventType,
		Appointment: appointment,
		OccurredAt:  time.Now(),
	}
	if err := s.broker.Publish(ctx, model.EventTopicAppointments, event); err != nil {
		s.logger.Warn("failed to publish appointment event", "type", eventType, "error", err.Error())
		if s.metrics != nil {
			s.metrics.EventsFailed.WithLabelValues(model.EventTopicAppointments).Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(model.EventTopicAppointments).Inc()
	}
}

func (s *Service) invalidate(userID uuid.UUID) {
	s.cache.InvalidatePrefix(cache.Key("appointment", userID))
	// Bookings move the daily counts, so stored metric reads go stale too.
	s.cache.InvalidatePrefix(cache.Key("metric", userID))
}

func eventTypeFor(status model.AppointmentStatus) string {
	switch status {
	case model.AppointmentStatusCancelled:
		return model.EventAppointmentCancelled
	case model.AppointmentStatusCompleted:
		return model.EventAppointmentCompleted
	default:
		return model.EventAppointmentUpdated
	}
}

func phoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}
