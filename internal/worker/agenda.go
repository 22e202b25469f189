package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/agendahub/agenda-api/internal/email"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/repository"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/metrics"
)

// DefaultAgendaSchedule mails the summary before the workday starts.
const DefaultAgendaSchedule = "0 7 * * *"

// AgendaWorker mails each owner their day's open appointments. Owners with
// nothing booked get no mail.
type AgendaWorker struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	customers    repository.CustomerRepository
	mailer       email.Service
	logger       *logger.Logger
	metrics      *metrics.Metrics
	schedule     string
}

func NewAgendaWorker(users repository.UserRepository, appointments repository.AppointmentRepository,
	customers repository.CustomerRepository, mailer email.Service,
	log *logger.Logger, m *metrics.Metrics, schedule string) *AgendaWorker {
	if schedule == "" {
		schedule = DefaultAgendaSchedule
	}
	return &AgendaWorker{
		users:        users,
		appointments: appointments,
		customers:    customers,
		mailer:       mailer,
		logger:       log.WithComponent("agenda_worker"),
		metrics:      m,
		schedule:     schedule,
	}
}

// Start blocks until the context is cancelled.
func (w *AgendaWorker) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.run(ctx) }); err != nil {
		return fmt.Errorf("invalid agenda schedule %q: %w", w.schedule, err)
	}
	c.Start()
	defer c.Stop()

	w.logger.Info("agenda worker started", "schedule", w.schedule)
	<-ctx.Done()
	return nil
}

func (w *AgendaWorker) run(ctx context.Context) {
	users, err := w.users.List(ctx)
	if err != nil {
		w.logger.Error(err, "failed to list tenants for agenda run")
		return
	}

	sent := 0
	for _, user := range users {
		ok, err := w.sendAgenda(ctx, user)
		if err != nil {
			if w.metrics != nil {
				w.metrics.EmailsFailed.Inc()
			}
			w.logger.Error(err, "failed to send agenda", "user_id", user.ID.String())
			continue
		}
		if ok {
			sent++
			if w.metrics != nil {
				w.metrics.EmailsSent.Inc()
			}
		}
	}
	w.logger.Info("agenda run finished", "tenants", len(users), "sent", sent)
}

func (w *AgendaWorker) sendAgenda(ctx context.Context, user *model.User) (bool, error) {
	today := civilDate(time.Now())
	appointments, err := w.appointments.ListRange(ctx, user.ID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("failed to list today's appointments: %w", err)
	}

	var open []*model.Appointment
	for _, appointment := range appointments {
		if appointment.Status == model.AppointmentStatusPending ||
			appointment.Status == model.AppointmentStatusConfirmed {
			open = append(open, appointment)
		}
	}
	if len(open) == 0 {
		return false, nil
	}
	sort.Slice(open, func(i, j int) bool { return open[i].StartsAt.Before(open[j].StartsAt) })

	subject := fmt.Sprintf("Your agenda for %s", today.Format("Monday, 02 Jan"))
	if err := w.mailer.Send(ctx, user.Email, subject, w.renderBody(ctx, user.ID, open, today)); err != nil {
		return false, fmt.Errorf("failed to send agenda mail: %w", err)
	}
	return true, nil
}

func (w *AgendaWorker) renderBody(ctx context.Context, userID uuid.UUID, appointments []*model.Appointment, day time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning!\n\nYou have %d appointment(s) on %s:\n\n",
		len(appointments), day.Format("Monday, 02 Jan"))

	for _, appointment := range appointments {
		name := "customer"
		if customer, err := w.customers.Get(ctx, userID, appointment.CustomerID); err == nil {
			name = customer.Name
		}
		what := appointment.ServiceDescription
		if what == "" {
			what = "appointment"
		}
		fmt.Fprintf(&b, "%s  %s (%d min) with %s [%s]\n",
			appointment.StartsAt.Format("15:04"), what, appointment.Duration, name, appointment.Status)
	}

	b.WriteString("\nHave a great day!\n")
	return b.String()
}
