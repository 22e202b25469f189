package postgrest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/model"
)

// dateOnly round-trips DATE columns, which the backend serves without a
// time component.
type dateOnly time.Time

func (d dateOnly) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(d).Format("2006-01-02"))), nil
}

func (d *dateOnly) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
	}
	*d = dateOnly(t)
	return nil
}

func (d dateOnly) Time() time.Time {
	return time.Time(d)
}

// userRow carries the password hash the public model hides from JSON.
type userRow struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *userRow) toModel() *model.User {
	return &model.User{
		Base: model.Base{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}

func userRowFrom(user *model.User) *userRow {
	return &userRow{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// metricRow translates the DATE-keyed metrics table.
type metricRow struct {
	UserID              uuid.UUID `json:"user_id"`
	MetricDate          dateOnly  `json:"metric_date"`
	DailyTotal          int       `json:"daily_total"`
	MovingAverage       float64   `json:"moving_average"`
	PercentageVariation float64   `json:"percentage_variation"`
	ComputedAt          time.Time `json:"computed_at"`
}

func (r *metricRow) toModel() *model.AppointmentMetric {
	return &model.AppointmentMetric{
		UserID:              r.UserID,
		MetricDate:          r.MetricDate.Time(),
		DailyTotal:          r.DailyTotal,
		MovingAverage:       r.MovingAverage,
		PercentageVariation: r.PercentageVariation,
		ComputedAt:          r.ComputedAt,
	}
}

func metricRowFrom(metric *model.AppointmentMetric) *metricRow {
	return &metricRow{
		UserID:              metric.UserID,
		MetricDate:          dateOnly(metric.MetricDate),
		DailyTotal:          metric.DailyTotal,
		MovingAverage:       metric.MovingAverage,
		PercentageVariation: metric.PercentageVariation,
		ComputedAt:          metric.ComputedAt,
	}
}

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
