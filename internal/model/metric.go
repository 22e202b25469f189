package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentMetric is a cached daily rollup, keyed by (user_id, metric_date).
// DailyTotal counts the day's appointments regardless of status; the moving
// average always divides the trailing 30-day count by 30.
type AppointmentMetric struct {
	UserID              uuid.UUID `db:"user_id" json:"user_id"`
	MetricDate          time.Time `db:"metric_date" json:"metric_date"`
	DailyTotal          int       `db:"daily_total" json:"daily_total"`
	MovingAverage       float64   `db:"moving_average" json:"moving_average"`
	PercentageVariation float64   `db:"percentage_variation" json:"percentage_variation"`
	ComputedAt          time.Time `db:"computed_at" json:"computed_at"`
}
