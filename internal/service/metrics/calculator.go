package metrics

import (
	"math"
	"time"

	"github.com/agendahub/agenda-api/internal/model"
)

// Window is the moving-average divisor in days. Zero-activity days still
// count: the divisor never shrinks on sparse history.
const Window = 30

// Computation holds the three daily figures derived from an agenda.
type Computation struct {
	DailyTotal          int
	MovingAverage       float64
	PercentageVariation float64
}

// Compute derives the metrics for the target date from the surrounding
// appointments. Appointments match by civil date in the target's location;
// time of day never matters. The moving average covers the Window days
// strictly before the target.
func Compute(appointments []*model.Appointment, target time.Time) Computation {
	day := civilDate(target)
	windowStart := day.AddDate(0, 0, -Window)

	daily := 0
	window := 0
	for _, appointment := range appointments {
		d := civilDate(appointment.StartsAt.In(target.Location()))
		if d.Equal(day) {
			daily++
		}
		if !d.Before(windowStart) && d.Before(day) {
			window++
		}
	}

	average := round2(float64(window) / float64(Window))

	variation := 0.0
	switch {
	case average > 0:
		variation = round2((float64(daily) - average) / average * 100)
	case daily > 0:
		variation = 100
	}

	return Computation{
		DailyTotal:          daily,
		MovingAverage:       average,
		PercentageVariation: variation,
	}
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
