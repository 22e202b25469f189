package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agendahub/agenda-api/internal/model"
)

func appointmentAt(t time.Time) *model.Appointment {
	return &model.Appointment{StartsAt: t}
}

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func TestComputeMatchesByDatePartOnly(t *testing.T) {
	target := day(2026, 3, 10)
	appointments := []*model.Appointment{
		appointmentAt(time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC)),
		appointmentAt(time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)),
		appointmentAt(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)),
		appointmentAt(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)),
	}

	got := Compute(appointments, target)
	assert.Equal(t, 3, got.DailyTotal, "any time of day on the target date counts")
}

func TestComputeDivisorIsAlwaysThirty(t *testing.T) {
	target := day(2026, 3, 10)
	// Three appointments on a single prior day; the other 29 days are empty.
	appointments := []*model.Appointment{
		appointmentAt(day(2026, 3, 5)),
		appointmentAt(day(2026, 3, 5).Add(2 * time.Hour)),
		appointmentAt(day(2026, 3, 5).Add(4 * time.Hour)),
	}

	got := Compute(appointments, target)
	assert.Equal(t, 0.1, got.MovingAverage, "3/30, never 3/1")
}

func TestComputeWindowExcludesTargetDay(t *testing.T) {
	target := day(2026, 3, 10)
	appointments := []*model.Appointment{
		appointmentAt(day(2026, 3, 10)),                 // target day: daily only
		appointmentAt(day(2026, 3, 9)),                  // inside window
		appointmentAt(day(2026, 2, 8)),                  // window start, inclusive
		appointmentAt(day(2026, 2, 7)),                  // before window
		appointmentAt(day(2026, 3, 11)),                 // after target
		appointmentAt(day(2026, 3, 9).Add(6 * time.Hour)),
	}

	got := Compute(appointments, target)
	assert.Equal(t, 1, got.DailyTotal)
	assert.Equal(t, 0.1, got.MovingAverage, "9th twice plus Feb 8th = 3/30")
}

func TestComputeVariationAgainstAverage(t *testing.T) {
	target := day(2026, 3, 10)

	// 120 window appointments -> average 4; 5 on the day -> +25%.
	var appointments []*model.Appointment
	for i := 0; i < 120; i++ {
		appointments = append(appointments, appointmentAt(day(2026, 3, 9).Add(-time.Duration(i%28)*24*time.Hour)))
	}
	for i := 0; i < 5; i++ {
		appointments = append(appointments, appointmentAt(day(2026, 3, 10).Add(time.Duration(i)*time.Hour)))
	}

	got := Compute(appointments, target)
	assert.Equal(t, 5, got.DailyTotal)
	assert.Equal(t, 4.0, got.MovingAverage)
	assert.Equal(t, 25.0, got.PercentageVariation)
}

func TestComputeVariationIsHundredOnFirstActivity(t *testing.T) {
	target := day(2026, 3, 10)
	appointments := []*model.Appointment{
		appointmentAt(day(2026, 3, 10).Add(9 * time.Hour)),
	}

	got := Compute(appointments, target)
	assert.Equal(t, 1, got.DailyTotal)
	assert.Equal(t, 0.0, got.MovingAverage)
	assert.Equal(t, 100.0, got.PercentageVariation, "first activity against an empty window")
}

func TestComputeVariationIsZeroOnNoActivity(t *testing.T) {
	got := Compute(nil, day(2026, 3, 10))
	assert.Equal(t, 0, got.DailyTotal)
	assert.Equal(t, 0.0, got.MovingAverage)
	assert.Equal(t, 0.0, got.PercentageVariation)
}

func TestComputeFullDropIsMinusHundred(t *testing.T) {
	target := day(2026, 3, 10)

	// 300 window appointments -> average 10; none on the day.
	var appointments []*model.Appointment
	for i := 0; i < 300; i++ {
		appointments = append(appointments, appointmentAt(day(2026, 3, 9).Add(-time.Duration(i%30)*24*time.Hour)))
	}

	got := Compute(appointments, target)
	assert.Equal(t, 0, got.DailyTotal)
	assert.Equal(t, 10.0, got.MovingAverage)
	assert.Equal(t, -100.0, got.PercentageVariation)
}

func TestComputeRoundsToTwoDecimals(t *testing.T) {
	target := day(2026, 3, 10)
	appointments := []*model.Appointment{
		appointmentAt(day(2026, 3, 9)),
		appointmentAt(day(2026, 3, 8)),
		appointmentAt(day(2026, 3, 10).Add(10 * time.Hour)),
	}

	got := Compute(appointments, target)
	// 2/30 = 0.0666... -> 0.07; (1-0.07)/0.07*100 = 1328.5714... -> 1328.57
	assert.Equal(t, 0.07, got.MovingAverage)
	assert.Equal(t, 1328.57, got.PercentageVariation)
}
