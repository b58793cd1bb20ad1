package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	at := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2026-08-30", DayKey(at))

	// Non-UTC input is normalized before formatting.
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 8, 31, 2, 0, 0, 0, loc) // 21:00 UTC the day before
	assert.Equal(t, "2026-08-30", DayKey(local))
}

func TestISOWeekKey(t *testing.T) {
	assert.Equal(t, "2026-W03", ISOWeekKey(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))

	// The ISO year differs from the calendar year at the boundary:
	// 2024-12-30 is a Monday of week 1 of 2025.
	assert.Equal(t, "2025-W01", ISOWeekKey(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))

	// And 2027-01-01 still belongs to week 53 of 2026.
	assert.Equal(t, "2026-W53", ISOWeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStartAndEndOfDay(t *testing.T) {
	at := time.Date(2026, 8, 30, 15, 30, 45, 123, time.UTC)

	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), StartOfDay(at))
	assert.Equal(t, time.Date(2026, 8, 30, 23, 59, 59, 999999999, time.UTC), EndOfDay(at))
}

func TestStartOfWeek(t *testing.T) {
	// 2026-08-30 is a Sunday; the ISO week starts the previous Monday.
	sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(monday))
}

func TestWeekWindow(t *testing.T) {
	wednesday := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	start, end := WeekWindow(wednesday)

	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 30, 23, 59, 59, 999999999, time.UTC), end)
}

func TestNextDailyAt(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// Today's slot has not happened yet.
	next := NextDailyAt(at, 15, 30)
	assert.Equal(t, time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC), next)

	// Today's slot already passed; schedule tomorrow.
	next = NextDailyAt(at, 0, 5)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 5, 0, 0, time.UTC), next)

	// Exactly at the slot: strictly after means tomorrow.
	exact := time.Date(2026, 8, 30, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 5, 0, 0, time.UTC), NextDailyAt(exact, 0, 5))
}

func TestNextWeeklyOn(t *testing.T) {
	// Sunday noon; next Monday 00:10 is the following day.
	sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	next := NextWeeklyOn(sunday, time.Monday, 0, 10)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 10, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.Weekday())

	// Monday before the slot stays on the same day.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 10, 0, 0, time.UTC), NextWeeklyOn(monday, time.Monday, 0, 10))

	// Monday after the slot waits a full week.
	late := time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 10, 0, 0, time.UTC), NextWeeklyOn(late, time.Monday, 0, 10))
}

func TestIsSameDay(t *testing.T) {
	a := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(b, c))
}

func TestIsSameWeek(t *testing.T) {
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	nextMonday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsSameWeek(monday, sunday))
	assert.False(t, IsSameWeek(sunday, nextMonday))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 9, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, 3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
