package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailySchedule_Next(t *testing.T) {
	s := NewDailySchedule(0, 5)

	// Before the slot: fires later the same day.
	at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 5, 0, 0, time.UTC), s.Next(at))

	// At or after the slot: fires tomorrow.
	assert.Equal(t, time.Date(2026, 8, 31, 0, 5, 0, 0, time.UTC), s.Next(s.Next(at)))
}

func TestWeeklySchedule_Next(t *testing.T) {
	s := NewWeeklySchedule(time.Monday, 0, 10)

	// 2026-08-30 is a Sunday; the next Monday slot is the following day.
	sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	next := s.Next(sunday)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 10, 0, 0, time.UTC), next)

	// From the slot itself the schedule skips a full week.
	assert.Equal(t, time.Date(2026, 9, 7, 0, 10, 0, 0, time.UTC), s.Next(next))
}

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(10 * time.Minute)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(10*time.Minute), s.Next(at))

	// Sub-second intervals are clamped.
	assert.Equal(t, time.Second, NewIntervalSchedule(0).Interval)
}

func TestScheduleString(t *testing.T) {
	assert.Equal(t, "@daily 00:05 UTC", NewDailySchedule(0, 5).String())
	assert.Equal(t, "@weekly Monday 00:10 UTC", NewWeeklySchedule(time.Monday, 0, 10).String())
}
