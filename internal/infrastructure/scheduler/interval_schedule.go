package scheduler

import (
	"fmt"
	"time"
)

// minInterval keeps misconfigured sweeps from spinning the scheduler.
const minInterval = time.Second

// IntervalSchedule runs a job at a fixed interval. Used for the
// assignment expiry sweep and the periodic leaderboard rebuild, where
// the exact wall-clock moment does not matter.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a schedule firing every interval.
// Intervals below one second are raised to one second.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < minInterval {
		interval = minInterval
	}
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the next scheduled time strictly after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
