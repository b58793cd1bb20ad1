package scheduler

import (
	"fmt"
	"time"

	"github.com/campus-hub/campus-lms/pkg/timeutil"
)

// DailySchedule runs a job once a day at a fixed UTC time.
// Used to issue daily challenges right after the window rolls over.
type DailySchedule struct {
	Hour   int
	Minute int
}

// NewDailySchedule creates a schedule firing daily at hour:minute UTC.
func NewDailySchedule(hour, minute int) *DailySchedule {
	return &DailySchedule{Hour: hour, Minute: minute}
}

// Next returns the next scheduled time strictly after t.
func (s *DailySchedule) Next(t time.Time) time.Time {
	return timeutil.NextDailyAt(t, s.Hour, s.Minute)
}

// String returns the string representation of the schedule.
func (s *DailySchedule) String() string {
	return fmt.Sprintf("@daily %02d:%02d UTC", s.Hour, s.Minute)
}

// WeeklySchedule runs a job once a week on a fixed weekday at a fixed
// UTC time.
type WeeklySchedule struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// NewWeeklySchedule creates a schedule firing weekly on the given day.
func NewWeeklySchedule(weekday time.Weekday, hour, minute int) *WeeklySchedule {
	return &WeeklySchedule{Weekday: weekday, Hour: hour, Minute: minute}
}

// Next returns the next scheduled time strictly after t.
func (s *WeeklySchedule) Next(t time.Time) time.Time {
	return timeutil.NextWeeklyOn(t, s.Weekday, s.Hour, s.Minute)
}

// String returns the string representation of the schedule.
func (s *WeeklySchedule) String() string {
	return fmt.Sprintf("@weekly %s %02d:%02d UTC", s.Weekday, s.Hour, s.Minute)
}
