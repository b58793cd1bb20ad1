// Package timeutil provides time helpers for the learning platform.
// All progression windows (daily and weekly challenges, leaderboard
// rebuild points) are computed in UTC so that window keys are stable
// regardless of where a worker instance runs.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// StartOfWeek returns the start of the ISO week (Monday 00:00:00) in UTC.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	weekday := int(u.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(u.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the ISO week (Sunday 23:59:59) in UTC.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// ══════════════════════════════════════════════════════════════════════════════
// Window Keys
// Window keys identify recurring challenge windows. Issuing an assignment
// is idempotent per (challenge, user, window key), so the key format must
// be stable: a given instant always maps to the same key.
// ══════════════════════════════════════════════════════════════════════════════

// DayKey returns the daily window key for a time (YYYY-MM-DD, UTC).
func DayKey(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ISOWeekKey returns the weekly window key for a time (YYYY-Www, ISO 8601).
// Note that the ISO year can differ from the calendar year at year
// boundaries, e.g. 2024-12-30 falls in 2025-W01.
func ISOWeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// DayWindow returns the [start, end] bounds of the daily window containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	return StartOfDay(t), EndOfDay(t)
}

// WeekWindow returns the [start, end] bounds of the ISO week containing t.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	return StartOfWeek(t), EndOfWeek(t)
}

// ══════════════════════════════════════════════════════════════════════════════
// Scheduling helpers
// ══════════════════════════════════════════════════════════════════════════════

// NextDailyAt returns the next occurrence of hour:minute (UTC) strictly
// after t.
func NextDailyAt(t time.Time, hour, minute int) time.Time {
	u := t.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(u) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeeklyOn returns the next occurrence of the given weekday at
// hour:minute (UTC) strictly after t.
func NextWeeklyOn(t time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := NextDailyAt(t, hour, minute)
	for next.Weekday() != weekday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ══════════════════════════════════════════════════════════════════════════════
// Comparison helpers
// ══════════════════════════════════════════════════════════════════════════════

// IsSameDay checks if two times are on the same UTC day.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}

// IsSameWeek checks if two times are in the same ISO week.
func IsSameWeek(t1, t2 time.Time) bool {
	return ISOWeekKey(t1) == ISOWeekKey(t2)
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	duration := a2.Sub(a1)
	days := int(duration.Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	now := Now()
	duration := now.Sub(t.UTC())

	if duration < 0 {
		return formatFutureDuration(-duration)
	}
	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %dd", days)
	}
}
