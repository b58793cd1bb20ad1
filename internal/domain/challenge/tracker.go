package challenge

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// WINDOW RESOLUTION
// Окно определяет, когда действует назначение и каким ключом оно
// идентифицируется. Ключ окна детерминирован: один и тот же момент
// времени всегда даёт один и тот же ключ.
// ══════════════════════════════════════════════════════════════════════════════

// WindowKeyAt возвращает ключ окна челленджа для указанного момента:
//
//   - daily:   "2026-01-15" (UTC-дата);
//   - weekly:  "2026-W03" (ISO-неделя);
//   - special: ID челленджа (окно одно на весь период действия).
func (c *Challenge) WindowKeyAt(at time.Time) string {
	u := at.UTC()
	switch c.Kind {
	case KindDaily:
		return u.Format("2006-01-02")
	case KindWeekly:
		year, week := u.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return c.ID
	}
}

// WindowExpiryAt возвращает момент закрытия окна, содержащего at.
func (c *Challenge) WindowExpiryAt(at time.Time) time.Time {
	u := at.UTC()
	switch c.Kind {
	case KindDaily:
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	case KindWeekly:
		weekday := int(u.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
		return monday.AddDate(0, 0, 7)
	default:
		if c.EndsAt != nil {
			return *c.EndsAt
		}
		return u
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSIGNMENT ISSUANCE
// ══════════════════════════════════════════════════════════════════════════════

// Issue создаёт назначение челленджа студенту в окне, содержащем at.
// Уникальность пары (challenge, user, window) обеспечивает хранилище:
// повторная выдача в том же окне должна быть no-op.
func (c *Challenge) Issue(id string, userID int64, at time.Time) (*Assignment, error) {
	if id == "" {
		return nil, fmt.Errorf("assignment id is required")
	}

	if userID <= 0 {
		return nil, fmt.Errorf("user id must be positive")
	}

	if !c.IsOpenAt(at) {
		return nil, fmt.Errorf("challenge %s is not open at %s", c.ID, at.UTC().Format(time.RFC3339))
	}

	return &Assignment{
		ID:          id,
		ChallengeID: c.ID,
		UserID:      userID,
		WindowKey:   c.WindowKeyAt(at),
		Status:      AssignmentPending,
		Progress:    0,
		Target:      c.Target,
		IssuedAt:    at.UTC(),
		ExpiresAt:   c.WindowExpiryAt(at),
	}, nil
}

// MatchesObjective возвращает true, если событие данного типа
// засчитывается в прогресс челленджа.
func (c *Challenge) MatchesObjective(objective Objective) bool {
	return c.Objective == objective
}
