// Package gamification contains the XP ledger, per-user progression stats,
// and badge model. XP is append-only: stats are derived from the ledger and
// can always be recomputed from it.
package gamification

import (
	"errors"
	"fmt"
	"time"

	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// SourceType identifies what kind of action earned the XP.
type SourceType string

const (
	// SourceLesson - completing a lesson.
	SourceLesson SourceType = "lesson"
	// SourceAttempt - completing an exercise attempt.
	SourceAttempt SourceType = "attempt"
	// SourceCourse - completing a whole course.
	SourceCourse SourceType = "course"
	// SourceChallenge - claiming a challenge reward.
	SourceChallenge SourceType = "challenge"
	// SourceManual - manual adjustment by staff.
	SourceManual SourceType = "manual"
)

// IsValid checks if the source type is valid.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceLesson, SourceAttempt, SourceCourse, SourceChallenge, SourceManual:
		return true
	default:
		return false
	}
}

// AllowsRepeat reports whether the same source may earn XP more than once.
// Manual adjustments are the only repeatable source: everything else is
// deduplicated on (user, source type, source id).
func (s SourceType) AllowsRepeat() bool {
	return s == SourceManual
}

// ══════════════════════════════════════════════════════════════════════════════
// XP LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// LedgerEntry is a single XP award. Entries are never updated or deleted.
type LedgerEntry struct {
	// ID is the unique entry identifier (UUID).
	ID string

	// UserID is the student who earned the XP.
	UserID int64

	// Amount is the XP earned (always positive).
	Amount int

	// SourceType identifies the kind of action.
	SourceType SourceType

	// SourceID identifies the concrete action (lesson ID, attempt ID, ...).
	SourceID string

	// CreatedAt is when the XP was earned.
	CreatedAt time.Time
}

// Domain errors.
var (
	ErrInvalidAmount     = errors.New("xp amount must be positive")
	ErrInvalidSourceType = errors.New("invalid xp source type")
	ErrInvalidSourceID   = errors.New("xp source id is required")
)

// NewLedgerEntryParams holds parameters for a new ledger entry.
type NewLedgerEntryParams struct {
	ID         string
	UserID     int64
	Amount     int
	SourceType SourceType
	SourceID   string
}

// NewLedgerEntry creates a validated ledger entry.
func NewLedgerEntry(params NewLedgerEntryParams) (*LedgerEntry, error) {
	if params.ID == "" {
		return nil, errors.New("ledger entry id is required")
	}

	if params.UserID <= 0 {
		return nil, errors.New("user id must be positive")
	}

	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if !params.SourceType.IsValid() {
		return nil, ErrInvalidSourceType
	}

	if params.SourceID == "" {
		return nil, ErrInvalidSourceID
	}

	return &LedgerEntry{
		ID:         params.ID,
		UserID:     params.UserID,
		Amount:     params.Amount,
		SourceType: params.SourceType,
		SourceID:   params.SourceID,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER STATS
// ══════════════════════════════════════════════════════════════════════════════

// UserStats is the per-user progression snapshot derived from the ledger.
type UserStats struct {
	// UserID is the student.
	UserID int64

	// TotalXP is the sum of all ledger entries for the user.
	TotalXP int

	// Level is derived from TotalXP.
	Level int

	// LessonsCompleted counts lesson XP awards.
	LessonsCompleted int

	// AttemptsCompleted counts attempt XP awards.
	AttemptsCompleted int

	// CoursesCompleted counts course XP awards.
	CoursesCompleted int

	// ChallengesCompleted counts claimed challenge rewards.
	ChallengesCompleted int

	// UpdatedAt is when the stats were last recomputed.
	UpdatedAt time.Time
}

// NewUserStats returns zero stats for a user.
func NewUserStats(userID int64) *UserStats {
	return &UserStats{
		UserID:    userID,
		TotalXP:   0,
		Level:     1,
		UpdatedAt: time.Now().UTC(),
	}
}

// Apply folds a ledger entry into the stats and returns true when the
// award pushed the user to a new level.
func (s *UserStats) Apply(entry *LedgerEntry) (leveledUp bool) {
	oldLevel := s.Level

	s.TotalXP += entry.Amount
	s.Level = shared.XP(s.TotalXP).Level().Int()

	switch entry.SourceType {
	case SourceLesson:
		s.LessonsCompleted++
	case SourceAttempt:
		s.AttemptsCompleted++
	case SourceCourse:
		s.CoursesCompleted++
	case SourceChallenge:
		s.ChallengesCompleted++
	}

	s.UpdatedAt = time.Now().UTC()
	return s.Level > oldLevel
}

// ProgressToNextLevel returns percentage progress within the current level.
func (s *UserStats) ProgressToNextLevel() int {
	return shared.XP(s.TotalXP).ProgressToNextLevel()
}

// String returns a loggable representation.
func (s *UserStats) String() string {
	return fmt.Sprintf("UserStats{User: %d, XP: %d, Level: %d}", s.UserID, s.TotalXP, s.Level)
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// Badge is an earnable distinction, referenced by a stable code.
type Badge struct {
	// ID is the unique badge identifier (UUID).
	ID string

	// Code is the stable machine-readable code ("early-bird", "streak-7").
	Code string

	// Title is the display name.
	Title string

	// Description explains how the badge is earned.
	Description string

	// CreatedAt is when the badge was defined.
	CreatedAt time.Time
}

// UserBadge links a user to an earned badge.
type UserBadge struct {
	// UserID is the student.
	UserID int64

	// BadgeID is the earned badge.
	BadgeID string

	// AwardedAt is when the badge was earned.
	AwardedAt time.Time
}
