package gamification

import (
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVELING
// Advancing from level L to L+1 costs floor(100 * 1.1^(L-1)) XP.
// The thresholds are cumulative: level 2 opens at 100 total XP,
// level 3 at 210, level 4 at 331.
// ══════════════════════════════════════════════════════════════════════════════

// LevelForXP returns the level for a total XP amount.
func LevelForXP(totalXP int) int {
	return shared.XP(totalXP).Level().Int()
}

// XPForLevel returns the total XP required to reach a level.
func XPForLevel(level int) int {
	return shared.Level(level).RequiredXP()
}

// ══════════════════════════════════════════════════════════════════════════════
// AWARD
// ══════════════════════════════════════════════════════════════════════════════

// AwardOutcome describes the result of applying an XP award.
type AwardOutcome struct {
	// Duplicate is true when the award was a no-op because the same
	// (user, source type, source id) was already credited.
	Duplicate bool

	// Amount is the XP credited (0 for a duplicate).
	Amount int

	// NewTotal is the user's total XP after the award.
	NewTotal int

	// OldLevel is the level before the award.
	OldLevel int

	// NewLevel is the level after the award.
	NewLevel int
}

// LeveledUp reports whether the award crossed a level threshold.
func (o AwardOutcome) LeveledUp() bool {
	return o.NewLevel > o.OldLevel
}

// DedupKey identifies an XP award for deduplication purposes.
type DedupKey struct {
	UserID     int64
	SourceType SourceType
	SourceID   string
}

// DedupKeyOf builds the deduplication key for a ledger entry.
func DedupKeyOf(entry *LedgerEntry) DedupKey {
	return DedupKey{
		UserID:     entry.UserID,
		SourceType: entry.SourceType,
		SourceID:   entry.SourceID,
	}
}
