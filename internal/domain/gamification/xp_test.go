package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP_Thresholds(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(209))
	assert.Equal(t, 3, LevelForXP(210))
	assert.Equal(t, 3, LevelForXP(330))
	assert.Equal(t, 4, LevelForXP(331))
}

func TestLevelForXP_NegativeClampsToOne(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(-50))
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 1; xp <= 5000; xp++ {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "level dropped at xp=%d", xp)
		prev = level
	}
}

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 0, XPForLevel(1))
	assert.Equal(t, 100, XPForLevel(2))
	assert.Equal(t, 210, XPForLevel(3))
	assert.Equal(t, 331, XPForLevel(4))
}

func TestXPForLevel_RoundTrip(t *testing.T) {
	// The threshold of every level must map back to that level, and one XP
	// below it must map to the previous level.
	for level := 2; level <= 20; level++ {
		threshold := XPForLevel(level)
		assert.Equal(t, level, LevelForXP(threshold))
		assert.Equal(t, level-1, LevelForXP(threshold-1))
	}
}

func TestAwardOutcome_LeveledUp(t *testing.T) {
	assert.True(t, AwardOutcome{OldLevel: 1, NewLevel: 2}.LeveledUp())
	assert.False(t, AwardOutcome{OldLevel: 3, NewLevel: 3}.LeveledUp())
}

func TestNewLedgerEntry_Validation(t *testing.T) {
	valid := NewLedgerEntryParams{
		ID:         "e1",
		UserID:     7,
		Amount:     10,
		SourceType: SourceLesson,
		SourceID:   "lesson-1",
	}

	entry, err := NewLedgerEntry(valid)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), entry.UserID)
	assert.Equal(t, 10, entry.Amount)

	bad := valid
	bad.Amount = 0
	_, err = NewLedgerEntry(bad)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	bad = valid
	bad.SourceType = "unknown"
	_, err = NewLedgerEntry(bad)
	assert.ErrorIs(t, err, ErrInvalidSourceType)

	bad = valid
	bad.SourceID = ""
	_, err = NewLedgerEntry(bad)
	assert.ErrorIs(t, err, ErrInvalidSourceID)
}

func TestSourceType_AllowsRepeat(t *testing.T) {
	assert.True(t, SourceManual.AllowsRepeat())
	assert.False(t, SourceLesson.AllowsRepeat())
	assert.False(t, SourceChallenge.AllowsRepeat())
}

func TestUserStats_Apply(t *testing.T) {
	stats := NewUserStats(42)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 0, stats.TotalXP)

	entry := &LedgerEntry{UserID: 42, Amount: 60, SourceType: SourceLesson, SourceID: "l1"}
	leveledUp := stats.Apply(entry)
	assert.False(t, leveledUp)
	assert.Equal(t, 60, stats.TotalXP)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 1, stats.LessonsCompleted)

	// 60 + 50 = 110 crosses the level 2 threshold at 100.
	entry = &LedgerEntry{UserID: 42, Amount: 50, SourceType: SourceCourse, SourceID: "c1"}
	leveledUp = stats.Apply(entry)
	assert.True(t, leveledUp)
	assert.Equal(t, 110, stats.TotalXP)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, 1, stats.CoursesCompleted)
}

func TestDedupKeyOf(t *testing.T) {
	entry := &LedgerEntry{UserID: 5, SourceType: SourceAttempt, SourceID: "a-9"}
	key := DedupKeyOf(entry)
	assert.Equal(t, DedupKey{UserID: 5, SourceType: SourceAttempt, SourceID: "a-9"}, key)
}
