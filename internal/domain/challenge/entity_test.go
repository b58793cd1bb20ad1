package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestAssignment(t *testing.T) *Assignment {
	t.Helper()

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	a, err := dailyChallenge().Issue("as-1", 7, at)
	assert.NoError(t, err)
	return a
}

func TestNewChallenge_Validation(t *testing.T) {
	valid := NewChallengeParams{
		ID:        "ch-1",
		Kind:      KindDaily,
		Objective: ObjectiveCompleteLessons,
		Title:     "Daily grind",
		Target:    3,
		XPReward:  50,
	}

	ch, err := NewChallenge(valid)
	assert.NoError(t, err)
	assert.True(t, ch.Active)

	bad := valid
	bad.Kind = "monthly"
	_, err = NewChallenge(bad)
	assert.ErrorIs(t, err, ErrInvalidKind)

	bad = valid
	bad.Objective = "collect_stars"
	_, err = NewChallenge(bad)
	assert.ErrorIs(t, err, ErrInvalidObjective)

	bad = valid
	bad.Target = 0
	_, err = NewChallenge(bad)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestNewChallenge_SpecialRequiresWindow(t *testing.T) {
	params := NewChallengeParams{
		ID:        "ch-1",
		Kind:      KindSpecial,
		Objective: ObjectiveCompleteCourses,
		Target:    1,
	}

	_, err := NewChallenge(params)
	assert.ErrorIs(t, err, ErrSpecialWindowRequired)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour) // конец раньше начала
	params.StartsAt = &start
	params.EndsAt = &end
	_, err = NewChallenge(params)
	assert.ErrorIs(t, err, ErrSpecialWindowRequired)

	end = start.AddDate(0, 1, 0)
	params.EndsAt = &end
	_, err = NewChallenge(params)
	assert.NoError(t, err)
}

func TestAssignment_RecordProgress(t *testing.T) {
	a := newTestAssignment(t)
	now := a.IssuedAt.Add(time.Hour)

	// Свежие назначения выдаются в pending, первый прирост переводит их
	// в in_progress.
	assert.Equal(t, AssignmentPending, a.Status)

	completed, err := a.RecordProgress(1, now)
	assert.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 1, a.Progress)
	assert.Equal(t, AssignmentInProgress, a.Status)

	completed, err = a.RecordProgress(1, now)
	assert.NoError(t, err)
	assert.False(t, completed)

	// Третий урок доводит до цели и сразу завершает назначение.
	completed, err = a.RecordProgress(1, now)
	assert.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, AssignmentCompleted, a.Status)
	assert.NotNil(t, a.CompletedAt)
}

func TestAssignment_RecordProgress_ClampsToTarget(t *testing.T) {
	a := newTestAssignment(t)
	now := a.IssuedAt.Add(time.Hour)

	completed, err := a.RecordProgress(10, now)
	assert.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, a.Target, a.Progress)
}

func TestAssignment_RecordProgress_Validation(t *testing.T) {
	a := newTestAssignment(t)
	now := a.IssuedAt.Add(time.Hour)

	_, err := a.RecordProgress(0, now)
	assert.ErrorIs(t, err, ErrInvalidProgressDelta)

	_, err = a.RecordProgress(1, a.ExpiresAt)
	assert.ErrorIs(t, err, ErrAssignmentExpired)

	// После завершения прогресс копить нельзя.
	_, err = a.RecordProgress(3, now)
	assert.NoError(t, err)
	_, err = a.RecordProgress(1, now)
	assert.ErrorIs(t, err, ErrAssignmentNotInProgress)
}

func TestAssignment_Claim(t *testing.T) {
	a := newTestAssignment(t)
	now := a.IssuedAt.Add(time.Hour)

	// Незавершённое назначение забрать нельзя.
	assert.ErrorIs(t, a.Claim(now), ErrNotClaimable)

	_, err := a.RecordProgress(3, now)
	assert.NoError(t, err)

	assert.NoError(t, a.Claim(now))
	assert.Equal(t, AssignmentClaimed, a.Status)
	assert.NotNil(t, a.ClaimedAt)

	// Повторный Claim - защита от двойной награды.
	assert.ErrorIs(t, a.Claim(now), ErrNotClaimable)
}

func TestAssignment_Expire(t *testing.T) {
	a := newTestAssignment(t)

	// Окно ещё открыто.
	assert.Error(t, a.Expire(a.IssuedAt.Add(time.Hour)))
	assert.Equal(t, AssignmentPending, a.Status)

	// Истекает и pending-назначение, в котором прогресса не было.
	assert.NoError(t, a.Expire(a.ExpiresAt))
	assert.Equal(t, AssignmentExpired, a.Status)

	// Истекшее назначение второй раз не истекает.
	assert.ErrorIs(t, a.Expire(a.ExpiresAt), ErrAssignmentNotInProgress)
}

func TestAssignment_Expire_DoesNotTouchCompleted(t *testing.T) {
	a := newTestAssignment(t)

	_, err := a.RecordProgress(3, a.IssuedAt.Add(time.Hour))
	assert.NoError(t, err)

	assert.ErrorIs(t, a.Expire(a.ExpiresAt), ErrAssignmentNotInProgress)
	assert.Equal(t, AssignmentCompleted, a.Status)
}

func TestAssignmentStatus_IsClaimable(t *testing.T) {
	assert.True(t, AssignmentCompleted.IsClaimable())
	assert.False(t, AssignmentPending.IsClaimable())
	assert.False(t, AssignmentInProgress.IsClaimable())
	assert.False(t, AssignmentClaimed.IsClaimable())
	assert.False(t, AssignmentExpired.IsClaimable())
}

func TestAssignmentStatus_IsOpen(t *testing.T) {
	assert.True(t, AssignmentPending.IsOpen())
	assert.True(t, AssignmentInProgress.IsOpen())
	assert.False(t, AssignmentCompleted.IsOpen())
	assert.False(t, AssignmentClaimed.IsOpen())
	assert.False(t, AssignmentExpired.IsOpen())
}

func TestAssignment_CompletionSnapshot(t *testing.T) {
	a := newTestAssignment(t)
	now := a.IssuedAt.Add(time.Hour)

	_, err := a.RecordProgress(3, now)
	assert.NoError(t, err)
	assert.NoError(t, a.Claim(now))

	c := a.CompletionSnapshot("comp-1", 50)
	assert.Equal(t, "comp-1", c.ID)
	assert.Equal(t, a.ChallengeID, c.ChallengeID)
	assert.Equal(t, a.UserID, c.UserID)
	assert.Equal(t, 3, c.Progress)
	assert.Equal(t, 3, c.Target)
	assert.Equal(t, 50, c.XPEarned)
	assert.Equal(t, *a.ClaimedAt, c.ClaimedAt)
}

func TestAssignment_Clone(t *testing.T) {
	a := newTestAssignment(t)
	_, err := a.RecordProgress(3, a.IssuedAt.Add(time.Hour))
	assert.NoError(t, err)

	clone := a.Clone()
	clone.Progress = 0
	*clone.CompletedAt = time.Time{}

	assert.Equal(t, 3, a.Progress)
	assert.False(t, a.CompletedAt.IsZero())
}
