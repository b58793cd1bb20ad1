package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dailyChallenge() *Challenge {
	return &Challenge{
		ID:        "ch-daily",
		Kind:      KindDaily,
		Objective: ObjectiveCompleteLessons,
		Title:     "Three lessons a day",
		Target:    3,
		XPReward:  50,
		Active:    true,
	}
}

func weeklyChallenge() *Challenge {
	return &Challenge{
		ID:        "ch-weekly",
		Kind:      KindWeekly,
		Objective: ObjectiveCompleteExercises,
		Title:     "Weekly grind",
		Target:    10,
		XPReward:  200,
		Active:    true,
	}
}

func specialChallenge(start, end time.Time) *Challenge {
	return &Challenge{
		ID:        "ch-special",
		Kind:      KindSpecial,
		Objective: ObjectiveCompleteCourses,
		Title:     "Marathon",
		Target:    1,
		XPReward:  500,
		Active:    true,
		StartsAt:  &start,
		EndsAt:    &end,
	}
}

func TestWindowKeyAt_Daily(t *testing.T) {
	at := time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-08-30", dailyChallenge().WindowKeyAt(at))

	// Время внутри суток на ключ не влияет.
	midnight := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-30", dailyChallenge().WindowKeyAt(midnight))
}

func TestWindowKeyAt_Weekly(t *testing.T) {
	ch := weeklyChallenge()

	// 2026-01-15 - четверг третьей ISO-недели 2026 года.
	assert.Equal(t, "2026-W03", ch.WindowKeyAt(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)))

	// 2027-01-01 - пятница, по ISO-календарю ещё 53-я неделя 2026 года.
	assert.Equal(t, "2026-W53", ch.WindowKeyAt(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWindowKeyAt_Special(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	ch := specialChallenge(start, end)
	assert.Equal(t, "ch-special", ch.WindowKeyAt(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)))
}

func TestWindowExpiryAt_Daily(t *testing.T) {
	at := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	expiry := dailyChallenge().WindowExpiryAt(at)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), expiry)
}

func TestWindowExpiryAt_Weekly(t *testing.T) {
	// 2026-08-30 - воскресенье; окно закрывается в понедельник 2026-08-31.
	sunday := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), weeklyChallenge().WindowExpiryAt(sunday))

	// Среда той же недели даёт тот же момент закрытия.
	wednesday := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), weeklyChallenge().WindowExpiryAt(wednesday))
}

func TestWindowExpiryAt_Special(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	ch := specialChallenge(start, end)
	assert.Equal(t, end, ch.WindowExpiryAt(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)))
}

func TestIssue(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	a, err := dailyChallenge().Issue("as-1", 7, at)
	assert.NoError(t, err)
	assert.Equal(t, "ch-daily", a.ChallengeID)
	assert.Equal(t, int64(7), a.UserID)
	assert.Equal(t, "2026-08-30", a.WindowKey)
	assert.Equal(t, AssignmentPending, a.Status)
	assert.Equal(t, 0, a.Progress)
	assert.Equal(t, 3, a.Target)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), a.ExpiresAt)
}

func TestIssue_Validation(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	_, err := dailyChallenge().Issue("", 7, at)
	assert.Error(t, err)

	_, err = dailyChallenge().Issue("as-1", 0, at)
	assert.Error(t, err)

	inactive := dailyChallenge()
	inactive.Active = false
	_, err = inactive.Issue("as-1", 7, at)
	assert.Error(t, err)
}

func TestIssue_SpecialOutsideWindow(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ch := specialChallenge(start, end)

	_, err := ch.Issue("as-1", 7, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)

	a, err := ch.Issue("as-1", 7, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, end, a.ExpiresAt)
}

func TestIsOpenAt(t *testing.T) {
	at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	assert.True(t, dailyChallenge().IsOpenAt(at))

	inactive := dailyChallenge()
	inactive.Deactivate()
	assert.False(t, inactive.IsOpenAt(at))

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	special := specialChallenge(start, end)
	assert.True(t, special.IsOpenAt(start))
	assert.False(t, special.IsOpenAt(end)) // конец окна не включается
	assert.False(t, special.IsOpenAt(start.Add(-time.Second)))
}

func TestMatchesObjective(t *testing.T) {
	ch := dailyChallenge()
	assert.True(t, ch.MatchesObjective(ObjectiveCompleteLessons))
	assert.False(t, ch.MatchesObjective(ObjectiveCompleteExercises))
}

func TestKind_IsRecurring(t *testing.T) {
	assert.True(t, KindDaily.IsRecurring())
	assert.True(t, KindWeekly.IsRecurring())
	assert.False(t, KindSpecial.IsRecurring())
}
