package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-lms/internal/domain/gamification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// fakeRunner executes the transaction body directly. The repositories
// below keep their state in memory, so an error from the body simply
// propagates without applying anything the caller checks afterwards.
type fakeRunner struct {
	calls int
}

func (r *fakeRunner) WithTx(_ context.Context, fn func(pgx.Tx) error) error {
	r.calls++
	return fn(nil)
}

type fakeLedger struct {
	entries map[gamification.DedupKey]*gamification.LedgerEntry
	err     error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[gamification.DedupKey]*gamification.LedgerEntry)}
}

func (f *fakeLedger) Insert(_ context.Context, entry *gamification.LedgerEntry) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := gamification.DedupKeyOf(entry)
	if !entry.SourceType.AllowsRepeat() {
		if _, exists := f.entries[key]; exists {
			return false, nil
		}
	}
	f.entries[key] = entry
	return true, nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID int64, limit int) ([]*gamification.LedgerEntry, error) {
	var out []*gamification.LedgerEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLedger) SumByUser(_ context.Context, userID int64) (int, error) {
	sum := 0
	for _, e := range f.entries {
		if e.UserID == userID {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedger) SumByUserSince(_ context.Context, userID int64, since time.Time) (int, error) {
	sum := 0
	for _, e := range f.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			sum += e.Amount
		}
	}
	return sum, nil
}

type fakeStats struct {
	byUser map[int64]*gamification.UserStats
}

func newFakeStats() *fakeStats {
	return &fakeStats{byUser: make(map[int64]*gamification.UserStats)}
}

func (f *fakeStats) Get(_ context.Context, userID int64) (*gamification.UserStats, error) {
	if s, ok := f.byUser[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return gamification.NewUserStats(userID), nil
}

func (f *fakeStats) Upsert(_ context.Context, stats *gamification.UserStats) error {
	copied := *stats
	f.byUser[stats.UserID] = &copied
	return nil
}

func (f *fakeStats) ListAll(_ context.Context) ([]*gamification.UserStats, error) {
	out := make([]*gamification.UserStats, 0, len(f.byUser))
	for _, s := range f.byUser {
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalXP != out[j].TotalXP {
			return out[i].TotalXP > out[j].TotalXP
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

type fakeBadges struct {
	granted map[int64][]string
}

func newFakeBadges() *fakeBadges {
	return &fakeBadges{granted: make(map[int64][]string)}
}

func (f *fakeBadges) GetOrCreateByCode(_ context.Context, code, title, description string) (*gamification.Badge, error) {
	return &gamification.Badge{ID: code, Code: code, Title: title, Description: description}, nil
}

func (f *fakeBadges) Award(_ context.Context, userID int64, badgeID string) error {
	for _, id := range f.granted[userID] {
		if id == badgeID {
			return nil
		}
	}
	f.granted[userID] = append(f.granted[userID], badgeID)
	return nil
}

func (f *fakeBadges) ListByUser(_ context.Context, userID int64) ([]*gamification.Badge, error) {
	var out []*gamification.Badge
	for _, id := range f.granted[userID] {
		out = append(out, &gamification.Badge{ID: id, Code: id})
	}
	return out, nil
}

func (f *fakeBadges) HasBadge(_ context.Context, userID int64, code string) (bool, error) {
	for _, id := range f.granted[userID] {
		if id == code {
			return true, nil
		}
	}
	return false, nil
}

// fakeBus records published events.
type fakeBus struct {
	published []shared.Event
}

func (b *fakeBus) Publish(event shared.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeBus) Subscribe(_ shared.EventType, _ shared.EventHandler) error { return nil }

func (b *fakeBus) SubscribeAll(_ shared.EventHandler) error { return nil }

type progressionFixture struct {
	runner *fakeRunner
	ledger *fakeLedger
	stats  *fakeStats
	badges *fakeBadges
	bus    *fakeBus
	svc    *ProgressionService
}

func newProgressionFixture() *progressionFixture {
	f := &progressionFixture{
		runner: &fakeRunner{},
		ledger: newFakeLedger(),
		stats:  newFakeStats(),
		badges: newFakeBadges(),
		bus:    &fakeBus{},
	}
	repos := AwardRepos{Ledger: f.ledger, Stats: f.stats, Badges: f.badges}
	f.svc = NewProgressionServiceWith(
		f.runner,
		func(pgx.Tx) AwardRepos { return repos },
		nil,
		f.bus,
		nil,
	)
	return f
}

func TestAwardXP_CreditsLedgerAndStats(t *testing.T) {
	f := newProgressionFixture()

	outcome, err := f.svc.AwardXP(context.Background(), AwardParams{
		UserID:     7,
		Amount:     60,
		SourceType: gamification.SourceLesson,
		SourceID:   "lesson-1",
	})
	assert.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, 60, outcome.Amount)
	assert.Equal(t, 60, outcome.NewTotal)
	assert.False(t, outcome.LeveledUp())

	stats, _ := f.stats.Get(context.Background(), 7)
	assert.Equal(t, 60, stats.TotalXP)
	assert.Len(t, f.ledger.entries, 1)
	assert.Equal(t, 1, f.runner.calls)
}

func TestAwardXP_DuplicateIsNoOp(t *testing.T) {
	f := newProgressionFixture()
	params := AwardParams{
		UserID:     7,
		Amount:     50,
		SourceType: gamification.SourceLesson,
		SourceID:   "lesson-1",
	}

	first, err := f.svc.AwardXP(context.Background(), params)
	assert.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := f.svc.AwardXP(context.Background(), params)
	assert.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 0, second.Amount)
	assert.Equal(t, 50, second.NewTotal)

	// Stats were not folded twice.
	stats, _ := f.stats.Get(context.Background(), 7)
	assert.Equal(t, 50, stats.TotalXP)
	assert.Len(t, f.ledger.entries, 1)
}

func TestAwardXP_LevelUpPublishesEvent(t *testing.T) {
	f := newProgressionFixture()

	_, err := f.svc.AwardXP(context.Background(), AwardParams{
		UserID: 7, Amount: 60, SourceType: gamification.SourceLesson, SourceID: "lesson-1",
	})
	assert.NoError(t, err)

	// The second award crosses the first level threshold (100 XP).
	outcome, err := f.svc.AwardXP(context.Background(), AwardParams{
		UserID: 7, Amount: 50, SourceType: gamification.SourceLesson, SourceID: "lesson-2",
	})
	assert.NoError(t, err)
	assert.Equal(t, 110, outcome.NewTotal)
	assert.True(t, outcome.LeveledUp())
	assert.Equal(t, 2, outcome.NewLevel)

	var types []shared.EventType
	for _, e := range f.bus.published {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, shared.EventLevelUp)
}

func TestAwardXP_ZeroAmountGrantsBadgeOnly(t *testing.T) {
	f := newProgressionFixture()

	outcome, err := f.svc.AwardXP(context.Background(), AwardParams{
		UserID:     7,
		Amount:     0,
		SourceType: gamification.SourceChallenge,
		SourceID:   "assignment-1",
		BadgeCode:  "early-bird",
		BadgeTitle: "Ранняя пташка",
	})
	assert.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, 0, outcome.Amount)
	assert.False(t, outcome.LeveledUp())

	// The badge is granted while the ledger and stats stay untouched.
	has, _ := f.badges.HasBadge(context.Background(), 7, "early-bird")
	assert.True(t, has)
	assert.Empty(t, f.ledger.entries)
	assert.Empty(t, f.stats.byUser)
	assert.Empty(t, f.bus.published)
}

func TestAwardXP_GrantsBadgeWithXP(t *testing.T) {
	f := newProgressionFixture()

	_, err := f.svc.AwardXP(context.Background(), AwardParams{
		UserID:     7,
		Amount:     30,
		SourceType: gamification.SourceChallenge,
		SourceID:   "assignment-1",
		BadgeCode:  "streak-7",
		BadgeTitle: "Неделя подряд",
	})
	assert.NoError(t, err)

	has, _ := f.badges.HasBadge(context.Background(), 7, "streak-7")
	assert.True(t, has)
}

func TestAwardXPWithin_PrepareErrorAborts(t *testing.T) {
	f := newProgressionFixture()
	boom := errors.New("assignment is gone")

	_, err := f.svc.AwardXPWithin(context.Background(), func(pgx.Tx) (AwardParams, error) {
		return AwardParams{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.ledger.entries)
	assert.Empty(t, f.stats.byUser)
	assert.Empty(t, f.bus.published)
}

func TestAwardXP_LedgerErrorFailsAward(t *testing.T) {
	f := newProgressionFixture()
	f.ledger.err = errors.New("connection reset")

	_, err := f.svc.AwardXP(context.Background(), AwardParams{
		UserID: 7, Amount: 10, SourceType: gamification.SourceLesson, SourceID: "lesson-1",
	})
	assert.Error(t, err)
	assert.Empty(t, f.stats.byUser)
	assert.Empty(t, f.bus.published)
}
