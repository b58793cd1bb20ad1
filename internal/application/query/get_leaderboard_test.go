package query

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// fakeRepo - таблица проекции в памяти.
type fakeRepo struct {
	entries []*leaderboard.Entry
}

func (r *fakeRepo) Replace(_ context.Context, entries []*leaderboard.Entry) error {
	r.entries = entries
	return nil
}

func (r *fakeRepo) Top(_ context.Context, n int) ([]*leaderboard.Entry, error) {
	if n > len(r.entries) {
		n = len(r.entries)
	}
	return r.entries[:n], nil
}

func (r *fakeRepo) Page(_ context.Context, offset, limit int) ([]*leaderboard.Entry, error) {
	if offset >= len(r.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.entries) {
		end = len(r.entries)
	}
	return r.entries[offset:end], nil
}

func (r *fakeRepo) GetByUser(_ context.Context, userID int64) (*leaderboard.Entry, error) {
	for _, e := range r.entries {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, leaderboard.ErrUserNotRanked
}

func (r *fakeRepo) Neighbors(_ context.Context, userID int64, k int) ([]*leaderboard.Entry, error) {
	entry, err := r.GetByUser(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	from := entry.Rank - 1 - k
	if from < 0 {
		from = 0
	}
	return r.Page(context.Background(), from, 2*k+1)
}

func (r *fakeRepo) Count(_ context.Context) (int, error) {
	return len(r.entries), nil
}

// fakeCache - кеш, фиксирующий обращения.
type fakeCache struct {
	entries []*leaderboard.Entry
	err     error
	hits    int
}

func (c *fakeCache) SetRanking(_ context.Context, entries []*leaderboard.Entry, _ time.Duration) error {
	c.entries = entries
	return nil
}

func (c *fakeCache) GetTop(_ context.Context, n int) ([]*leaderboard.Entry, error) {
	c.hits++
	if c.err != nil {
		return nil, c.err
	}
	if n > len(c.entries) {
		n = len(c.entries)
	}
	return c.entries[:n], nil
}

func (c *fakeCache) GetRange(_ context.Context, fromRank, toRank int) ([]*leaderboard.Entry, error) {
	c.hits++
	if c.err != nil {
		return nil, c.err
	}
	var out []*leaderboard.Entry
	for _, e := range c.entries {
		if e.Rank >= fromRank && e.Rank <= toRank {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *fakeCache) GetByUser(_ context.Context, userID int64) (*leaderboard.Entry, error) {
	c.hits++
	if c.err != nil {
		return nil, c.err
	}
	for _, e := range c.entries {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, leaderboard.ErrUserNotRanked
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.entries = nil
	return nil
}

// fakeRanker вычисляет ранг из статистики XP в памяти при каждом
// вызове: изменение статистики сразу видно в следующем запросе.
type fakeRanker struct {
	xp map[int64]int
}

func (f *fakeRanker) ranked() []*leaderboard.Entry {
	out := make([]*leaderboard.Entry, 0, len(f.xp))
	for userID, xp := range f.xp {
		out = append(out, &leaderboard.Entry{UserID: userID, TotalXP: xp, Level: 1})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalXP != out[j].TotalXP {
			return out[i].TotalXP > out[j].TotalXP
		}
		return out[i].UserID < out[j].UserID
	})
	for i, e := range out {
		e.Rank = i + 1
	}
	return out
}

func (f *fakeRanker) RankOf(_ context.Context, userID int64) (*leaderboard.Entry, error) {
	for _, e := range f.ranked() {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, leaderboard.ErrUserNotRanked
}

func (f *fakeRanker) Around(ctx context.Context, userID int64, span int) ([]*leaderboard.Entry, error) {
	self, err := f.RankOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	all := f.ranked()
	from := self.Rank - span
	if from < 1 {
		from = 1
	}
	to := self.Rank + span
	if to > len(all) {
		to = len(all)
	}
	return all[from-1 : to], nil
}

func (f *fakeRanker) Count(_ context.Context) (int, error) {
	return len(f.xp), nil
}

func rankedEntries(n int) []*leaderboard.Entry {
	entries := make([]*leaderboard.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = &leaderboard.Entry{
			Rank:    i + 1,
			UserID:  int64(i + 1),
			TotalXP: (n - i) * 100,
			Level:   1,
		}
	}
	return entries
}

func TestGetLeaderboard_FromCache(t *testing.T) {
	repo := &fakeRepo{entries: rankedEntries(5)}
	cache := &fakeCache{entries: rankedEntries(5)}
	h := NewGetLeaderboardHandler(repo, cache)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{PageSize: 3})
	assert.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Len(t, result.Entries, 3)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, 5, result.TotalCount)
	assert.True(t, result.HasMore)
	assert.Equal(t, 1, cache.hits)
}

func TestGetLeaderboard_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := &fakeRepo{entries: rankedEntries(2)}
	cache := &fakeCache{err: errors.New("redis down")}
	h := NewGetLeaderboardHandler(repo, cache)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{PageSize: 20})
	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 2)
	assert.False(t, result.HasMore)
}

func TestGetLeaderboard_NoCacheConfigured(t *testing.T) {
	repo := &fakeRepo{entries: rankedEntries(1)}
	h := NewGetLeaderboardHandler(repo, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 1)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PageSize) // размер по умолчанию
}

func TestGetLeaderboard_Pagination(t *testing.T) {
	repo := &fakeRepo{entries: rankedEntries(25)}
	h := NewGetLeaderboardHandler(repo, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Page: 2, PageSize: 10})
	assert.NoError(t, err)
	assert.Len(t, result.Entries, 10)
	assert.Equal(t, 11, result.Entries[0].Rank)
	assert.Equal(t, 2, result.Page)
	assert.True(t, result.HasMore)
}

func TestGetLeaderboard_Medals(t *testing.T) {
	repo := &fakeRepo{entries: rankedEntries(4)}
	h := NewGetLeaderboardHandler(repo, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	assert.NoError(t, err)
	assert.Equal(t, "🥇", result.Entries[0].Medal)
	assert.Equal(t, "🥈", result.Entries[1].Medal)
	assert.Equal(t, "🥉", result.Entries[2].Medal)
	assert.Empty(t, result.Entries[3].Medal)
}

func TestGetLeaderboard_ValidationErrors(t *testing.T) {
	h := NewGetLeaderboardHandler(&fakeRepo{}, nil)

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{Page: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), GetLeaderboardQuery{PageSize: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetStudentRank_Ranked(t *testing.T) {
	ranker := &fakeRanker{xp: map[int64]int{1: 300, 2: 200, 3: 100}}
	h := NewGetStudentRankHandler(ranker)

	result, err := h.Handle(context.Background(), GetStudentRankQuery{UserID: 2})
	assert.NoError(t, err)
	assert.True(t, result.Ranked)
	assert.Equal(t, 2, result.Rank)
	assert.True(t, result.TopTen)
	assert.Equal(t, 200, result.TotalXP)
	assert.Equal(t, 3, result.TotalCount)
}

func TestGetStudentRank_UnrankedIsNotAnError(t *testing.T) {
	ranker := &fakeRanker{xp: map[int64]int{1: 300}}
	h := NewGetStudentRankHandler(ranker)

	result, err := h.Handle(context.Background(), GetStudentRankQuery{UserID: 99})
	assert.NoError(t, err)
	assert.False(t, result.Ranked)
	assert.Equal(t, 0, result.Rank)
}

func TestGetStudentRank_SeesFreshStats(t *testing.T) {
	// Ранг вычисляется из статистики при каждом запросе: после
	// начисления XP новая позиция видна без пересборки проекции.
	ranker := &fakeRanker{xp: map[int64]int{1: 300, 2: 200}}
	h := NewGetStudentRankHandler(ranker)

	result, err := h.Handle(context.Background(), GetStudentRankQuery{UserID: 2})
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Rank)

	ranker.xp[2] = 500

	result, err = h.Handle(context.Background(), GetStudentRankQuery{UserID: 2})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Rank)
}

func TestGetStudentRank_TieBreaksByUserID(t *testing.T) {
	ranker := &fakeRanker{xp: map[int64]int{5: 100, 7: 100}}
	h := NewGetStudentRankHandler(ranker)

	first, err := h.Handle(context.Background(), GetStudentRankQuery{UserID: 5})
	assert.NoError(t, err)
	second, err2 := h.Handle(context.Background(), GetStudentRankQuery{UserID: 7})
	assert.NoError(t, err2)

	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 2, second.Rank)
}

func TestGetStudentRank_InvalidUser(t *testing.T) {
	h := NewGetStudentRankHandler(&fakeRanker{})

	_, err := h.Handle(context.Background(), GetStudentRankQuery{UserID: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetNeighbors_Window(t *testing.T) {
	ranker := &fakeRanker{xp: map[int64]int{1: 500, 2: 400, 3: 300, 4: 200, 5: 100}}
	h := NewGetNeighborsHandler(ranker)

	result, err := h.Handle(context.Background(), GetNeighborsQuery{UserID: 3, Span: 1})
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Rank)
	assert.Len(t, result.Entries, 3)
	assert.Equal(t, 2, result.Entries[0].Rank)
	assert.Equal(t, 4, result.Entries[2].Rank)
}

func TestGetNeighbors_TruncatedAtTop(t *testing.T) {
	// У края рейтинга окно усекается, а не сдвигается вниз.
	ranker := &fakeRanker{xp: map[int64]int{1: 500, 2: 400, 3: 300}}
	h := NewGetNeighborsHandler(ranker)

	result, err := h.Handle(context.Background(), GetNeighborsQuery{UserID: 1, Span: 2})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Rank)
	assert.Len(t, result.Entries, 3)
	assert.Equal(t, 1, result.Entries[0].Rank)
}

func TestGetNeighbors_Unranked(t *testing.T) {
	h := NewGetNeighborsHandler(&fakeRanker{xp: map[int64]int{1: 100}})

	_, err := h.Handle(context.Background(), GetNeighborsQuery{UserID: 42})
	assert.ErrorIs(t, err, shared.ErrNotRanked)
}
