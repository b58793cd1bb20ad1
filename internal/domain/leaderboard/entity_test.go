package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildRanking собирает отсортированный рейтинг из пар (userID, totalXP).
func buildRanking(t *testing.T, users ...[2]int64) *Ranking {
	t.Helper()

	r := NewRanking()
	for _, u := range users {
		err := r.Add(&Entry{UserID: u[0], TotalXP: int(u[1])})
		assert.NoError(t, err)
	}
	r.Sort()
	return r
}

func TestRanking_Sort_ByXPDescending(t *testing.T) {
	r := buildRanking(t, [2]int64{1, 300}, [2]int64{2, 900}, [2]int64{3, 600})

	all := r.All()
	assert.Equal(t, int64(2), all[0].UserID)
	assert.Equal(t, int64(3), all[1].UserID)
	assert.Equal(t, int64(1), all[2].UserID)

	assert.Equal(t, 1, all[0].Rank)
	assert.Equal(t, 2, all[1].Rank)
	assert.Equal(t, 3, all[2].Rank)
}

func TestRanking_Sort_TieBreakByUserID(t *testing.T) {
	// При равном XP выше стоит студент с меньшим ID.
	r := buildRanking(t, [2]int64{7, 500}, [2]int64{3, 500})

	all := r.All()
	assert.Equal(t, int64(3), all[0].UserID)
	assert.Equal(t, 1, all[0].Rank)
	assert.Equal(t, int64(7), all[1].UserID)
	assert.Equal(t, 2, all[1].Rank)
}

func TestRanking_Add_DuplicateUser(t *testing.T) {
	r := NewRanking()
	assert.NoError(t, r.Add(&Entry{UserID: 1, TotalXP: 100}))
	assert.ErrorIs(t, r.Add(&Entry{UserID: 1, TotalXP: 200}), ErrDuplicateUser)
	assert.ErrorIs(t, r.Add(nil), ErrNilEntry)
}

func TestRanking_RankOf(t *testing.T) {
	r := buildRanking(t, [2]int64{1, 300}, [2]int64{2, 900})

	rank, err := r.RankOf(2)
	assert.NoError(t, err)
	assert.Equal(t, 1, rank)

	_, err = r.RankOf(99)
	assert.ErrorIs(t, err, ErrUserNotRanked)
}

func TestRanking_Top(t *testing.T) {
	r := buildRanking(t, [2]int64{1, 100}, [2]int64{2, 200}, [2]int64{3, 300})

	top := r.Top(2)
	assert.Len(t, top, 2)
	assert.Equal(t, int64(3), top[0].UserID)

	// Запрос больше размера рейтинга усекается.
	assert.Len(t, r.Top(10), 3)
	assert.Nil(t, r.Top(0))
}

func TestRanking_Page(t *testing.T) {
	r := buildRanking(t,
		[2]int64{1, 100}, [2]int64{2, 200}, [2]int64{3, 300},
		[2]int64{4, 400}, [2]int64{5, 500},
	)

	page := r.Page(2, 2)
	assert.Len(t, page, 2)
	assert.Equal(t, 3, page[0].Rank)
	assert.Equal(t, 4, page[1].Rank)

	assert.Nil(t, r.Page(10, 2))
	assert.Len(t, r.Page(4, 10), 1)
}

func TestRanking_Neighbors(t *testing.T) {
	r := buildRanking(t,
		[2]int64{1, 100}, [2]int64{2, 200}, [2]int64{3, 300},
		[2]int64{4, 400}, [2]int64{5, 500},
	)

	// Студент 3 стоит на третьем месте: окно ±1 даёт ранги 2..4.
	window, err := r.Neighbors(3, 1)
	assert.NoError(t, err)
	assert.Len(t, window, 3)
	assert.Equal(t, 2, window[0].Rank)
	assert.Equal(t, int64(3), window[1].UserID)
	assert.Equal(t, 4, window[2].Rank)
}

func TestRanking_Neighbors_TruncatedAtEdges(t *testing.T) {
	r := buildRanking(t, [2]int64{1, 100}, [2]int64{2, 200}, [2]int64{3, 300})

	// Лидер: сверху соседей нет.
	window, err := r.Neighbors(3, 2)
	assert.NoError(t, err)
	assert.Len(t, window, 3)
	assert.Equal(t, 1, window[0].Rank)

	// Последний: снизу соседей нет.
	window, err = r.Neighbors(1, 2)
	assert.NoError(t, err)
	assert.Len(t, window, 3)
	assert.Equal(t, 3, window[2].Rank)

	_, err = r.Neighbors(99, 2)
	assert.ErrorIs(t, err, ErrUserNotRanked)
}

func TestRanking_GetByUser(t *testing.T) {
	r := buildRanking(t, [2]int64{1, 100})

	entry := r.GetByUser(1)
	assert.NotNil(t, entry)
	assert.Equal(t, 100, entry.TotalXP)

	assert.Nil(t, r.GetByUser(2))
}

func TestRanking_Count(t *testing.T) {
	assert.Equal(t, 0, NewRanking().Count())
	assert.Equal(t, 2, buildRanking(t, [2]int64{1, 100}, [2]int64{2, 200}).Count())
}
