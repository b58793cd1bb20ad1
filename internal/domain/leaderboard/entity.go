// Package leaderboard содержит доменную модель рейтинга студентов.
// Рейтинг - чистая проекция статистики XP: он всегда может быть
// пересобран заново из статистики и не является источником истины.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry представляет одну запись в рейтинге.
type Entry struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int

	// UserID - идентификатор студента.
	UserID int64

	// TotalXP - суммарный XP студента.
	TotalXP int

	// Level - уровень студента.
	Level int

	// UpdatedAt - время последнего обновления записи.
	UpdatedAt time.Time
}

// Clone создаёт копию записи.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// String возвращает строковое представление для логирования.
func (e *Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, User: %d, XP: %d}", e.Rank, e.UserID, e.TotalXP)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// Порядок строгий и полный: по убыванию XP, при равном XP - по
// возрастанию UserID. Двух записей с одинаковым рангом не бывает.
// ══════════════════════════════════════════════════════════════════════════════

// Ranking представляет полный отсортированный рейтинг.
type Ranking struct {
	entries []*Entry
	byUser  map[int64]*Entry
}

// NewRanking создаёт пустой Ranking.
func NewRanking() *Ranking {
	return &Ranking{
		entries: make([]*Entry, 0),
		byUser:  make(map[int64]*Entry),
	}
}

// Add добавляет запись в рейтинг (без автоматической сортировки).
func (r *Ranking) Add(entry *Entry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if _, exists := r.byUser[entry.UserID]; exists {
		return ErrDuplicateUser
	}

	r.entries = append(r.entries, entry)
	r.byUser[entry.UserID] = entry
	return nil
}

// Sort сортирует записи и присваивает ранги.
// Порядок: XP по убыванию, при равном XP - UserID по возрастанию.
func (r *Ranking) Sort() {
	sort.Slice(r.entries, func(i, j int) bool {
		if r.entries[i].TotalXP != r.entries[j].TotalXP {
			return r.entries[i].TotalXP > r.entries[j].TotalXP
		}
		return r.entries[i].UserID < r.entries[j].UserID
	})

	for i, entry := range r.entries {
		entry.Rank = i + 1
	}
}

// GetByUser возвращает запись по ID студента (nil, если её нет).
func (r *Ranking) GetByUser(userID int64) *Entry {
	return r.byUser[userID]
}

// RankOf возвращает позицию студента в рейтинге.
// Возвращает ErrUserNotRanked, если студента нет в рейтинге.
func (r *Ranking) RankOf(userID int64) (int, error) {
	entry := r.byUser[userID]
	if entry == nil {
		return 0, ErrUserNotRanked
	}
	return entry.Rank, nil
}

// Top возвращает топ-N записей.
func (r *Ranking) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	result := make([]*Entry, n)
	copy(result, r.entries[:n])
	return result
}

// Slice возвращает срез записей [from:to).
func (r *Ranking) Slice(from, to int) []*Entry {
	if from < 0 {
		from = 0
	}
	if to > len(r.entries) {
		to = len(r.entries)
	}
	if from >= to {
		return nil
	}
	result := make([]*Entry, to-from)
	copy(result, r.entries[from:to])
	return result
}

// Page возвращает страницу рейтинга по offset/limit.
func (r *Ranking) Page(offset, limit int) []*Entry {
	return r.Slice(offset, offset+limit)
}

// Neighbors возвращает соседей студента по рангу (±k позиций),
// включая самого студента в центре. У краёв рейтинга окно усекается.
func (r *Ranking) Neighbors(userID int64, k int) ([]*Entry, error) {
	entry := r.byUser[userID]
	if entry == nil {
		return nil, ErrUserNotRanked
	}

	idx := entry.Rank - 1
	from := idx - k
	to := idx + k + 1

	return r.Slice(from, to), nil
}

// Count возвращает общее количество записей.
func (r *Ranking) Count() int {
	return len(r.entries)
}

// All возвращает все записи.
func (r *Ranking) All() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNilEntry - попытка добавить nil запись.
	ErrNilEntry = errors.New("cannot add nil entry")

	// ErrDuplicateUser - студент уже есть в рейтинге.
	ErrDuplicateUser = errors.New("user already exists in ranking")

	// ErrUserNotRanked - студента нет в рейтинге.
	ErrUserNotRanked = errors.New("user is not ranked")

	// ErrEmptyLeaderboard - рейтинг пуст.
	ErrEmptyLeaderboard = errors.New("leaderboard is empty")
)
