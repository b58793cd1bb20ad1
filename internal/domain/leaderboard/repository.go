package leaderboard

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения материализованного рейтинга.
type Repository interface {
	// Replace полностью заменяет рейтинг новым набором записей.
	// Выполняется атомарно: читатели видят либо старый рейтинг,
	// либо новый, но не смесь.
	Replace(ctx context.Context, entries []*Entry) error

	// Top возвращает топ-N записей.
	Top(ctx context.Context, n int) ([]*Entry, error)

	// Page возвращает страницу рейтинга.
	Page(ctx context.Context, offset, limit int) ([]*Entry, error)

	// GetByUser возвращает запись студента.
	// Возвращает ErrUserNotRanked, если студента нет в рейтинге.
	GetByUser(ctx context.Context, userID int64) (*Entry, error)

	// Neighbors возвращает окно ±k позиций вокруг студента.
	Neighbors(ctx context.Context, userID int64, k int) ([]*Entry, error)

	// Count возвращает количество участников рейтинга.
	Count(ctx context.Context) (int, error)
}

// Ranker вычисляет ранг студента напрямую из статистики XP, минуя
// материализованный рейтинг. Ранг - это количество студентов со
// строго большим XP плюс один; равный XP разрешается меньшим user id.
type Ranker interface {
	// RankOf возвращает свежевычисленную запись студента.
	// Возвращает ErrUserNotRanked, если у студента нет статистики.
	RankOf(ctx context.Context, userID int64) (*Entry, error)

	// Around возвращает окно ±span позиций вокруг студента,
	// вычисленное из текущей статистики.
	Around(ctx context.Context, userID int64, span int) ([]*Entry, error)

	// Count возвращает количество студентов со статистикой.
	Count(ctx context.Context) (int, error)
}

// Cache определяет операции кеширования рейтинга (обычно Redis).
type Cache interface {
	// SetRanking кеширует полный рейтинг.
	SetRanking(ctx context.Context, entries []*Entry, ttl time.Duration) error

	// GetTop возвращает топ-N из кеша.
	GetTop(ctx context.Context, n int) ([]*Entry, error)

	// GetRange возвращает записи с рангами [fromRank, toRank] из кеша.
	GetRange(ctx context.Context, fromRank, toRank int) ([]*Entry, error)

	// GetByUser возвращает запись студента из кеша.
	GetByUser(ctx context.Context, userID int64) (*Entry, error)

	// Invalidate сбрасывает кеш рейтинга.
	Invalidate(ctx context.Context) error
}

// Projector пересобирает рейтинг из статистики XP.
// Рейтинг - производная структура: пересборка всегда даёт тот же
// результат для того же состояния статистики.
type Projector interface {
	// Rebuild строит рейтинг заново и атомарно заменяет им текущий.
	// Возвращает количество участников.
	Rebuild(ctx context.Context) (int, error)
}
