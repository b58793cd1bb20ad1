package gamification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// LedgerRepository stores XP ledger entries.
type LedgerRepository interface {
	// Insert appends a ledger entry. When the entry's source type does not
	// allow repeats and an entry with the same (user, source type,
	// source id) already exists, the insert is a silent no-op and
	// inserted is false.
	Insert(ctx context.Context, entry *LedgerEntry) (inserted bool, err error)

	// ListByUser returns the most recent entries for a user.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*LedgerEntry, error)

	// SumByUser returns the total XP for a user from the ledger.
	SumByUser(ctx context.Context, userID int64) (int, error)

	// SumByUserSince returns XP earned by a user since a point in time.
	SumByUserSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// StatsRepository stores derived per-user stats.
type StatsRepository interface {
	// Get returns a user's stats. Returns zero stats when the user has
	// no XP yet.
	Get(ctx context.Context, userID int64) (*UserStats, error)

	// Upsert writes a user's stats.
	Upsert(ctx context.Context, stats *UserStats) error

	// ListAll returns all user stats ordered by total XP descending,
	// ties broken by ascending user ID.
	ListAll(ctx context.Context) ([]*UserStats, error)
}

// BadgeRepository stores badge definitions and earned badges.
type BadgeRepository interface {
	// GetOrCreateByCode returns the badge with the given code,
	// creating the definition if it does not exist.
	GetOrCreateByCode(ctx context.Context, code, title, description string) (*Badge, error)

	// Award grants a badge to a user. Awarding the same badge twice
	// is a no-op.
	Award(ctx context.Context, userID int64, badgeID string) error

	// ListByUser returns the badges a user has earned.
	ListByUser(ctx context.Context, userID int64) ([]*Badge, error)

	// HasBadge checks whether a user holds a badge with the given code.
	HasBadge(ctx context.Context, userID int64, code string) (bool, error)
}
