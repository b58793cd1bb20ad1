package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/gamification"
)

// ══════════════════════════════════════════════════════════════════════════════
// XP LEDGER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LedgerRepository implements gamification.LedgerRepository for PostgreSQL.
type LedgerRepository struct {
	db Querier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{db: conn}
}

// NewLedgerRepositoryTx creates a repository bound to a transaction.
func NewLedgerRepositoryTx(tx pgx.Tx) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

// Insert appends a ledger entry. A duplicate (user, source type,
// source id) for a non-repeatable source is a silent no-op: the
// partial unique index absorbs it via ON CONFLICT DO NOTHING.
func (r *LedgerRepository) Insert(ctx context.Context, entry *gamification.LedgerEntry) (bool, error) {
	query := `
		INSERT INTO xp_ledger (id, user_id, amount, source_type, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, source_type, source_id) WHERE source_type <> 'manual'
		DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Amount,
		string(entry.SourceType),
		entry.SourceID,
		entry.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByUser returns the most recent entries for a user.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*gamification.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, source_type, source_id, created_at
		FROM xp_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var result []*gamification.LedgerEntry
	for rows.Next() {
		var e gamification.LedgerEntry
		var sourceType string

		err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &sourceType, &e.SourceID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		e.SourceType = gamification.SourceType(sourceType)
		result = append(result, &e)
	}

	return result, rows.Err()
}

// SumByUser returns a user's total XP from the ledger.
func (r *LedgerRepository) SumByUser(ctx context.Context, userID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM xp_ledger WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}

	return total, nil
}

// SumByUserSince returns XP earned by a user since a point in time.
func (r *LedgerRepository) SumByUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM xp_ledger WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger since: %w", err)
	}

	return total, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER STATS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StatsRepository implements gamification.StatsRepository for PostgreSQL.
type StatsRepository struct {
	db Querier
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(conn *Connection) *StatsRepository {
	return &StatsRepository{db: conn}
}

// NewStatsRepositoryTx creates a repository bound to a transaction.
func NewStatsRepositoryTx(tx pgx.Tx) *StatsRepository {
	return &StatsRepository{db: tx}
}

// Get returns a user's stats, or zero stats when the user has no XP yet.
func (r *StatsRepository) Get(ctx context.Context, userID int64) (*gamification.UserStats, error) {
	query := `
		SELECT user_id, total_xp, level, lessons_completed, attempts_completed,
			   courses_completed, challenges_completed, updated_at
		FROM user_stats WHERE user_id = $1
	`

	var s gamification.UserStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.TotalXP, &s.Level, &s.LessonsCompleted, &s.AttemptsCompleted,
		&s.CoursesCompleted, &s.ChallengesCompleted, &s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return gamification.NewUserStats(userID), nil
		}
		return nil, fmt.Errorf("failed to scan user stats: %w", err)
	}

	return &s, nil
}

// Upsert writes a user's stats.
func (r *StatsRepository) Upsert(ctx context.Context, stats *gamification.UserStats) error {
	query := `
		INSERT INTO user_stats (
			user_id, total_xp, level, lessons_completed, attempts_completed,
			courses_completed, challenges_completed, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			total_xp = EXCLUDED.total_xp,
			level = EXCLUDED.level,
			lessons_completed = EXCLUDED.lessons_completed,
			attempts_completed = EXCLUDED.attempts_completed,
			courses_completed = EXCLUDED.courses_completed,
			challenges_completed = EXCLUDED.challenges_completed,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		stats.UserID, stats.TotalXP, stats.Level, stats.LessonsCompleted,
		stats.AttemptsCompleted, stats.CoursesCompleted, stats.ChallengesCompleted,
		stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user stats: %w", err)
	}

	return nil
}

// ListAll returns all user stats in ranking order: total XP descending,
// ties broken by ascending user ID.
func (r *StatsRepository) ListAll(ctx context.Context) ([]*gamification.UserStats, error) {
	query := `
		SELECT user_id, total_xp, level, lessons_completed, attempts_completed,
			   courses_completed, challenges_completed, updated_at
		FROM user_stats
		ORDER BY total_xp DESC, user_id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stats: %w", err)
	}
	defer rows.Close()

	var result []*gamification.UserStats
	for rows.Next() {
		var s gamification.UserStats
		err := rows.Scan(
			&s.UserID, &s.TotalXP, &s.Level, &s.LessonsCompleted, &s.AttemptsCompleted,
			&s.CoursesCompleted, &s.ChallengesCompleted, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user stats: %w", err)
		}
		result = append(result, &s)
	}

	return result, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements gamification.BadgeRepository for PostgreSQL.
type BadgeRepository struct {
	db Querier
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{db: conn}
}

// NewBadgeRepositoryTx creates a repository bound to a transaction.
func NewBadgeRepositoryTx(tx pgx.Tx) *BadgeRepository {
	return &BadgeRepository{db: tx}
}

// GetOrCreateByCode returns the badge with the given code, creating
// the definition if it does not exist.
func (r *BadgeRepository) GetOrCreateByCode(ctx context.Context, code, title, description string) (*gamification.Badge, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO badges (id, code, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING
	`, uuid.NewString(), code, title, description, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}

	var b gamification.Badge
	err = r.db.QueryRow(ctx, `
		SELECT id, code, title, description, created_at FROM badges WHERE code = $1
	`, code).Scan(&b.ID, &b.Code, &b.Title, &b.Description, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badge: %w", err)
	}

	return &b, nil
}

// Award grants a badge to a user. Awarding the same badge twice is a no-op.
func (r *BadgeRepository) Award(ctx context.Context, userID int64, badgeID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, userID, badgeID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to award badge: %w", err)
	}

	return nil
}

// ListByUser returns the badges a user has earned.
func (r *BadgeRepository) ListByUser(ctx context.Context, userID int64) ([]*gamification.Badge, error) {
	query := `
		SELECT b.id, b.code, b.title, b.description, b.created_at
		FROM badges b
		JOIN user_badges ub ON ub.badge_id = b.id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var result []*gamification.Badge
	for rows.Next() {
		var b gamification.Badge
		if err := rows.Scan(&b.ID, &b.Code, &b.Title, &b.Description, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		result = append(result, &b)
	}

	return result, rows.Err()
}

// HasBadge checks whether a user holds a badge with the given code.
func (r *BadgeRepository) HasBadge(ctx context.Context, userID int64, code string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_badges ub
			JOIN badges b ON b.id = ub.badge_id
			WHERE ub.user_id = $1 AND b.code = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check badge: %w", err)
	}

	return exists, nil
}
