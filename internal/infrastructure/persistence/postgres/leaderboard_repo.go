package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository implements leaderboard.Repository for PostgreSQL.
// The table is a materialized projection of user_stats and is only ever
// written by full replacement.
type LeaderboardRepository struct {
	db   Querier
	conn *Connection
	tx   pgx.Tx
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(conn *Connection) *LeaderboardRepository {
	return &LeaderboardRepository{db: conn, conn: conn}
}

// NewLeaderboardRepositoryTx creates a repository bound to a transaction.
// Replace then writes within the surrounding transaction and commits
// together with it.
func NewLeaderboardRepositoryTx(tx pgx.Tx) *LeaderboardRepository {
	return &LeaderboardRepository{db: tx, tx: tx}
}

const leaderboardColumns = `rank, user_id, total_xp, level, updated_at`

// Replace atomically swaps the whole projection for a new ranking.
// Readers never observe a partially rebuilt leaderboard.
func (r *LeaderboardRepository) Replace(ctx context.Context, entries []*leaderboard.Entry) error {
	if r.tx != nil {
		return replaceLeaderboard(ctx, r.tx, entries)
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return replaceLeaderboard(ctx, tx, entries)
	})
}

func replaceLeaderboard(ctx context.Context, tx pgx.Tx, entries []*leaderboard.Entry) error {
	if _, err := tx.Exec(ctx, `DELETE FROM leaderboard_entries`); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Rank, e.UserID, e.TotalXP, e.Level, e.UpdatedAt})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"leaderboard_entries"},
		[]string{"rank", "user_id", "total_xp", "level", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert leaderboard entries: %w", err)
	}

	return nil
}

// Top returns the first n entries by rank.
func (r *LeaderboardRepository) Top(ctx context.Context, n int) ([]*leaderboard.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leaderboard_entries
		ORDER BY rank ASC
		LIMIT $1
	`, leaderboardColumns)

	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard top: %w", err)
	}
	defer rows.Close()

	return scanLeaderboardEntries(rows)
}

// Page returns a window of entries by offset and limit.
func (r *LeaderboardRepository) Page(ctx context.Context, offset, limit int) ([]*leaderboard.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leaderboard_entries
		ORDER BY rank ASC
		OFFSET $1 LIMIT $2
	`, leaderboardColumns)

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard page: %w", err)
	}
	defer rows.Close()

	return scanLeaderboardEntries(rows)
}

// GetByUser returns a user's entry, or ErrUserNotRanked when absent.
func (r *LeaderboardRepository) GetByUser(ctx context.Context, userID int64) (*leaderboard.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leaderboard_entries WHERE user_id = $1
	`, leaderboardColumns)

	entry, err := scanLeaderboardEntry(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, leaderboard.ErrUserNotRanked
		}
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}

	return entry, nil
}

// Neighbors returns the entries surrounding a user: up to k above and
// k below, truncated at the edges of the board.
func (r *LeaderboardRepository) Neighbors(ctx context.Context, userID int64, k int) ([]*leaderboard.Entry, error) {
	self, err := r.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM leaderboard_entries
		WHERE rank BETWEEN $1 AND $2
		ORDER BY rank ASC
	`, leaderboardColumns)

	from := self.Rank - k
	if from < 1 {
		from = 1
	}

	rows, err := r.db.Query(ctx, query, from, self.Rank+k)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard neighbors: %w", err)
	}
	defer rows.Close()

	return scanLeaderboardEntries(rows)
}

// Count returns the number of ranked users.
func (r *LeaderboardRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM leaderboard_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leaderboard entries: %w", err)
	}

	return count, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────────────────────────────────────

func scanLeaderboardEntry(row pgx.Row) (*leaderboard.Entry, error) {
	var e leaderboard.Entry
	if err := row.Scan(&e.Rank, &e.UserID, &e.TotalXP, &e.Level, &e.UpdatedAt); err != nil {
		return nil, err
	}

	return &e, nil
}

func scanLeaderboardEntries(rows pgx.Rows) ([]*leaderboard.Entry, error) {
	var result []*leaderboard.Entry
	for rows.Next() {
		entry, err := scanLeaderboardEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		result = append(result, entry)
	}

	return result, rows.Err()
}
