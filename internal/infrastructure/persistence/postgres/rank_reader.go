package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANK READER IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RankReader implements leaderboard.Ranker on top of user_stats.
// Ranks are computed at read time, so a rank query right after an XP
// award sees the award; the materialized leaderboard_entries table
// serves only the paged board view.
type RankReader struct {
	db Querier
}

// NewRankReader creates a new RankReader.
func NewRankReader(conn *Connection) *RankReader {
	return &RankReader{db: conn}
}

// RankOf returns the user's freshly computed rank: the number of users
// with strictly more XP plus one, ties broken by the smaller user id.
func (r *RankReader) RankOf(ctx context.Context, userID int64) (*leaderboard.Entry, error) {
	query := `
		SELECT s.user_id, s.total_xp, s.level, s.updated_at,
			   (SELECT COUNT(*) FROM user_stats o
				WHERE o.total_xp > s.total_xp
				   OR (o.total_xp = s.total_xp AND o.user_id < s.user_id)) + 1 AS rank
		FROM user_stats s
		WHERE s.user_id = $1
	`

	var e leaderboard.Entry
	err := r.db.QueryRow(ctx, query, userID).Scan(&e.UserID, &e.TotalXP, &e.Level, &e.UpdatedAt, &e.Rank)
	if err != nil {
		if IsNoRows(err) {
			return nil, leaderboard.ErrUserNotRanked
		}
		return nil, fmt.Errorf("failed to compute rank: %w", err)
	}

	return &e, nil
}

// Around returns the window of up to span users above and below the
// user, computed from the current stats and truncated at the edges.
func (r *RankReader) Around(ctx context.Context, userID int64, span int) ([]*leaderboard.Entry, error) {
	self, err := r.RankOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := self.Rank - span
	if from < 1 {
		from = 1
	}

	query := `
		WITH ranked AS (
			SELECT user_id, total_xp, level, updated_at,
				   ROW_NUMBER() OVER (ORDER BY total_xp DESC, user_id ASC) AS rank
			FROM user_stats
		)
		SELECT user_id, total_xp, level, updated_at, rank
		FROM ranked
		WHERE rank BETWEEN $1 AND $2
		ORDER BY rank ASC
	`

	rows, err := r.db.Query(ctx, query, from, self.Rank+span)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank window: %w", err)
	}
	defer rows.Close()

	var result []*leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.UserID, &e.TotalXP, &e.Level, &e.UpdatedAt, &e.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan rank window entry: %w", err)
		}
		result = append(result, &e)
	}

	return result, rows.Err()
}

// Count returns the number of users with stats.
func (r *RankReader) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_stats`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ranked users: %w", err)
	}

	return count, nil
}
