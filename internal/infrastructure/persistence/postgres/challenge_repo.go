package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeRepository implements challenge.Repository for PostgreSQL.
type ChallengeRepository struct {
	db Querier
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(conn *Connection) *ChallengeRepository {
	return &ChallengeRepository{db: conn}
}

const challengeColumns = `
	id, kind, objective, title, target, xp_reward, badge_code,
	active, starts_at, ends_at, created_at, updated_at
`

// Create creates a new challenge.
func (r *ChallengeRepository) Create(ctx context.Context, c *challenge.Challenge) error {
	query := `
		INSERT INTO challenges (
			id, kind, objective, title, target, xp_reward, badge_code,
			active, starts_at, ends_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		string(c.Kind),
		string(c.Objective),
		c.Title,
		c.Target,
		c.XPReward,
		c.BadgeCode,
		c.Active,
		c.StartsAt,
		c.EndsAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	return nil
}

// GetByID returns a challenge by ID.
func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanChallenge(row)
}

// Update saves a changed challenge.
func (r *ChallengeRepository) Update(ctx context.Context, c *challenge.Challenge) error {
	query := `
		UPDATE challenges
		SET title = $2, target = $3, xp_reward = $4, badge_code = $5,
			active = $6, starts_at = $7, ends_at = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		c.ID, c.Title, c.Target, c.XPReward, c.BadgeCode,
		c.Active, c.StartsAt, c.EndsAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shared.ErrChallengeNotFound
	}

	return nil
}

// ListActive returns challenges open at the given time.
func (r *ChallengeRepository) ListActive(ctx context.Context, at time.Time) ([]*challenge.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE active = TRUE
		  AND (kind <> 'special' OR (starts_at <= $1 AND ends_at > $1))
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, at)
	if err != nil {
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}
	defer rows.Close()

	return r.scanChallenges(rows)
}

// ListActiveByObjective returns open challenges with the given objective.
func (r *ChallengeRepository) ListActiveByObjective(ctx context.Context, objective challenge.Objective, at time.Time) ([]*challenge.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE active = TRUE AND objective = $1
		  AND (kind <> 'special' OR (starts_at <= $2 AND ends_at > $2))
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, string(objective), at)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges by objective: %w", err)
	}
	defer rows.Close()

	return r.scanChallenges(rows)
}

func (r *ChallengeRepository) scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	var c challenge.Challenge
	var kind, objective string

	err := row.Scan(
		&c.ID, &kind, &objective, &c.Title, &c.Target, &c.XPReward, &c.BadgeCode,
		&c.Active, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to scan challenge: %w", err)
	}

	c.Kind = challenge.Kind(kind)
	c.Objective = challenge.Objective(objective)
	return &c, nil
}

func (r *ChallengeRepository) scanChallenges(rows pgx.Rows) ([]*challenge.Challenge, error) {
	var result []*challenge.Challenge
	for rows.Next() {
		c, err := r.scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSIGNMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AssignmentRepository implements challenge.AssignmentRepository for PostgreSQL.
type AssignmentRepository struct {
	db Querier
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(conn *Connection) *AssignmentRepository {
	return &AssignmentRepository{db: conn}
}

// NewAssignmentRepositoryTx creates a repository bound to a transaction.
func NewAssignmentRepositoryTx(tx pgx.Tx) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

const assignmentColumns = `
	id, challenge_id, user_id, window_key, status, progress, target,
	issued_at, expires_at, completed_at, claimed_at
`

// Create inserts an assignment. When an assignment with the same
// (challenge, user, window) already exists, the insert is a no-op and
// the existing assignment is returned.
func (r *AssignmentRepository) Create(ctx context.Context, a *challenge.Assignment) (*challenge.Assignment, error) {
	query := `
		INSERT INTO challenge_assignments (
			id, challenge_id, user_id, window_key, status, progress, target,
			issued_at, expires_at, completed_at, claimed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (challenge_id, user_id, window_key) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query,
		a.ID, a.ChallengeID, a.UserID, a.WindowKey, string(a.Status),
		a.Progress, a.Target, a.IssuedAt, a.ExpiresAt, a.CompletedAt, a.ClaimedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return a, nil
	}

	// Already issued in this window: return the existing assignment.
	existing := r.db.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM challenge_assignments
		WHERE challenge_id = $1 AND user_id = $2 AND window_key = $3
	`, a.ChallengeID, a.UserID, a.WindowKey)

	return r.scanAssignment(existing)
}

// GetByID returns an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*challenge.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM challenge_assignments WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanAssignment(row)
}

// GetByIDForUpdate returns an assignment with a row lock for a safe
// read-modify-write inside a transaction.
func (r *AssignmentRepository) GetByIDForUpdate(ctx context.Context, id string) (*challenge.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM challenge_assignments WHERE id = $1 FOR UPDATE`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanAssignment(row)
}

// Update saves a changed assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *challenge.Assignment) error {
	query := `
		UPDATE challenge_assignments
		SET status = $2, progress = $3, completed_at = $4, claimed_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		a.ID, string(a.Status), a.Progress, a.CompletedAt, a.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shared.ErrAssignmentNotFound
	}

	return nil
}

// ListInProgress returns a user's open assignments for challenges
// with the given objective.
func (r *AssignmentRepository) ListInProgress(ctx context.Context, userID int64, objective challenge.Objective) ([]*challenge.Assignment, error) {
	query := `
		SELECT a.id, a.challenge_id, a.user_id, a.window_key, a.status, a.progress, a.target,
			   a.issued_at, a.expires_at, a.completed_at, a.claimed_at
		FROM challenge_assignments a
		JOIN challenges c ON c.id = a.challenge_id
		WHERE a.user_id = $1 AND a.status IN ('pending', 'in_progress') AND c.objective = $2
		ORDER BY a.issued_at
	`

	rows, err := r.db.Query(ctx, query, userID, string(objective))
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress assignments: %w", err)
	}
	defer rows.Close()

	return r.scanAssignments(rows)
}

// ListByUser returns a user's assignments, newest first.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*challenge.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM challenge_assignments
		WHERE user_id = $1
		ORDER BY issued_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	return r.scanAssignments(rows)
}

// ListDueForExpiry returns open assignments whose window has closed.
func (r *AssignmentRepository) ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*challenge.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM challenge_assignments
		WHERE status IN ('pending', 'in_progress') AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due assignments: %w", err)
	}
	defer rows.Close()

	return r.scanAssignments(rows)
}

// RecordCompletion saves the snapshot of a claimed assignment.
func (r *AssignmentRepository) RecordCompletion(ctx context.Context, c *challenge.Completion) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO challenge_completions (id, challenge_id, user_id, progress, target, xp_earned, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.ChallengeID, c.UserID, c.Progress, c.Target, c.XPEarned, c.ClaimedAt)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	return nil
}

func (r *AssignmentRepository) scanAssignment(row pgx.Row) (*challenge.Assignment, error) {
	var a challenge.Assignment
	var status string

	err := row.Scan(
		&a.ID, &a.ChallengeID, &a.UserID, &a.WindowKey, &status,
		&a.Progress, &a.Target, &a.IssuedAt, &a.ExpiresAt, &a.CompletedAt, &a.ClaimedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}

	a.Status = challenge.AssignmentStatus(status)
	return &a, nil
}

func (r *AssignmentRepository) scanAssignments(rows pgx.Rows) ([]*challenge.Assignment, error) {
	var result []*challenge.Assignment
	for rows.Next() {
		a, err := r.scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
