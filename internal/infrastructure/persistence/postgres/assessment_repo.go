package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/assessment"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXERCISE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ExerciseRepository implements assessment.ExerciseRepository for PostgreSQL.
type ExerciseRepository struct {
	db Querier
}

// NewExerciseRepository creates a new ExerciseRepository.
func NewExerciseRepository(conn *Connection) *ExerciseRepository {
	return &ExerciseRepository{db: conn}
}

// Create creates an exercise with its questions and options.
func (r *ExerciseRepository) Create(ctx context.Context, e *assessment.Exercise) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO exercises (id, course_id, title, published, xp_reward,
			available_from, available_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.CourseID, e.Title, e.Published, e.XPReward,
		e.AvailableFrom, e.AvailableUntil, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}

	for _, q := range e.Questions {
		_, err := r.db.Exec(ctx, `
			INSERT INTO questions (id, exercise_id, type, prompt, score_weight, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, q.ID, e.ID, string(q.Type), q.Prompt, q.ScoreWeight, q.Position)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		for _, opt := range q.Options {
			_, err := r.db.Exec(ctx, `
				INSERT INTO question_options (id, question_id, text, is_correct, position)
				VALUES ($1, $2, $3, $4, $5)
			`, opt.ID, q.ID, opt.Text, opt.IsCorrect, opt.Position)
			if err != nil {
				return fmt.Errorf("failed to create option: %w", err)
			}
		}
	}

	return nil
}

// GetByID returns an exercise with its questions and options.
func (r *ExerciseRepository) GetByID(ctx context.Context, id string) (*assessment.Exercise, error) {
	var e assessment.Exercise

	err := r.db.QueryRow(ctx, `
		SELECT id, course_id, title, published, xp_reward, available_from, available_until, created_at, updated_at
		FROM exercises WHERE id = $1
	`, id).Scan(&e.ID, &e.CourseID, &e.Title, &e.Published, &e.XPReward,
		&e.AvailableFrom, &e.AvailableUntil, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to scan exercise: %w", err)
	}

	if err := r.loadQuestions(ctx, &e); err != nil {
		return nil, err
	}

	return &e, nil
}

// Update saves a changed exercise (metadata only; questions are immutable
// once created).
func (r *ExerciseRepository) Update(ctx context.Context, e *assessment.Exercise) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE exercises
		SET title = $2, published = $3, xp_reward = $4,
			available_from = $5, available_until = $6, updated_at = $7
		WHERE id = $1
	`, e.ID, e.Title, e.Published, e.XPReward, e.AvailableFrom, e.AvailableUntil, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update exercise: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shared.ErrExerciseNotFound
	}

	return nil
}

// ListByCourse returns a course's exercises.
func (r *ExerciseRepository) ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]*assessment.Exercise, error) {
	query := `
		SELECT id, course_id, title, published, xp_reward, available_from, available_until, created_at, updated_at
		FROM exercises WHERE course_id = $1
	`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var result []*assessment.Exercise
	for rows.Next() {
		var e assessment.Exercise
		err := rows.Scan(&e.ID, &e.CourseID, &e.Title, &e.Published, &e.XPReward,
			&e.AvailableFrom, &e.AvailableUntil, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range result {
		if err := r.loadQuestions(ctx, e); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// loadQuestions populates the exercise's questions and their options.
func (r *ExerciseRepository) loadQuestions(ctx context.Context, e *assessment.Exercise) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, exercise_id, type, prompt, score_weight, position
		FROM questions WHERE exercise_id = $1
		ORDER BY position
	`, e.ID)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	defer rows.Close()

	e.Questions = nil
	for rows.Next() {
		var q assessment.Question
		var qType string

		if err := rows.Scan(&q.ID, &q.ExerciseID, &qType, &q.Prompt, &q.ScoreWeight, &q.Position); err != nil {
			return fmt.Errorf("failed to scan question: %w", err)
		}

		q.Type = assessment.QuestionType(qType)
		e.Questions = append(e.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range e.Questions {
		if err := r.loadOptions(ctx, &e.Questions[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *ExerciseRepository) loadOptions(ctx context.Context, q *assessment.Question) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, question_id, text, is_correct, position
		FROM question_options WHERE question_id = $1
		ORDER BY position
	`, q.ID)
	if err != nil {
		return fmt.Errorf("failed to load options: %w", err)
	}
	defer rows.Close()

	q.Options = nil
	for rows.Next() {
		var opt assessment.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.IsCorrect, &opt.Position); err != nil {
			return fmt.Errorf("failed to scan option: %w", err)
		}
		q.Options = append(q.Options, opt)
	}

	return rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttemptRepository implements assessment.AttemptRepository for PostgreSQL.
type AttemptRepository struct {
	db Querier
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(conn *Connection) *AttemptRepository {
	return &AttemptRepository{db: conn}
}

// NewAttemptRepositoryTx creates a repository bound to a transaction.
func NewAttemptRepositoryTx(tx pgx.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

// Create creates a new attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *assessment.Attempt) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO attempts (id, exercise_id, user_id, status, total_score, started_at, completed_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.ExerciseID, a.UserID, string(a.Status), a.TotalScore, a.StartedAt, a.CompletedAt, a.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// GetByID returns an attempt with its answers.
func (r *AttemptRepository) GetByID(ctx context.Context, id string) (*assessment.Attempt, error) {
	var a assessment.Attempt
	var status string

	err := r.db.QueryRow(ctx, `
		SELECT id, exercise_id, user_id, status, total_score, started_at, completed_at, duration_seconds
		FROM attempts WHERE id = $1
	`, id).Scan(&a.ID, &a.ExerciseID, &a.UserID, &status, &a.TotalScore, &a.StartedAt, &a.CompletedAt, &a.DurationSeconds)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}

	a.Status = assessment.AttemptStatus(status)

	if err := r.loadAnswers(ctx, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Update saves an attempt and its answers. Answers are written with
// upsert semantics on (attempt_id, question_id).
func (r *AttemptRepository) Update(ctx context.Context, a *assessment.Attempt) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE attempts
		SET status = $2, total_score = $3, completed_at = $4, duration_seconds = $5
		WHERE id = $1
	`, a.ID, string(a.Status), a.TotalScore, a.CompletedAt, a.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shared.ErrAttemptNotFound
	}

	return r.upsertAnswers(ctx, a)
}

// Complete saves a completed attempt. The row is only updated from the
// in_progress status: a concurrent completion loses the race and gets
// ErrAttemptAlreadyCompleted.
func (r *AttemptRepository) Complete(ctx context.Context, a *assessment.Attempt) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE attempts
		SET status = $2, total_score = $3, completed_at = $4, duration_seconds = $5
		WHERE id = $1 AND status = 'in_progress'
	`, a.ID, string(a.Status), a.TotalScore, a.CompletedAt, a.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to complete attempt: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return assessment.ErrAttemptAlreadyCompleted
	}

	return r.upsertAnswers(ctx, a)
}

func (r *AttemptRepository) upsertAnswers(ctx context.Context, a *assessment.Attempt) error {
	for i := range a.Answers {
		ans := &a.Answers[i]

		var selectedOption interface{}
		if ans.SelectedOptionID != "" {
			selectedOption = ans.SelectedOptionID
		}

		_, err := r.db.Exec(ctx, `
			INSERT INTO answers (
				id, attempt_id, question_id, selected_option_id,
				text_response, file_url, score_awarded, is_correct, submitted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (attempt_id, question_id) DO UPDATE SET
				selected_option_id = EXCLUDED.selected_option_id,
				text_response = EXCLUDED.text_response,
				file_url = EXCLUDED.file_url,
				score_awarded = EXCLUDED.score_awarded,
				is_correct = EXCLUDED.is_correct,
				submitted_at = EXCLUDED.submitted_at
		`, ans.ID, a.ID, ans.QuestionID, selectedOption,
			ans.TextResponse, ans.FileURL, ans.ScoreAwarded, ans.IsCorrect, ans.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert answer: %w", err)
		}
	}

	return nil
}

// ListByUser returns a user's attempts on an exercise.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID int64, exerciseID string) ([]*assessment.Attempt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, exercise_id, user_id, status, total_score, started_at, completed_at, duration_seconds
		FROM attempts
		WHERE user_id = $1 AND exercise_id = $2
		ORDER BY started_at DESC
	`, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var result []*assessment.Attempt
	for rows.Next() {
		var a assessment.Attempt
		var status string

		err := rows.Scan(&a.ID, &a.ExerciseID, &a.UserID, &status, &a.TotalScore, &a.StartedAt, &a.CompletedAt, &a.DurationSeconds)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		a.Status = assessment.AttemptStatus(status)
		result = append(result, &a)
	}

	return result, rows.Err()
}

// CountCompleted returns the number of completed attempts by a user
// on an exercise.
func (r *AttemptRepository) CountCompleted(ctx context.Context, userID int64, exerciseID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM attempts
		WHERE user_id = $1 AND exercise_id = $2 AND status = 'completed'
	`, userID, exerciseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	return count, nil
}

func (r *AttemptRepository) loadAnswers(ctx context.Context, a *assessment.Attempt) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, attempt_id, question_id, selected_option_id,
			   text_response, file_url, score_awarded, is_correct, submitted_at
		FROM answers WHERE attempt_id = $1
		ORDER BY submitted_at
	`, a.ID)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	defer rows.Close()

	a.Answers = nil
	for rows.Next() {
		var ans assessment.Answer
		var selectedOption *string

		err := rows.Scan(&ans.ID, &ans.AttemptID, &ans.QuestionID, &selectedOption,
			&ans.TextResponse, &ans.FileURL, &ans.ScoreAwarded, &ans.IsCorrect, &ans.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to scan answer: %w", err)
		}

		if selectedOption != nil {
			ans.SelectedOptionID = *selectedOption
		}
		a.Answers = append(a.Answers, ans)
	}

	return rows.Err()
}
