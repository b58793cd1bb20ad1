package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/enrollment"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
type EnrollmentRepository struct {
	db Querier
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{db: conn}
}

// NewEnrollmentRepositoryTx creates a repository bound to a transaction.
func NewEnrollmentRepositoryTx(tx pgx.Tx) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

const enrollmentColumns = `
	id, user_id, course_id, status, mode, requested_at,
	activated_at, completed_at, decided_by, created_at, updated_at
`

// Create creates a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			id, user_id, course_id, status, mode, requested_at,
			activated_at, completed_at, decided_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.UserID,
		e.CourseID,
		string(e.Status),
		string(e.Mode),
		e.RequestedAt,
		e.ActivatedAt,
		e.CompletedAt,
		e.DecidedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

// GetByID returns an enrollment by ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanEnrollment(row)
}

// GetOpen returns the open (pending or active) enrollment for a user on a course.
func (r *EnrollmentRepository) GetOpen(ctx context.Context, userID int64, courseID string) (*enrollment.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2 AND status IN ('pending', 'active', 'completed')
	`

	row := r.db.QueryRow(ctx, query, userID, courseID)
	return r.scanEnrollment(row)
}

// Update saves a changed enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		UPDATE enrollments
		SET status = $2, activated_at = $3, completed_at = $4,
			decided_by = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		e.ID,
		string(e.Status),
		e.ActivatedAt,
		e.CompletedAt,
		e.DecidedBy,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shared.ErrEnrollmentNotFound
	}

	return nil
}

// ListByUser returns a user's enrollments.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int64) ([]*enrollment.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE user_id = $1
		ORDER BY requested_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	return r.scanEnrollments(rows)
}

// ListByCourse returns a course's enrollments with the given status.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string, status enrollment.Status) ([]*enrollment.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE course_id = $1 AND status = $2
		ORDER BY requested_at ASC
	`

	rows, err := r.db.Query(ctx, query, courseID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments by course: %w", err)
	}
	defer rows.Close()

	return r.scanEnrollments(rows)
}

// ListPending returns requests awaiting a decision on a course.
func (r *EnrollmentRepository) ListPending(ctx context.Context, courseID string) ([]*enrollment.Enrollment, error) {
	return r.ListByCourse(ctx, courseID, enrollment.StatusPending)
}

// CountActive returns the number of active students on a course.
func (r *EnrollmentRepository) CountActive(ctx context.Context, courseID string) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = 'active'`

	var count int
	if err := r.db.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active enrollments: %w", err)
	}

	return count, nil
}

// HasActive checks whether a user has an active enrollment on a course.
func (r *EnrollmentRepository) HasActive(ctx context.Context, userID int64, courseID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE user_id = $1 AND course_id = $2 AND status = 'active'
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active enrollment: %w", err)
	}

	return exists, nil
}

func (r *EnrollmentRepository) scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	var status, mode string

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CourseID,
		&status,
		&mode,
		&e.RequestedAt,
		&e.ActivatedAt,
		&e.CompletedAt,
		&e.DecidedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}

	e.Status = enrollment.Status(status)
	e.Mode = enrollment.Mode(mode)
	return &e, nil
}

func (r *EnrollmentRepository) scanEnrollments(rows pgx.Rows) ([]*enrollment.Enrollment, error) {
	var result []*enrollment.Enrollment
	for rows.Next() {
		e, err := r.scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements enrollment.CourseRepository for PostgreSQL.
type CourseRepository struct {
	db Querier
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{db: conn}
}

// Create creates a new course.
func (r *CourseRepository) Create(ctx context.Context, c *enrollment.Course) error {
	query := `
		INSERT INTO courses (id, title, mode, key_hash, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.Title,
		string(c.Mode),
		c.KeyHash,
		c.Published,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*enrollment.Course, error) {
	query := `
		SELECT id, title, mode, key_hash, published, created_at, updated_at
		FROM courses WHERE id = $1
	`

	var c enrollment.Course
	var mode string

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&mode,
		&c.KeyHash,
		&c.Published,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Mode = enrollment.Mode(mode)
	return &c, nil
}

// Update saves a changed course.
func (r *CourseRepository) Update(ctx context.Context, c *enrollment.Course) error {
	query := `
		UPDATE courses
		SET title = $2, mode = $3, key_hash = $4, published = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		c.ID,
		c.Title,
		string(c.Mode),
		c.KeyHash,
		c.Published,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}

	return nil
}

// ListPublished returns published courses.
func (r *CourseRepository) ListPublished(ctx context.Context) ([]*enrollment.Course, error) {
	query := `
		SELECT id, title, mode, key_hash, published, created_at, updated_at
		FROM courses WHERE published = TRUE
		ORDER BY title
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var result []*enrollment.Course
	for rows.Next() {
		var c enrollment.Course
		var mode string

		err := rows.Scan(&c.ID, &c.Title, &mode, &c.KeyHash, &c.Published, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}

		c.Mode = enrollment.Mode(mode)
		result = append(result, &c)
	}

	return result, rows.Err()
}
