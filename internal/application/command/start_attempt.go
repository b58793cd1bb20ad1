package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-lms/internal/domain/assessment"
	"github.com/campus-hub/campus-lms/internal/domain/enrollment"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// START ATTEMPT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// StartAttemptCommand contains the data for starting an exercise attempt.
type StartAttemptCommand struct {
	// UserID is the student starting the attempt.
	UserID int64

	// ExerciseID is the exercise being attempted.
	ExerciseID string
}

// Validate validates the command.
func (c StartAttemptCommand) Validate() error {
	if c.UserID <= 0 {
		return fmt.Errorf("start_attempt: invalid user_id: %d", c.UserID)
	}

	if !shared.IsUUID(c.ExerciseID) {
		return fmt.Errorf("start_attempt: invalid exercise_id: %s", c.ExerciseID)
	}

	return nil
}

// StartAttemptResult contains the result of starting an attempt.
type StartAttemptResult struct {
	// AttemptID is the newly created attempt.
	AttemptID string

	// QuestionCount is the number of questions in the exercise.
	QuestionCount int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// StartAttemptHandler handles the StartAttemptCommand.
type StartAttemptHandler struct {
	exercises   assessment.ExerciseRepository
	attempts    assessment.AttemptRepository
	enrollments enrollment.Repository
}

// NewStartAttemptHandler creates a new StartAttemptHandler.
func NewStartAttemptHandler(
	exercises assessment.ExerciseRepository,
	attempts assessment.AttemptRepository,
	enrollments enrollment.Repository,
) *StartAttemptHandler {
	return &StartAttemptHandler{
		exercises:   exercises,
		attempts:    attempts,
		enrollments: enrollments,
	}
}

// Handle executes the start attempt command.
func (h *StartAttemptHandler) Handle(ctx context.Context, cmd StartAttemptCommand) (*StartAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("start_attempt: validation failed: %w", err)
	}

	exercise, err := h.exercises.GetByID(ctx, cmd.ExerciseID)
	if err != nil {
		return nil, fmt.Errorf("start_attempt: failed to get exercise: %w", err)
	}

	if !exercise.Published {
		return nil, assessment.ErrExerciseNotPublished
	}

	if !exercise.IsAvailableAt(timeutil.Now()) {
		return nil, shared.ErrExerciseUnavailable
	}

	active, err := h.enrollments.HasActive(ctx, cmd.UserID, exercise.CourseID)
	if err != nil {
		return nil, fmt.Errorf("start_attempt: failed to check enrollment: %w", err)
	}
	if !active {
		return nil, shared.ErrNotEnrolled
	}

	attempt, err := assessment.NewAttempt(assessment.NewAttemptParams{
		ID:         uuid.NewString(),
		ExerciseID: exercise.ID,
		UserID:     cmd.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("start_attempt: %w", err)
	}

	if err := h.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("start_attempt: failed to create attempt: %w", err)
	}

	return &StartAttemptResult{
		AttemptID:     attempt.ID,
		QuestionCount: len(exercise.Questions),
	}, nil
}
