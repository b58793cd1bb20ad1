package command

import (
	"context"
	"fmt"

	"github.com/campus-hub/campus-lms/internal/domain/assessment"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE ATTEMPT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CompleteAttemptCommand contains the data for completing an attempt.
type CompleteAttemptCommand struct {
	// UserID is the student completing the attempt.
	UserID int64

	// AttemptID is the attempt being completed.
	AttemptID string
}

// Validate validates the command.
func (c CompleteAttemptCommand) Validate() error {
	if c.UserID <= 0 {
		return fmt.Errorf("complete_attempt: invalid user_id: %d", c.UserID)
	}

	if !shared.IsUUID(c.AttemptID) {
		return fmt.Errorf("complete_attempt: invalid attempt_id: %s", c.AttemptID)
	}

	return nil
}

// CompleteAttemptResult contains the grading outcome.
type CompleteAttemptResult struct {
	// AttemptID is the completed attempt.
	AttemptID string

	// TotalScore is the score over auto-graded questions.
	TotalScore int

	// MaxScore is the best possible auto-graded score.
	MaxScore int

	// CorrectCount is the number of correctly answered questions.
	CorrectCount int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CompleteAttemptHandler handles the CompleteAttemptCommand.
type CompleteAttemptHandler struct {
	attempts  assessment.AttemptRepository
	exercises assessment.ExerciseRepository
	events    shared.EventPublisher
}

// NewCompleteAttemptHandler creates a new CompleteAttemptHandler.
func NewCompleteAttemptHandler(
	attempts assessment.AttemptRepository,
	exercises assessment.ExerciseRepository,
	events shared.EventPublisher,
) *CompleteAttemptHandler {
	return &CompleteAttemptHandler{
		attempts:  attempts,
		exercises: exercises,
		events:    events,
	}
}

// Handle executes the complete attempt command.
func (h *CompleteAttemptHandler) Handle(ctx context.Context, cmd CompleteAttemptCommand) (*CompleteAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_attempt: validation failed: %w", err)
	}

	attempt, err := h.attempts.GetByID(ctx, cmd.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("complete_attempt: failed to get attempt: %w", err)
	}

	if attempt.UserID != cmd.UserID {
		return nil, shared.ErrForbidden
	}

	exercise, err := h.exercises.GetByID(ctx, attempt.ExerciseID)
	if err != nil {
		return nil, fmt.Errorf("complete_attempt: failed to get exercise: %w", err)
	}

	// Grading mutates the answers in place; Complete freezes the attempt.
	result := assessment.GradeAttempt(exercise, attempt)

	if err := attempt.Complete(result.TotalScore); err != nil {
		return nil, fmt.Errorf("complete_attempt: %w", err)
	}

	// Complete in storage is guarded on the in_progress status, so a
	// concurrent completion grades at most once.
	if err := h.attempts.Complete(ctx, attempt); err != nil {
		return nil, fmt.Errorf("complete_attempt: failed to complete attempt: %w", err)
	}

	if h.events != nil {
		event := shared.NewAttemptCompletedEvent(
			attempt.ID,
			attempt.UserID,
			attempt.ExerciseID,
			result.TotalScore,
			result.CorrectCount,
		)
		if err := h.events.Publish(event); err != nil {
			return nil, fmt.Errorf("complete_attempt: failed to publish event: %w", err)
		}
	}

	return &CompleteAttemptResult{
		AttemptID:    attempt.ID,
		TotalScore:   result.TotalScore,
		MaxScore:     result.MaxScore,
		CorrectCount: result.CorrectCount,
	}, nil
}
