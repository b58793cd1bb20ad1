package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-lms/internal/domain/assessment"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ANSWER COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAnswerCommand contains the data for submitting one answer.
// Exactly one of SelectedOptionID, TextResponse or FileURL is expected,
// depending on the question type.
type SubmitAnswerCommand struct {
	// UserID is the student submitting the answer.
	UserID int64

	// AttemptID is the attempt the answer belongs to.
	AttemptID string

	// QuestionID is the question being answered.
	QuestionID string

	// SelectedOptionID is the chosen option (multiple_choice, true_false).
	SelectedOptionID string

	// TextResponse is the free-text answer (free_text).
	TextResponse string

	// FileURL is the uploaded file reference (file_upload).
	FileURL string
}

// Validate validates the command.
func (c SubmitAnswerCommand) Validate() error {
	if c.UserID <= 0 {
		return fmt.Errorf("submit_answer: invalid user_id: %d", c.UserID)
	}

	if !shared.IsUUID(c.AttemptID) {
		return fmt.Errorf("submit_answer: invalid attempt_id: %s", c.AttemptID)
	}

	if !shared.IsUUID(c.QuestionID) {
		return fmt.Errorf("submit_answer: invalid question_id: %s", c.QuestionID)
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAnswerHandler handles the SubmitAnswerCommand.
type SubmitAnswerHandler struct {
	attempts  assessment.AttemptRepository
	exercises assessment.ExerciseRepository
}

// NewSubmitAnswerHandler creates a new SubmitAnswerHandler.
func NewSubmitAnswerHandler(
	attempts assessment.AttemptRepository,
	exercises assessment.ExerciseRepository,
) *SubmitAnswerHandler {
	return &SubmitAnswerHandler{
		attempts:  attempts,
		exercises: exercises,
	}
}

// Handle executes the submit answer command.
func (h *SubmitAnswerHandler) Handle(ctx context.Context, cmd SubmitAnswerCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("submit_answer: validation failed: %w", err)
	}

	attempt, err := h.attempts.GetByID(ctx, cmd.AttemptID)
	if err != nil {
		return fmt.Errorf("submit_answer: failed to get attempt: %w", err)
	}

	if attempt.UserID != cmd.UserID {
		return shared.ErrForbidden
	}

	exercise, err := h.exercises.GetByID(ctx, attempt.ExerciseID)
	if err != nil {
		return fmt.Errorf("submit_answer: failed to get exercise: %w", err)
	}

	question := exercise.FindQuestion(cmd.QuestionID)
	if question == nil {
		return assessment.ErrQuestionNotInExercise
	}

	if cmd.SelectedOptionID != "" && question.FindOption(cmd.SelectedOptionID) == nil {
		return assessment.ErrOptionNotInQuestion
	}

	// PutAnswer keeps the existing row ID when the question was already
	// answered; the fresh UUID is only used for first submissions.
	answer := assessment.Answer{
		ID:               uuid.NewString(),
		QuestionID:       cmd.QuestionID,
		SelectedOptionID: cmd.SelectedOptionID,
		TextResponse:     cmd.TextResponse,
		FileURL:          cmd.FileURL,
	}

	if err := attempt.PutAnswer(answer); err != nil {
		return fmt.Errorf("submit_answer: %w", err)
	}

	if err := h.attempts.Update(ctx, attempt); err != nil {
		return fmt.Errorf("submit_answer: failed to update attempt: %w", err)
	}

	return nil
}
