package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-hub/campus-lms/internal/domain/assessment"
	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/gamification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/internal/infrastructure/service"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ATTEMPT COMPLETED HANDLER
// Обрабатывает событие завершения попытки по упражнению.
//
// Ключевые функции:
// 1. Начисление XP — размер награды берётся из упражнения
// 2. Прогресс челленджей с целью complete_exercises
//
// Дедупликация идёт по ID попытки: каждая завершённая попытка
// засчитывается один раз, но несколько попыток по одному упражнению
// приносят XP каждая.
// ═══════════════════════════════════════════════════════════════════════════

// OnAttemptCompletedHandler обрабатывает событие завершения попытки.
type OnAttemptCompletedHandler struct {
	exercises   assessment.ExerciseRepository
	progression *service.ProgressionService
	tracker     *ChallengeProgressTracker
	logger      *slog.Logger
}

// NewOnAttemptCompletedHandler создаёт новый обработчик события попытки.
func NewOnAttemptCompletedHandler(
	exercises assessment.ExerciseRepository,
	progression *service.ProgressionService,
	tracker *ChallengeProgressTracker,
	logger *slog.Logger,
) *OnAttemptCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnAttemptCompletedHandler{
		exercises:   exercises,
		progression: progression,
		tracker:     tracker,
		logger:      logger.With("handler", "on_attempt_completed"),
	}
}

// Handle обрабатывает событие завершения попытки.
// Реализует интерфейс shared.EventHandler.
func (h *OnAttemptCompletedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	attemptEvent, ok := event.(shared.AttemptCompletedEvent)
	if !ok {
		h.logger.Warn("received non-AttemptCompletedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing attempt completed event",
		"user_id", attemptEvent.UserID,
		"attempt_id", attemptEvent.AttemptID,
		"exercise_id", attemptEvent.ExerciseID,
		"total_score", attemptEvent.TotalScore,
	)

	exercise, err := h.exercises.GetByID(ctx, attemptEvent.ExerciseID)
	if err != nil {
		return fmt.Errorf("get exercise: %w", err)
	}

	if exercise.XPReward > 0 {
		_, err := h.progression.AwardXP(ctx, service.AwardParams{
			UserID:     attemptEvent.UserID,
			Amount:     exercise.XPReward,
			SourceType: gamification.SourceAttempt,
			SourceID:   attemptEvent.AttemptID,
		})
		if err != nil {
			return fmt.Errorf("award attempt xp: %w", err)
		}
	}

	if h.tracker != nil {
		if err := h.tracker.Record(ctx, attemptEvent.UserID, challenge.ObjectiveCompleteExercises); err != nil {
			h.logger.Error("failed to record challenge progress",
				"user_id", attemptEvent.UserID,
				"error", err,
			)
		}
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnAttemptCompletedHandler) EventType() shared.EventType {
	return shared.EventAttemptCompleted
}
