package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/gamification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/internal/infrastructure/service"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LESSON COMPLETED HANDLER
// Обрабатывает событие завершения урока студентом.
//
// Ключевые функции:
// 1. Начисление XP за урок — с дедупликацией по (user, lesson)
// 2. Прогресс челленджей с целью complete_lessons
//
// Повторное прохождение того же урока XP не приносит: леджер
// отбрасывает дубликат, прогресс челленджа при этом тоже не растёт.
// ═══════════════════════════════════════════════════════════════════════════

// LessonCompletedConfig содержит конфигурацию обработчика.
type LessonCompletedConfig struct {
	// XPPerLesson — количество XP за завершённый урок.
	XPPerLesson int
}

// DefaultLessonCompletedConfig возвращает конфигурацию по умолчанию.
func DefaultLessonCompletedConfig() LessonCompletedConfig {
	return LessonCompletedConfig{
		XPPerLesson: 10,
	}
}

// OnLessonCompletedHandler обрабатывает событие завершения урока.
type OnLessonCompletedHandler struct {
	progression *service.ProgressionService
	tracker     *ChallengeProgressTracker
	logger      *slog.Logger
	config      LessonCompletedConfig
}

// NewOnLessonCompletedHandler создаёт новый обработчик события урока.
func NewOnLessonCompletedHandler(
	progression *service.ProgressionService,
	tracker *ChallengeProgressTracker,
	logger *slog.Logger,
	config LessonCompletedConfig,
) *OnLessonCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnLessonCompletedHandler{
		progression: progression,
		tracker:     tracker,
		logger:      logger.With("handler", "on_lesson_completed"),
		config:      config,
	}
}

// Handle обрабатывает событие завершения урока.
// Реализует интерфейс shared.EventHandler.
func (h *OnLessonCompletedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	lessonEvent, ok := event.(shared.LessonCompletedEvent)
	if !ok {
		h.logger.Warn("received non-LessonCompletedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing lesson completed event",
		"user_id", lessonEvent.UserID,
		"lesson_id", lessonEvent.LessonID,
		"course_id", lessonEvent.CourseID,
	)

	outcome, err := h.progression.AwardXP(ctx, service.AwardParams{
		UserID:     lessonEvent.UserID,
		Amount:     h.config.XPPerLesson,
		SourceType: gamification.SourceLesson,
		SourceID:   lessonEvent.LessonID,
	})
	if err != nil {
		return fmt.Errorf("award lesson xp: %w", err)
	}

	// Дубликат означает повторное прохождение урока: прогресс
	// челленджей за него не начисляется.
	if outcome.Duplicate {
		h.logger.Debug("lesson already credited",
			"user_id", lessonEvent.UserID,
			"lesson_id", lessonEvent.LessonID,
		)
		return nil
	}

	if h.tracker != nil {
		if err := h.tracker.Record(ctx, lessonEvent.UserID, challenge.ObjectiveCompleteLessons); err != nil {
			h.logger.Error("failed to record challenge progress",
				"user_id", lessonEvent.UserID,
				"error", err,
			)
		}
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnLessonCompletedHandler) EventType() shared.EventType {
	return shared.EventLessonCompleted
}
