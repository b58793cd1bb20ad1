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
// ON COURSE COMPLETED HANDLER
// Обрабатывает событие полного прохождения курса.
//
// Ключевые функции:
// 1. Начисление XP за курс — с дедупликацией по (user, course)
// 2. Прогресс челленджей с целью complete_courses
// ═══════════════════════════════════════════════════════════════════════════

// CourseCompletedConfig содержит конфигурацию обработчика.
type CourseCompletedConfig struct {
	// XPPerCourse — количество XP за завершённый курс.
	XPPerCourse int
}

// DefaultCourseCompletedConfig возвращает конфигурацию по умолчанию.
func DefaultCourseCompletedConfig() CourseCompletedConfig {
	return CourseCompletedConfig{
		XPPerCourse: 100,
	}
}

// OnCourseCompletedHandler обрабатывает событие завершения курса.
type OnCourseCompletedHandler struct {
	progression *service.ProgressionService
	tracker     *ChallengeProgressTracker
	logger      *slog.Logger
	config      CourseCompletedConfig
}

// NewOnCourseCompletedHandler создаёт новый обработчик события курса.
func NewOnCourseCompletedHandler(
	progression *service.ProgressionService,
	tracker *ChallengeProgressTracker,
	logger *slog.Logger,
	config CourseCompletedConfig,
) *OnCourseCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnCourseCompletedHandler{
		progression: progression,
		tracker:     tracker,
		logger:      logger.With("handler", "on_course_completed"),
		config:      config,
	}
}

// Handle обрабатывает событие завершения курса.
// Реализует интерфейс shared.EventHandler.
func (h *OnCourseCompletedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	courseEvent, ok := event.(shared.CourseCompletedEvent)
	if !ok {
		h.logger.Warn("received non-CourseCompletedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing course completed event",
		"user_id", courseEvent.UserID,
		"course_id", courseEvent.CourseID,
	)

	outcome, err := h.progression.AwardXP(ctx, service.AwardParams{
		UserID:     courseEvent.UserID,
		Amount:     h.config.XPPerCourse,
		SourceType: gamification.SourceCourse,
		SourceID:   courseEvent.CourseID,
	})
	if err != nil {
		return fmt.Errorf("award course xp: %w", err)
	}

	if outcome.Duplicate {
		h.logger.Debug("course already credited",
			"user_id", courseEvent.UserID,
			"course_id", courseEvent.CourseID,
		)
		return nil
	}

	if h.tracker != nil {
		if err := h.tracker.Record(ctx, courseEvent.UserID, challenge.ObjectiveCompleteCourses); err != nil {
			h.logger.Error("failed to record challenge progress",
				"user_id", courseEvent.UserID,
				"error", err,
			)
		}
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnCourseCompletedHandler) EventType() shared.EventType {
	return shared.EventCourseCompleted
}
