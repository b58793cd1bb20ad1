package eventhandler

import (
	"context"
	"log/slog"

	"github.com/campus-hub/campus-lms/internal/domain/notification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
// Поздравляет студента с новым уровнем. Чисто уведомительный
// обработчик: никакого состояния не меняет.
// ═══════════════════════════════════════════════════════════════════════════

// OnLevelUpHandler обрабатывает событие повышения уровня.
type OnLevelUpHandler struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewOnLevelUpHandler создаёт новый обработчик повышения уровня.
func NewOnLevelUpHandler(notifier Notifier, logger *slog.Logger) *OnLevelUpHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnLevelUpHandler{
		notifier: notifier,
		logger:   logger.With("handler", "on_level_up"),
	}
}

// Handle обрабатывает событие повышения уровня.
// Реализует интерфейс shared.EventHandler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	levelEvent, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.logger.Warn("received non-LevelUpEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("student leveled up",
		"user_id", levelEvent.UserID,
		"old_level", levelEvent.OldLevel,
		"new_level", levelEvent.NewLevel,
	)

	if h.notifier == nil {
		return nil
	}

	return h.notifier.Notify(
		context.Background(),
		levelEvent.UserID,
		notification.TypeLevelUp,
		levelEvent.NewLevel,
		levelEvent.TotalXP,
	)
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnLevelUpHandler) EventType() shared.EventType {
	return shared.EventLevelUp
}
