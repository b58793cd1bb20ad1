// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-lms/internal/domain/challenge"
	"github.com/campus-hub/campus-lms/internal/domain/notification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
	"github.com/campus-hub/campus-lms/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-lms/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// CHALLENGE PROGRESS
// Общая логика учёта прогресса челленджей, используемая обработчиками
// lesson/attempt/course-событий.
//
// Назначение выдаётся лениво: если у студента ещё нет назначения на
// активный челлендж в текущем окне, оно создаётся прямо здесь. Плановая
// выдача по расписанию покрывает активных студентов заранее, ленивая -
// всех остальных; Create идемпотентен, поэтому оба пути безопасны.
// ═══════════════════════════════════════════════════════════════════════════

// Notifier доставляет уведомления студентам.
type Notifier interface {
	Notify(ctx context.Context, userID int64, t notification.Type, args ...interface{}) error
}

// ChallengeProgressTracker записывает прогресс по событию.
type ChallengeProgressTracker struct {
	conn       *postgres.Connection
	challenges challenge.Repository
	events     shared.EventPublisher
	notifier   Notifier
	logger     *slog.Logger
}

// NewChallengeProgressTracker создаёт новый трекер прогресса.
func NewChallengeProgressTracker(
	conn *postgres.Connection,
	challenges challenge.Repository,
	events shared.EventPublisher,
	notifier Notifier,
	logger *slog.Logger,
) *ChallengeProgressTracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChallengeProgressTracker{
		conn:       conn,
		challenges: challenges,
		events:     events,
		notifier:   notifier,
		logger:     logger.With("component", "challenge_progress"),
	}
}

// Record увеличивает прогресс студента на 1 по всем активным челленджам
// с указанной целью. Ошибка по одному челленджу не прерывает остальные.
func (t *ChallengeProgressTracker) Record(ctx context.Context, userID int64, objective challenge.Objective) error {
	now := timeutil.Now()

	active, err := t.challenges.ListActiveByObjective(ctx, objective, now)
	if err != nil {
		return fmt.Errorf("list active challenges: %w", err)
	}

	var firstErr error
	for _, c := range active {
		if err := t.recordOne(ctx, c, userID); err != nil {
			t.logger.Error("failed to record challenge progress",
				"challenge_id", c.ID,
				"user_id", userID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// recordOne выдаёт назначение (если его ещё нет) и увеличивает прогресс.
func (t *ChallengeProgressTracker) recordOne(ctx context.Context, c *challenge.Challenge, userID int64) error {
	now := timeutil.Now()

	issued, err := c.Issue(uuid.NewString(), userID, now)
	if err != nil {
		return fmt.Errorf("issue assignment: %w", err)
	}

	var (
		updated   *challenge.Assignment
		completed bool
	)
	err = t.conn.WithTx(ctx, func(tx pgx.Tx) error {
		assignments := postgres.NewAssignmentRepositoryTx(tx)

		stored, err := assignments.Create(ctx, issued)
		if err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		// Перечитываем под блокировкой: между Create и инкрементом
		// мог вклиниться параллельный обработчик.
		a, err := assignments.GetByIDForUpdate(ctx, stored.ID)
		if err != nil {
			return fmt.Errorf("lock assignment: %w", err)
		}

		done, err := a.RecordProgress(1, now)
		if err != nil {
			// Истёкшее или уже выполненное назначение - не сбой учёта.
			t.logger.Debug("assignment not progressable",
				"assignment_id", a.ID,
				"status", a.Status,
				"error", err,
			)
			return nil
		}

		if err := assignments.Update(ctx, a); err != nil {
			return fmt.Errorf("update assignment: %w", err)
		}

		updated = a
		completed = done
		return nil
	})
	if err != nil {
		return err
	}

	if completed {
		t.onCompleted(ctx, c, updated)
	}

	return nil
}

// onCompleted публикует событие и уведомляет студента о выполнении.
func (t *ChallengeProgressTracker) onCompleted(ctx context.Context, c *challenge.Challenge, a *challenge.Assignment) {
	t.logger.Info("challenge completed",
		"challenge_id", c.ID,
		"assignment_id", a.ID,
		"user_id", a.UserID,
	)

	if t.events != nil {
		event := shared.NewChallengeCompletedEvent(a.ID, c.ID, a.UserID, a.Progress, a.Target)
		if err := t.events.Publish(event); err != nil {
			t.logger.Error("failed to publish challenge completed event",
				"assignment_id", a.ID,
				"error", err,
			)
		}
	}

	if t.notifier != nil {
		if err := t.notifier.Notify(ctx, a.UserID, notification.TypeChallengeCompleted, c.Title, c.XPReward); err != nil {
			t.logger.Warn("failed to notify challenge completion",
				"assignment_id", a.ID,
				"error", err,
			)
		}
	}
}
