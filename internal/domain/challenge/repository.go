package challenge

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения челленджей.
type Repository interface {
	// Create создаёт новый челлендж.
	Create(ctx context.Context, c *Challenge) error

	// GetByID возвращает челлендж по ID.
	GetByID(ctx context.Context, id string) (*Challenge, error)

	// Update сохраняет изменённый челлендж.
	Update(ctx context.Context, c *Challenge) error

	// ListActive возвращает челленджи, действующие в указанный момент.
	ListActive(ctx context.Context, at time.Time) ([]*Challenge, error)

	// ListActiveByObjective возвращает действующие челленджи с указанной целью.
	ListActiveByObjective(ctx context.Context, objective Objective, at time.Time) ([]*Challenge, error)
}

// AssignmentRepository определяет операции хранения назначений.
type AssignmentRepository interface {
	// Create создаёт назначение. Если назначение с той же парой
	// (challenge, user, window) уже существует, вызов - no-op
	// и возвращается существующее назначение.
	Create(ctx context.Context, a *Assignment) (*Assignment, error)

	// GetByID возвращает назначение по ID.
	GetByID(ctx context.Context, id string) (*Assignment, error)

	// GetByIDForUpdate возвращает назначение с блокировкой строки
	// для безопасного read-modify-write внутри транзакции.
	GetByIDForUpdate(ctx context.Context, id string) (*Assignment, error)

	// Update сохраняет изменённое назначение.
	Update(ctx context.Context, a *Assignment) error

	// ListInProgress возвращает открытые (pending и in_progress) назначения
	// студента по челленджам с указанной целью.
	ListInProgress(ctx context.Context, userID int64, objective Objective) ([]*Assignment, error)

	// ListByUser возвращает назначения студента.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Assignment, error)

	// ListDueForExpiry возвращает открытые назначения с истёкшим окном.
	ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*Assignment, error)

	// RecordCompletion сохраняет снимок выполненного назначения.
	RecordCompletion(ctx context.Context, c *Completion) error
}
