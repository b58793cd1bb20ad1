package assessment

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ExerciseRepository определяет операции хранения упражнений.
type ExerciseRepository interface {
	// Create создаёт упражнение вместе с вопросами и вариантами.
	Create(ctx context.Context, e *Exercise) error

	// GetByID возвращает упражнение с вопросами и вариантами.
	GetByID(ctx context.Context, id string) (*Exercise, error)

	// Update сохраняет изменённое упражнение.
	Update(ctx context.Context, e *Exercise) error

	// ListByCourse возвращает упражнения курса.
	ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]*Exercise, error)
}

// AttemptRepository определяет операции хранения попыток.
type AttemptRepository interface {
	// Create создаёт новую попытку.
	Create(ctx context.Context, a *Attempt) error

	// GetByID возвращает попытку вместе с ответами.
	GetByID(ctx context.Context, id string) (*Attempt, error)

	// Update сохраняет попытку и её ответы.
	// Ответы записываются с семантикой upsert по (attempt_id, question_id).
	Update(ctx context.Context, a *Attempt) error

	// Complete сохраняет завершённую попытку. Запись обновляется только
	// из статуса in_progress; конкурирующее завершение получает
	// ErrAttemptAlreadyCompleted.
	Complete(ctx context.Context, a *Attempt) error

	// ListByUser возвращает попытки студента по упражнению.
	ListByUser(ctx context.Context, userID int64, exerciseID string) ([]*Attempt, error)

	// CountCompleted возвращает количество завершённых попыток
	// студента по упражнению.
	CountCompleted(ctx context.Context, userID int64, exerciseID string) (int, error)
}
