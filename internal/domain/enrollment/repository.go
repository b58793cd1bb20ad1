package enrollment

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения зачислений.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт новое зачисление.
	// Возвращает ErrAlreadyEnrolled, если у студента уже есть
	// открытое зачисление на этот курс.
	Create(ctx context.Context, e *Enrollment) error

	// GetByID возвращает зачисление по ID.
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// GetOpen возвращает открытое (pending или active) зачисление
	// студента на курс, если оно есть.
	GetOpen(ctx context.Context, userID int64, courseID string) (*Enrollment, error)

	// Update сохраняет изменённое зачисление.
	Update(ctx context.Context, e *Enrollment) error

	// ─────────────────────────────────────────────────────────────────────────
	// Queries
	// ─────────────────────────────────────────────────────────────────────────

	// ListByUser возвращает зачисления студента.
	ListByUser(ctx context.Context, userID int64) ([]*Enrollment, error)

	// ListByCourse возвращает зачисления на курс с указанным статусом.
	ListByCourse(ctx context.Context, courseID string, status Status) ([]*Enrollment, error)

	// ListPending возвращает запросы, ожидающие одобрения на курсе.
	ListPending(ctx context.Context, courseID string) ([]*Enrollment, error)

	// CountActive возвращает количество активных студентов на курсе.
	CountActive(ctx context.Context, courseID string) (int, error)

	// HasActive проверяет, есть ли у студента активное зачисление на курс.
	HasActive(ctx context.Context, userID int64, courseID string) (bool, error)
}

// CourseRepository определяет операции хранения курсов.
type CourseRepository interface {
	// Create создаёт новый курс.
	Create(ctx context.Context, c *Course) error

	// GetByID возвращает курс по ID.
	GetByID(ctx context.Context, id string) (*Course, error)

	// Update сохраняет изменённый курс.
	Update(ctx context.Context, c *Course) error

	// ListPublished возвращает опубликованные курсы.
	ListPublished(ctx context.Context) ([]*Course, error)
}
