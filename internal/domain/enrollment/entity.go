// Package enrollment содержит доменную модель зачисления студента на курс.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package enrollment

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Mode определяет политику приёма на курс.
type Mode string

const (
	// ModeAutoAccept - любой запрос зачисления сразу активируется.
	ModeAutoAccept Mode = "auto_accept"
	// ModeKeyBased - зачисление требует правильный ключ курса.
	ModeKeyBased Mode = "key_based"
	// ModeApproval - зачисление ожидает ручного одобрения преподавателем.
	ModeApproval Mode = "approval"
)

// IsValid проверяет, что режим приёма корректен.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAutoAccept, ModeKeyBased, ModeApproval:
		return true
	default:
		return false
	}
}

// RequiresKey возвращает true, если режим требует ключ зачисления.
func (m Mode) RequiresKey() bool {
	return m == ModeKeyBased
}

// Status определяет текущий статус зачисления.
type Status string

const (
	// StatusPending - запрос ожидает одобрения преподавателем.
	StatusPending Status = "pending"
	// StatusActive - студент зачислен и учится.
	StatusActive Status = "active"
	// StatusCompleted - студент успешно завершил курс.
	StatusCompleted Status = "completed"
	// StatusCancelled - студент отменил свой запрос до одобрения.
	StatusCancelled Status = "cancelled"
	// StatusDeclined - преподаватель отклонил запрос.
	StatusDeclined Status = "declined"
	// StatusWithdrawn - студент сам покинул курс.
	StatusWithdrawn Status = "withdrawn"
	// StatusRemoved - преподаватель отчислил студента.
	StatusRemoved Status = "removed"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted,
		StatusCancelled, StatusDeclined, StatusWithdrawn, StatusRemoved:
		return true
	default:
		return false
	}
}

// IsOpen возвращает true, если зачисление занимает место на курсе
// и блокирует повторную запись на тот же курс. Завершённый курс тоже
// блокирует: пройденный курс нельзя пройти второй раз.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusActive || s == StatusCompleted
}

// IsTerminal возвращает true, если зачисление больше не изменится.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusDeclined, StatusWithdrawn, StatusRemoved:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment - сущность зачисления студента на конкретный курс.
type Enrollment struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// UserID - идентификатор студента.
	UserID int64

	// CourseID - идентификатор курса (UUID).
	CourseID string

	// Status - текущий статус зачисления.
	Status Status

	// Mode - режим приёма, действовавший на момент запроса.
	Mode Mode

	// RequestedAt - время подачи запроса.
	RequestedAt time.Time

	// ActivatedAt - время активации зачисления (nil, если не активировано).
	ActivatedAt *time.Time

	// CompletedAt - время завершения курса (nil, если не завершён).
	CompletedAt *time.Time

	// DecidedBy - идентификатор преподавателя, принявшего решение (0, если решения не было).
	DecidedBy int64

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidUserID - невалидный идентификатор студента.
	ErrInvalidUserID = errors.New("invalid user id: must be positive")

	// ErrInvalidCourseID - невалидный идентификатор курса.
	ErrInvalidCourseID = errors.New("invalid course id: must not be empty")

	// ErrInvalidMode - невалидный режим приёма.
	ErrInvalidMode = errors.New("invalid enrollment mode")

	// ErrInvalidStatus - невалидный статус зачисления.
	ErrInvalidStatus = errors.New("invalid enrollment status")

	// ErrInvalidTransition - недопустимый переход между статусами.
	// Зачисление при этом НЕ изменяется.
	ErrInvalidTransition = errors.New("invalid enrollment state transition")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewEnrollmentParams содержит параметры для создания нового зачисления.
type NewEnrollmentParams struct {
	ID            string
	UserID        int64
	CourseID      string
	Mode          Mode
	InitialStatus Status
}

// NewEnrollment создаёт новое зачисление с валидацией всех полей.
// InitialStatus определяется политикой приёма (см. policy.go).
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	if params.ID == "" {
		return nil, errors.New("enrollment id is required")
	}

	if params.UserID <= 0 {
		return nil, ErrInvalidUserID
	}

	if params.CourseID == "" {
		return nil, ErrInvalidCourseID
	}

	if !params.InitialStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	if params.InitialStatus != StatusPending && params.InitialStatus != StatusActive {
		return nil, fmt.Errorf("%w: enrollment must start as pending or active", ErrInvalidStatus)
	}

	now := time.Now().UTC()

	e := &Enrollment{
		ID:          params.ID,
		UserID:      params.UserID,
		CourseID:    params.CourseID,
		Status:      params.InitialStatus,
		Mode:        params.Mode,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if params.InitialStatus == StatusActive {
		e.ActivatedAt = &now
	}

	return e, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (State Machine)
// ══════════════════════════════════════════════════════════════════════════════

// transition переводит зачисление в новый статус, если переход разрешён.
// При недопустимом переходе возвращает ErrInvalidTransition, не меняя сущность.
func (e *Enrollment) transition(to Status, allowedFrom ...Status) error {
	for _, from := range allowedFrom {
		if e.Status == from {
			e.Status = to
			e.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, to)
}

// Approve одобряет ожидающий запрос. Вызывается преподавателем.
func (e *Enrollment) Approve(teacherID int64) error {
	if err := e.transition(StatusActive, StatusPending); err != nil {
		return err
	}
	now := e.UpdatedAt
	e.ActivatedAt = &now
	e.DecidedBy = teacherID
	return nil
}

// Decline отклоняет ожидающий запрос. Вызывается преподавателем.
func (e *Enrollment) Decline(teacherID int64) error {
	if err := e.transition(StatusDeclined, StatusPending); err != nil {
		return err
	}
	e.DecidedBy = teacherID
	return nil
}

// Cancel отменяет собственный запрос студента до его одобрения.
func (e *Enrollment) Cancel() error {
	return e.transition(StatusCancelled, StatusPending)
}

// Withdraw - студент сам покидает активный курс.
func (e *Enrollment) Withdraw() error {
	return e.transition(StatusWithdrawn, StatusActive)
}

// Remove отчисляет студента. Разрешено из pending и active.
func (e *Enrollment) Remove(teacherID int64) error {
	if err := e.transition(StatusRemoved, StatusPending, StatusActive); err != nil {
		return err
	}
	e.DecidedBy = teacherID
	return nil
}

// Complete помечает курс завершённым для этого студента.
func (e *Enrollment) Complete() error {
	if err := e.transition(StatusCompleted, StatusActive); err != nil {
		return err
	}
	now := e.UpdatedAt
	e.CompletedAt = &now
	return nil
}

// IsActive возвращает true, если студент сейчас зачислен и учится.
func (e *Enrollment) IsActive() bool {
	return e.Status == StatusActive
}

// String возвращает строковое представление зачисления для логирования.
func (e *Enrollment) String() string {
	return fmt.Sprintf(
		"Enrollment{ID: %s, User: %d, Course: %s, Status: %s}",
		e.ID, e.UserID, e.CourseID, e.Status,
	)
}

// Clone создаёт глубокую копию зачисления.
func (e *Enrollment) Clone() *Enrollment {
	if e == nil {
		return nil
	}

	clone := *e
	if e.ActivatedAt != nil {
		t := *e.ActivatedAt
		clone.ActivatedAt = &t
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
