// Package challenge содержит доменную модель челленджей и их назначений студентам.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package challenge

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Kind определяет периодичность челленджа.
type Kind string

const (
	// KindDaily - ежедневный челлендж, окно действует один день.
	KindDaily Kind = "daily"
	// KindWeekly - еженедельный челлендж, окно действует одну ISO-неделю.
	KindWeekly Kind = "weekly"
	// KindSpecial - разовый челлендж с явным периодом действия.
	KindSpecial Kind = "special"
)

// IsValid проверяет, что вид челленджа корректен.
func (k Kind) IsValid() bool {
	switch k {
	case KindDaily, KindWeekly, KindSpecial:
		return true
	default:
		return false
	}
}

// IsRecurring возвращает true, если челлендж выдаётся повторно каждое окно.
func (k Kind) IsRecurring() bool {
	return k == KindDaily || k == KindWeekly
}

// Objective определяет, какие действия студента засчитываются в прогресс.
type Objective string

const (
	// ObjectiveCompleteLessons - завершать уроки.
	ObjectiveCompleteLessons Objective = "complete_lessons"
	// ObjectiveCompleteExercises - завершать попытки упражнений.
	ObjectiveCompleteExercises Objective = "complete_exercises"
	// ObjectiveCompleteCourses - завершать курсы целиком.
	ObjectiveCompleteCourses Objective = "complete_courses"
)

// IsValid проверяет, что цель челленджа корректна.
func (o Objective) IsValid() bool {
	switch o {
	case ObjectiveCompleteLessons, ObjectiveCompleteExercises, ObjectiveCompleteCourses:
		return true
	default:
		return false
	}
}

// AssignmentStatus определяет статус назначения челленджа студенту.
type AssignmentStatus string

const (
	// AssignmentPending - назначение выдано, но прогресса ещё не было.
	AssignmentPending AssignmentStatus = "pending"
	// AssignmentInProgress - студент начал копить прогресс.
	AssignmentInProgress AssignmentStatus = "in_progress"
	// AssignmentCompleted - цель достигнута, награда ещё не забрана.
	AssignmentCompleted AssignmentStatus = "completed"
	// AssignmentClaimed - награда забрана.
	AssignmentClaimed AssignmentStatus = "claimed"
	// AssignmentExpired - окно закрылось до достижения цели.
	AssignmentExpired AssignmentStatus = "expired"
)

// IsValid проверяет, что статус назначения корректен.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentPending, AssignmentInProgress, AssignmentCompleted, AssignmentClaimed, AssignmentExpired:
		return true
	default:
		return false
	}
}

// IsOpen возвращает true, если назначение ещё может копить прогресс.
func (s AssignmentStatus) IsOpen() bool {
	return s == AssignmentPending || s == AssignmentInProgress
}

// IsClaimable возвращает true, если награду можно забрать.
func (s AssignmentStatus) IsClaimable() bool {
	return s == AssignmentCompleted
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: CHALLENGE
// ══════════════════════════════════════════════════════════════════════════════

// Challenge - шаблон челленджа, по которому выдаются назначения студентам.
type Challenge struct {
	// ID - уникальный идентификатор челленджа (UUID).
	ID string

	// Kind - периодичность челленджа.
	Kind Kind

	// Objective - какие действия засчитываются.
	Objective Objective

	// Title - название челленджа.
	Title string

	// Target - сколько действий нужно выполнить.
	Target int

	// XPReward - награда XP за выполнение.
	XPReward int

	// BadgeCode - код бейджа, выдаваемого при получении награды
	// (пустой, если бейдж не предусмотрен).
	BadgeCode string

	// Active - участвует ли челлендж в выдаче назначений.
	Active bool

	// StartsAt - начало действия (только для special).
	StartsAt *time.Time

	// EndsAt - конец действия (только для special).
	EndsAt *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Assignment - назначение челленджа конкретному студенту в конкретном окне.
type Assignment struct {
	// ID - уникальный идентификатор назначения (UUID).
	ID string

	// ChallengeID - челлендж, по которому выдано назначение.
	ChallengeID string

	// UserID - идентификатор студента.
	UserID int64

	// WindowKey - ключ окна. Пара (ChallengeID, UserID, WindowKey) уникальна,
	// поэтому повторная выдача в том же окне невозможна.
	WindowKey string

	// Status - текущий статус назначения.
	Status AssignmentStatus

	// Progress - накопленный прогресс (0..Target).
	Progress int

	// Target - снимок цели челленджа на момент выдачи.
	Target int

	// IssuedAt - время выдачи назначения.
	IssuedAt time.Time

	// ExpiresAt - время закрытия окна.
	ExpiresAt time.Time

	// CompletedAt - время достижения цели (nil, если не достигнута).
	CompletedAt *time.Time

	// ClaimedAt - время получения награды (nil, если не забрана).
	ClaimedAt *time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidKind - невалидный вид челленджа.
	ErrInvalidKind = errors.New("invalid challenge kind")

	// ErrInvalidObjective - невалидная цель челленджа.
	ErrInvalidObjective = errors.New("invalid challenge objective")

	// ErrInvalidTarget - цель должна быть положительной.
	ErrInvalidTarget = errors.New("challenge target must be positive")

	// ErrSpecialWindowRequired - special-челлендж требует период действия.
	ErrSpecialWindowRequired = errors.New("special challenge requires starts_at and ends_at")

	// ErrAssignmentNotInProgress - прогресс можно копить только в открытом назначении.
	ErrAssignmentNotInProgress = errors.New("assignment is not in progress")

	// ErrAssignmentExpired - окно назначения уже закрылось.
	ErrAssignmentExpired = errors.New("assignment window has expired")

	// ErrNotClaimable - награду можно забрать только из статуса completed.
	ErrNotClaimable = errors.New("assignment reward is not claimable")

	// ErrInvalidProgressDelta - прирост прогресса должен быть положительным.
	ErrInvalidProgressDelta = errors.New("progress delta must be positive")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewChallengeParams содержит параметры для создания нового челленджа.
type NewChallengeParams struct {
	ID        string
	Kind      Kind
	Objective Objective
	Title     string
	Target    int
	XPReward  int
	BadgeCode string
	StartsAt  *time.Time
	EndsAt    *time.Time
}

// NewChallenge создаёт новый челлендж с валидацией всех полей.
func NewChallenge(params NewChallengeParams) (*Challenge, error) {
	if params.ID == "" {
		return nil, errors.New("challenge id is required")
	}

	if !params.Kind.IsValid() {
		return nil, ErrInvalidKind
	}

	if !params.Objective.IsValid() {
		return nil, ErrInvalidObjective
	}

	if params.Target <= 0 {
		return nil, ErrInvalidTarget
	}

	if params.Kind == KindSpecial {
		if params.StartsAt == nil || params.EndsAt == nil || !params.EndsAt.After(*params.StartsAt) {
			return nil, ErrSpecialWindowRequired
		}
	}

	now := time.Now().UTC()

	return &Challenge{
		ID:        params.ID,
		Kind:      params.Kind,
		Objective: params.Objective,
		Title:     params.Title,
		Target:    params.Target,
		XPReward:  params.XPReward,
		BadgeCode: params.BadgeCode,
		Active:    true,
		StartsAt:  params.StartsAt,
		EndsAt:    params.EndsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// IsOpenAt возвращает true, если челлендж действует в указанный момент.
func (c *Challenge) IsOpenAt(at time.Time) bool {
	if !c.Active {
		return false
	}
	if c.Kind != KindSpecial {
		return true
	}
	return c.StartsAt != nil && c.EndsAt != nil &&
		!at.Before(*c.StartsAt) && at.Before(*c.EndsAt)
}

// Deactivate выводит челлендж из ротации.
func (c *Challenge) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now().UTC()
}

// IsExpiredAt возвращает true, если окно назначения уже закрылось.
func (a *Assignment) IsExpiredAt(at time.Time) bool {
	return !at.Before(a.ExpiresAt)
}

// RecordProgress добавляет delta к прогрессу назначения. Первый прирост
// переводит pending в in_progress. Прогресс не превышает цель; при её
// достижении назначение сразу помечается completed.
// Возвращает true, если именно этот вызов довёл прогресс до цели.
func (a *Assignment) RecordProgress(delta int, at time.Time) (completed bool, err error) {
	if delta <= 0 {
		return false, ErrInvalidProgressDelta
	}

	if !a.Status.IsOpen() {
		return false, ErrAssignmentNotInProgress
	}

	if a.IsExpiredAt(at) {
		return false, ErrAssignmentExpired
	}

	a.Status = AssignmentInProgress
	a.Progress += delta
	if a.Progress >= a.Target {
		a.Progress = a.Target
		a.Status = AssignmentCompleted
		completedAt := at.UTC()
		a.CompletedAt = &completedAt
		return true, nil
	}

	return false, nil
}

// Claim забирает награду за выполненное назначение. Повторный вызов
// возвращает ErrNotClaimable.
func (a *Assignment) Claim(at time.Time) error {
	if !a.Status.IsClaimable() {
		return ErrNotClaimable
	}

	a.Status = AssignmentClaimed
	claimedAt := at.UTC()
	a.ClaimedAt = &claimedAt
	return nil
}

// Expire закрывает назначение, не достигшее цели к закрытию окна.
func (a *Assignment) Expire(at time.Time) error {
	if !a.Status.IsOpen() {
		return ErrAssignmentNotInProgress
	}

	if !a.IsExpiredAt(at) {
		return errors.New("assignment window is still open")
	}

	a.Status = AssignmentExpired
	return nil
}

// Completion - снимок выполненного назначения на момент получения награды.
// Хранится отдельно от назначения: прогресс и начисленный XP фиксируются
// такими, какими они были при claim.
type Completion struct {
	// ID - уникальный идентификатор снимка (UUID).
	ID string

	// ChallengeID - челлендж, по которому забрана награда.
	ChallengeID string

	// UserID - идентификатор студента.
	UserID int64

	// Progress - накопленный прогресс на момент claim.
	Progress int

	// Target - цель назначения.
	Target int

	// XPEarned - фактически начисленный XP (0 для чисто бейджевых челленджей).
	XPEarned int

	// ClaimedAt - время получения награды.
	ClaimedAt time.Time
}

// CompletionSnapshot формирует снимок выполнения по забранному назначению.
func (a *Assignment) CompletionSnapshot(id string, xpEarned int) *Completion {
	claimedAt := time.Now().UTC()
	if a.ClaimedAt != nil {
		claimedAt = *a.ClaimedAt
	}

	return &Completion{
		ID:          id,
		ChallengeID: a.ChallengeID,
		UserID:      a.UserID,
		Progress:    a.Progress,
		Target:      a.Target,
		XPEarned:    xpEarned,
		ClaimedAt:   claimedAt,
	}
}

// String возвращает строковое представление назначения для логирования.
func (a *Assignment) String() string {
	return fmt.Sprintf(
		"Assignment{ID: %s, Challenge: %s, User: %d, Window: %s, Progress: %d/%d, Status: %s}",
		a.ID, a.ChallengeID, a.UserID, a.WindowKey, a.Progress, a.Target, a.Status,
	)
}

// Clone создаёт глубокую копию назначения.
func (a *Assignment) Clone() *Assignment {
	if a == nil {
		return nil
	}

	clone := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		clone.CompletedAt = &t
	}
	if a.ClaimedAt != nil {
		t := *a.ClaimedAt
		clone.ClaimedAt = &t
	}
	return &clone
}
