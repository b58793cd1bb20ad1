// Package notification содержит доменную модель уведомлений платформы.
// Уведомления информируют студентов о прогрессе: новых уровнях,
// решениях по зачислениям и выполненных челленджах.
package notification

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет тип уведомления.
type Type string

const (
	// TypeEnrollmentActive - студент зачислен на открытый курс сразу.
	TypeEnrollmentActive Type = "enrollment_active"

	// TypeEnrollmentPending - запрос на зачисление ждёт решения преподавателя.
	TypeEnrollmentPending Type = "enrollment_pending"

	// TypeEnrollmentApproved - запрос на зачисление одобрен.
	TypeEnrollmentApproved Type = "enrollment_approved"

	// TypeEnrollmentDeclined - запрос на зачисление отклонён.
	TypeEnrollmentDeclined Type = "enrollment_declined"

	// TypeLevelUp - студент достиг нового уровня.
	TypeLevelUp Type = "level_up"

	// TypeChallengeCompleted - цель челленджа достигнута, награда ждёт.
	TypeChallengeCompleted Type = "challenge_completed"

	// TypeRewardClaimed - награда за челлендж получена.
	TypeRewardClaimed Type = "reward_claimed"

	// TypeCourseCompleted - курс завершён.
	TypeCourseCompleted Type = "course_completed"
)

// IsValid проверяет корректность типа уведомления.
func (t Type) IsValid() bool {
	switch t {
	case TypeEnrollmentActive, TypeEnrollmentPending,
		TypeEnrollmentApproved, TypeEnrollmentDeclined, TypeLevelUp,
		TypeChallengeCompleted, TypeRewardClaimed, TypeCourseCompleted:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL
// ══════════════════════════════════════════════════════════════════════════════

// ChannelType определяет тип канала доставки уведомлений.
type ChannelType string

const (
	// ChannelTypeEmail - доставка по email.
	ChannelTypeEmail ChannelType = "email"

	// ChannelTypeInApp - уведомления внутри приложения.
	ChannelTypeInApp ChannelType = "in_app"
)

// IsValid проверяет корректность типа канала.
func (ct ChannelType) IsValid() bool {
	return ct == ChannelTypeEmail || ct == ChannelTypeInApp
}

// Channel определяет контракт канала доставки.
// Реализации находятся в infrastructure.
type Channel interface {
	// Type возвращает тип канала.
	Type() ChannelType

	// Send доставляет уведомление получателю.
	Send(ctx context.Context, n *Notification) error
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус доставки уведомления.
type Status string

const (
	// StatusPending - уведомление ожидает отправки.
	StatusPending Status = "pending"
	// StatusSent - уведомление отправлено.
	StatusSent Status = "sent"
	// StatusFailed - доставка не удалась.
	StatusFailed Status = "failed"
)

// Notification - одно уведомление конкретному студенту.
type Notification struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// UserID - получатель.
	UserID int64

	// Type - тип уведомления.
	Type Type

	// Subject - заголовок.
	Subject string

	// Body - текст уведомления.
	Body string

	// Status - статус доставки.
	Status Status

	// CreatedAt - время создания.
	CreatedAt time.Time

	// SentAt - время отправки (nil, если не отправлено).
	SentAt *time.Time
}

var (
	// ErrInvalidType - невалидный тип уведомления.
	ErrInvalidType = errors.New("invalid notification type")

	// ErrEmptyBody - уведомление без текста.
	ErrEmptyBody = errors.New("notification body is empty")
)

// New создаёт уведомление с валидацией.
func New(id string, userID int64, notifType Type, subject, body string) (*Notification, error) {
	if !notifType.IsValid() {
		return nil, ErrInvalidType
	}

	if body == "" {
		return nil, ErrEmptyBody
	}

	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      notifType,
		Subject:   subject,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkSent помечает уведомление отправленным.
func (n *Notification) MarkSent() {
	now := time.Now().UTC()
	n.Status = StatusSent
	n.SentAt = &now
}

// MarkFailed помечает доставку неудавшейся.
func (n *Notification) MarkFailed() {
	n.Status = StatusFailed
}
