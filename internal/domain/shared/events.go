// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Enrollment events
	EventEnrollmentRequested EventType = "enrollment.requested"
	EventEnrollmentActivated EventType = "enrollment.activated"
	EventEnrollmentCancelled EventType = "enrollment.cancelled"
	EventEnrollmentCompleted EventType = "enrollment.completed"

	// Learning progress events (consumed by the challenge tracker)
	EventLessonCompleted EventType = "learning.lesson_completed"
	EventCourseCompleted EventType = "learning.course_completed"

	// Assessment events
	EventAttemptStarted   EventType = "assessment.attempt_started"
	EventAttemptCompleted EventType = "assessment.attempt_completed"

	// Gamification events
	EventXPAwarded EventType = "gamification.xp_awarded"
	EventLevelUp   EventType = "gamification.level_up"

	// Challenge events
	EventChallengeCompleted EventType = "challenge.completed"
	EventRewardClaimed      EventType = "challenge.reward_claimed"

	// Leaderboard events
	EventLeaderboardRebuilt EventType = "leaderboard.rebuilt"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// EnrollmentRequestedEvent is emitted when a student requests enrollment.
type EnrollmentRequestedEvent struct {
	BaseEvent
	EnrollmentID string `json:"enrollment_id"`
	UserID       int64  `json:"user_id"`
	CourseID     string `json:"course_id"`
	Status       string `json:"status"` // resolved admission outcome
}

// Payload implements Event interface.
func (e EnrollmentRequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"user_id":       e.UserID,
		"course_id":     e.CourseID,
		"status":        e.Status,
	}
}

// NewEnrollmentRequestedEvent creates a new EnrollmentRequestedEvent.
func NewEnrollmentRequestedEvent(enrollmentID string, userID int64, courseID, status string) EnrollmentRequestedEvent {
	return EnrollmentRequestedEvent{
		BaseEvent:    NewBaseEvent(EventEnrollmentRequested, enrollmentID),
		EnrollmentID: enrollmentID,
		UserID:       userID,
		CourseID:     courseID,
		Status:       status,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Learning Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// LessonCompletedEvent is emitted when a student completes a lesson.
type LessonCompletedEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	LessonID string `json:"lesson_id"`
	CourseID string `json:"course_id"`
}

// Payload implements Event interface.
func (e LessonCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"lesson_id": e.LessonID,
		"course_id": e.CourseID,
	}
}

// NewLessonCompletedEvent creates a new LessonCompletedEvent.
func NewLessonCompletedEvent(userID int64, lessonID, courseID string) LessonCompletedEvent {
	return LessonCompletedEvent{
		BaseEvent: NewBaseEvent(EventLessonCompleted, lessonID),
		UserID:    userID,
		LessonID:  lessonID,
		CourseID:  courseID,
	}
}

// CourseCompletedEvent is emitted when a student completes a whole course.
type CourseCompletedEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	CourseID     string `json:"course_id"`
	EnrollmentID string `json:"enrollment_id"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"course_id":     e.CourseID,
		"enrollment_id": e.EnrollmentID,
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(userID int64, courseID, enrollmentID string) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent:    NewBaseEvent(EventCourseCompleted, courseID),
		UserID:       userID,
		CourseID:     courseID,
		EnrollmentID: enrollmentID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Assessment Events
// ═══════════════════════════════════════════════════════════════════════════

// AttemptCompletedEvent is emitted when an attempt transitions to completed
// and auto-grading has run.
type AttemptCompletedEvent struct {
	BaseEvent
	AttemptID    string `json:"attempt_id"`
	UserID       int64  `json:"user_id"`
	ExerciseID   string `json:"exercise_id"`
	TotalScore   int    `json:"total_score"`
	CorrectCount int    `json:"correct_count"`
}

// Payload implements Event interface.
func (e AttemptCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"attempt_id":    e.AttemptID,
		"user_id":       e.UserID,
		"exercise_id":   e.ExerciseID,
		"total_score":   e.TotalScore,
		"correct_count": e.CorrectCount,
	}
}

// NewAttemptCompletedEvent creates a new AttemptCompletedEvent.
func NewAttemptCompletedEvent(attemptID string, userID int64, exerciseID string, totalScore, correctCount int) AttemptCompletedEvent {
	return AttemptCompletedEvent{
		BaseEvent:    NewBaseEvent(EventAttemptCompleted, attemptID),
		AttemptID:    attemptID,
		UserID:       userID,
		ExerciseID:   exerciseID,
		TotalScore:   totalScore,
		CorrectCount: correctCount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Gamification Events
// ═══════════════════════════════════════════════════════════════════════════

// XPAwardedEvent is emitted when a user gains XP.
type XPAwardedEvent struct {
	BaseEvent
	UserID     int64  `json:"user_id"`
	Amount     int    `json:"amount"`
	NewTotal   int    `json:"new_total"`
	SourceType string `json:"source_type"` // e.g., "lesson", "challenge"
	SourceID   string `json:"source_id"`
}

// Payload implements Event interface.
func (e XPAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"amount":      e.Amount,
		"new_total":   e.NewTotal,
		"source_type": e.SourceType,
		"source_id":   e.SourceID,
	}
}

// NewXPAwardedEvent creates a new XPAwardedEvent.
func NewXPAwardedEvent(userID int64, amount, newTotal int, sourceType, sourceID string) XPAwardedEvent {
	return XPAwardedEvent{
		BaseEvent:  NewBaseEvent(EventXPAwarded, sourceID),
		UserID:     userID,
		Amount:     amount,
		NewTotal:   newTotal,
		SourceType: sourceType,
		SourceID:   sourceID,
	}
}

// LevelUpEvent is emitted when an XP award pushes a user to a new level.
type LevelUpEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	OldLevel int   `json:"old_level"`
	NewLevel int   `json:"new_level"`
	TotalXP  int   `json:"total_xp"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"total_xp":  e.TotalXP,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID int64, oldLevel, newLevel, totalXP int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, ""),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		TotalXP:   totalXP,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenge Events
// ═══════════════════════════════════════════════════════════════════════════

// ChallengeCompletedEvent is emitted when an assignment reaches its target.
type ChallengeCompletedEvent struct {
	BaseEvent
	AssignmentID string `json:"assignment_id"`
	ChallengeID  string `json:"challenge_id"`
	UserID       int64  `json:"user_id"`
	Progress     int    `json:"progress"`
	Target       int    `json:"target"`
}

// Payload implements Event interface.
func (e ChallengeCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assignment_id": e.AssignmentID,
		"challenge_id":  e.ChallengeID,
		"user_id":       e.UserID,
		"progress":      e.Progress,
		"target":        e.Target,
	}
}

// NewChallengeCompletedEvent creates a new ChallengeCompletedEvent.
func NewChallengeCompletedEvent(assignmentID, challengeID string, userID int64, progress, target int) ChallengeCompletedEvent {
	return ChallengeCompletedEvent{
		BaseEvent:    NewBaseEvent(EventChallengeCompleted, assignmentID),
		AssignmentID: assignmentID,
		ChallengeID:  challengeID,
		UserID:       userID,
		Progress:     progress,
		Target:       target,
	}
}

// RewardClaimedEvent is emitted when a completed challenge reward is claimed.
type RewardClaimedEvent struct {
	BaseEvent
	AssignmentID string `json:"assignment_id"`
	ChallengeID  string `json:"challenge_id"`
	UserID       int64  `json:"user_id"`
	XPEarned     int    `json:"xp_earned"`
	BadgeID      string `json:"badge_id,omitempty"`
}

// Payload implements Event interface.
func (e RewardClaimedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assignment_id": e.AssignmentID,
		"challenge_id":  e.ChallengeID,
		"user_id":       e.UserID,
		"xp_earned":     e.XPEarned,
		"badge_id":      e.BadgeID,
	}
}

// NewRewardClaimedEvent creates a new RewardClaimedEvent.
func NewRewardClaimedEvent(assignmentID, challengeID string, userID int64, xpEarned int, badgeID string) RewardClaimedEvent {
	return RewardClaimedEvent{
		BaseEvent:    NewBaseEvent(EventRewardClaimed, assignmentID),
		AssignmentID: assignmentID,
		ChallengeID:  challengeID,
		UserID:       userID,
		XPEarned:     xpEarned,
		BadgeID:      badgeID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Leaderboard Events
// ═══════════════════════════════════════════════════════════════════════════

// LeaderboardRebuiltEvent is emitted after a full ranking rebuild.
type LeaderboardRebuiltEvent struct {
	BaseEvent
	Scope      string `json:"scope"` // "global" or a course ID
	TotalUsers int    `json:"total_users"`
}

// Payload implements Event interface.
func (e LeaderboardRebuiltEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"scope":       e.Scope,
		"total_users": e.TotalUsers,
	}
}

// NewLeaderboardRebuiltEvent creates a new LeaderboardRebuiltEvent.
func NewLeaderboardRebuiltEvent(scope string, totalUsers int) LeaderboardRebuiltEvent {
	return LeaderboardRebuiltEvent{
		BaseEvent:  NewBaseEvent(EventLeaderboardRebuilt, scope),
		Scope:      scope,
		TotalUsers: totalUsers,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
