package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus-hub/campus-lms/internal/domain/enrollment"
	"github.com/campus-hub/campus-lms/internal/domain/notification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION ENROLLMENT COMMAND
// One command drives the whole enrollment state machine: teacher
// decisions (approve, decline, remove), student actions (cancel,
// withdraw) and course completion.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentAction defines the transition being applied.
type EnrollmentAction string

const (
	// ActionApprove - teacher approves a pending request.
	ActionApprove EnrollmentAction = "approve"

	// ActionDecline - teacher declines a pending request.
	ActionDecline EnrollmentAction = "decline"

	// ActionCancel - student cancels their own pending request.
	ActionCancel EnrollmentAction = "cancel"

	// ActionWithdraw - student leaves an active course.
	ActionWithdraw EnrollmentAction = "withdraw"

	// ActionRemove - teacher removes a student from the course.
	ActionRemove EnrollmentAction = "remove"

	// ActionComplete - student finished the course.
	ActionComplete EnrollmentAction = "complete"
)

// TransitionEnrollmentCommand contains the data for a transition.
type TransitionEnrollmentCommand struct {
	// EnrollmentID is the enrollment being transitioned.
	EnrollmentID string

	// Action is the transition to apply.
	Action EnrollmentAction

	// ActorID is the user performing the action.
	// For teacher decisions it is recorded on the enrollment.
	ActorID int64
}

// Validate validates the command.
func (c TransitionEnrollmentCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("transition_enrollment: enrollment_id is required")
	}

	switch c.Action {
	case ActionApprove, ActionDecline, ActionRemove:
		if c.ActorID <= 0 {
			return fmt.Errorf("transition_enrollment: actor_id is required for %s", c.Action)
		}
	case ActionCancel, ActionWithdraw, ActionComplete:
		// Student-side actions carry no decider.
	default:
		return fmt.Errorf("transition_enrollment: unknown action: %s", c.Action)
	}

	return nil
}

// TransitionEnrollmentResult contains the result of a transition.
type TransitionEnrollmentResult struct {
	// EnrollmentID is the transitioned enrollment.
	EnrollmentID string

	// Status is the status after the transition.
	Status enrollment.Status
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// Notifier delivers progress notifications to students.
type Notifier interface {
	Notify(ctx context.Context, userID int64, t notification.Type, args ...interface{}) error
}

// TransitionEnrollmentHandler handles the TransitionEnrollmentCommand.
type TransitionEnrollmentHandler struct {
	enrollments enrollment.Repository
	courses     enrollment.CourseRepository
	events      shared.EventPublisher
	notifier    Notifier
}

// NewTransitionEnrollmentHandler creates a new TransitionEnrollmentHandler.
func NewTransitionEnrollmentHandler(
	enrollments enrollment.Repository,
	courses enrollment.CourseRepository,
	events shared.EventPublisher,
	notifier Notifier,
) *TransitionEnrollmentHandler {
	return &TransitionEnrollmentHandler{
		enrollments: enrollments,
		courses:     courses,
		events:      events,
		notifier:    notifier,
	}
}

// Handle executes the transition command.
func (h *TransitionEnrollmentHandler) Handle(ctx context.Context, cmd TransitionEnrollmentCommand) (*TransitionEnrollmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("transition_enrollment: validation failed: %w", err)
	}

	enr, err := h.enrollments.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("transition_enrollment: failed to get enrollment: %w", err)
	}

	switch cmd.Action {
	case ActionApprove:
		err = enr.Approve(cmd.ActorID)
	case ActionDecline:
		err = enr.Decline(cmd.ActorID)
	case ActionCancel:
		err = enr.Cancel()
	case ActionWithdraw:
		err = enr.Withdraw()
	case ActionRemove:
		err = enr.Remove(cmd.ActorID)
	case ActionComplete:
		err = enr.Complete()
	}
	if err != nil {
		return nil, fmt.Errorf("transition_enrollment: %w", err)
	}

	if err := h.enrollments.Update(ctx, enr); err != nil {
		return nil, fmt.Errorf("transition_enrollment: failed to update enrollment: %w", err)
	}

	h.publishAndNotify(ctx, cmd.Action, enr)

	return &TransitionEnrollmentResult{
		EnrollmentID: enr.ID,
		Status:       enr.Status,
	}, nil
}

// publishAndNotify emits the side effects of a successful transition.
// Failures here are logged by the bus and channels, not propagated:
// the state change has already been committed.
func (h *TransitionEnrollmentHandler) publishAndNotify(ctx context.Context, action EnrollmentAction, enr *enrollment.Enrollment) {
	courseTitle := enr.CourseID
	if course, err := h.courses.GetByID(ctx, enr.CourseID); err == nil {
		courseTitle = course.Title
	}

	switch action {
	case ActionApprove:
		if h.events != nil {
			event := shared.NewBaseEvent(shared.EventEnrollmentActivated, enr.ID)
			_ = h.events.Publish(enrollmentStatusEvent{BaseEvent: event, enrollment: enr})
		}
		if h.notifier != nil {
			_ = h.notifier.Notify(ctx, enr.UserID, notification.TypeEnrollmentApproved, courseTitle)
		}

	case ActionDecline:
		if h.notifier != nil {
			_ = h.notifier.Notify(ctx, enr.UserID, notification.TypeEnrollmentDeclined, courseTitle)
		}

	case ActionCancel, ActionWithdraw, ActionRemove:
		if h.events != nil {
			event := shared.NewBaseEvent(shared.EventEnrollmentCancelled, enr.ID)
			_ = h.events.Publish(enrollmentStatusEvent{BaseEvent: event, enrollment: enr})
		}

	case ActionComplete:
		if h.events != nil {
			_ = h.events.Publish(shared.NewCourseCompletedEvent(enr.UserID, enr.CourseID, enr.ID))
		}
		if h.notifier != nil {
			_ = h.notifier.Notify(ctx, enr.UserID, notification.TypeCourseCompleted, courseTitle)
		}
	}
}

// enrollmentStatusEvent carries a bare status change on the bus.
type enrollmentStatusEvent struct {
	shared.BaseEvent
	enrollment *enrollment.Enrollment
}

// Payload returns the serializable event payload.
func (e enrollmentStatusEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.enrollment.ID,
		"user_id":       e.enrollment.UserID,
		"course_id":     e.enrollment.CourseID,
		"status":        string(e.enrollment.Status),
	}
}
