// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-lms/internal/domain/enrollment"
	"github.com/campus-hub/campus-lms/internal/domain/notification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL STUDENT COMMAND
// Resolves the course's admission policy and creates the enrollment:
// auto-accept courses activate immediately, key-based courses check the
// key, approval courses leave the request pending for the teacher.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentCommand contains the data to enroll a student.
type EnrollStudentCommand struct {
	// UserID is the internal ID of the student.
	UserID int64

	// CourseID is the course to enroll into.
	CourseID string

	// EnrollmentKey is the key the student provided (key-based courses).
	EnrollmentKey string
}

// Validate validates the command.
func (c EnrollStudentCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("enroll_student: user_id is required")
	}
	if !shared.IsUUID(c.CourseID) {
		return errors.New("enroll_student: course_id must be a UUID")
	}
	return nil
}

// EnrollStudentResult contains the result of an enrollment request.
type EnrollStudentResult struct {
	// EnrollmentID is the ID of the created enrollment.
	EnrollmentID string

	// Status is the resolved status: active or pending.
	Status enrollment.Status

	// RequiresApproval is true when a teacher still has to decide.
	RequiresApproval bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentHandler handles the EnrollStudentCommand.
type EnrollStudentHandler struct {
	enrollments enrollment.Repository
	courses     enrollment.CourseRepository
	events      shared.EventPublisher
	notifier    Notifier
}

// NewEnrollStudentHandler creates a new EnrollStudentHandler.
func NewEnrollStudentHandler(
	enrollments enrollment.Repository,
	courses enrollment.CourseRepository,
	events shared.EventPublisher,
	notifier Notifier,
) *EnrollStudentHandler {
	return &EnrollStudentHandler{
		enrollments: enrollments,
		courses:     courses,
		events:      events,
		notifier:    notifier,
	}
}

// Handle executes the enroll student command.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll_student: validation failed: %w", err)
	}

	course, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("enroll_student: failed to get course: %w", err)
	}

	// An open enrollment blocks a second request regardless of the
	// unique index: checking first gives a clean error instead of a
	// constraint violation.
	if existing, err := h.enrollments.GetOpen(ctx, cmd.UserID, cmd.CourseID); err == nil && existing != nil {
		return nil, shared.ErrAlreadyEnrolled
	}

	status, err := enrollment.ResolveAdmission(course, cmd.EnrollmentKey)
	if err != nil {
		return nil, fmt.Errorf("enroll_student: admission denied: %w", err)
	}

	enr, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:            uuid.NewString(),
		UserID:        cmd.UserID,
		CourseID:      cmd.CourseID,
		Mode:          course.Mode,
		InitialStatus: status,
	})
	if err != nil {
		return nil, fmt.Errorf("enroll_student: failed to build enrollment: %w", err)
	}

	if err := h.enrollments.Create(ctx, enr); err != nil {
		return nil, fmt.Errorf("enroll_student: failed to create enrollment: %w", err)
	}

	if h.events != nil {
		event := shared.NewEnrollmentRequestedEvent(enr.ID, enr.UserID, enr.CourseID, string(enr.Status))
		_ = h.events.Publish(event)
	}

	// The student learns the outcome right away: the active template for
	// an immediate enrollment, the pending one while the teacher decides.
	if h.notifier != nil {
		notifType := notification.TypeEnrollmentActive
		if enr.Status == enrollment.StatusPending {
			notifType = notification.TypeEnrollmentPending
		}
		_ = h.notifier.Notify(ctx, enr.UserID, notifType, course.Title)
	}

	return &EnrollStudentResult{
		EnrollmentID:     enr.ID,
		Status:           enr.Status,
		RequiresApproval: enr.Status == enrollment.StatusPending,
	}, nil
}
