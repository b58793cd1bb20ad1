// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "enrollment", "challenge", "leaderboard"
	Op      string // Operation that failed, e.g., "Enroll", "Claim"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Enrollment domain errors
var (
	ErrEnrollmentNotFound  = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment not found")
	ErrAlreadyEnrolled     = NewDomainError("enrollment", "Enroll", ErrAlreadyExists, "student already has an open enrollment for this course")
	ErrInvalidEnrollmentKey = NewDomainError("enrollment", "Resolve", ErrValidation, "enrollment_key: invalid or missing enrollment key")
	ErrCourseNotFound      = NewDomainError("enrollment", "FindCourse", ErrNotFound, "course not found")
)

// Assessment domain errors
var (
	ErrAttemptNotFound     = NewDomainError("assessment", "FindAttempt", ErrNotFound, "attempt not found")
	ErrExerciseNotFound    = NewDomainError("assessment", "FindExercise", ErrNotFound, "exercise not found")
	ErrAttemptCompleted    = NewDomainError("assessment", "Submit", ErrInvalidState, "attempt is already completed")
	ErrExerciseUnavailable = NewDomainError("assessment", "Start", ErrInvalidState, "exercise is not available")
	ErrNotEnrolled         = NewDomainError("assessment", "Start", ErrForbidden, "no active enrollment for this exercise")
)

// Challenge domain errors
var (
	ErrChallengeNotFound  = NewDomainError("challenge", "Find", ErrNotFound, "challenge not found")
	ErrAssignmentNotFound = NewDomainError("challenge", "FindAssignment", ErrNotFound, "challenge assignment not found")
	ErrNotClaimable       = NewDomainError("challenge", "Claim", ErrInvalidState, "assignment reward is not claimable")
	ErrAssignmentExpired  = NewDomainError("challenge", "Progress", ErrExpired, "challenge assignment has expired")
)

// Gamification domain errors
var (
	ErrStatsNotFound = NewDomainError("gamification", "FindStats", ErrNotFound, "gamification stats not found")
	ErrBadgeNotFound = NewDomainError("gamification", "FindBadge", ErrNotFound, "badge not found")
)

// Leaderboard domain errors
var (
	ErrLeaderboardNotFound = NewDomainError("leaderboard", "Find", ErrNotFound, "leaderboard not found")
	ErrNotRanked           = NewDomainError("leaderboard", "RankOf", ErrNotFound, "user is not present in the ranking")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsInvalidState checks if the error is a lifecycle-state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStateTransition)
}
