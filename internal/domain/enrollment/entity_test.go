package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEnrollment(t *testing.T, status Status) *Enrollment {
	t.Helper()

	e, err := NewEnrollment(NewEnrollmentParams{
		ID:            "3f1c8a2e-44d1-4f7b-9c3a-6e5d4b2a1f0e",
		UserID:        7,
		CourseID:      "8d6c14f2-5a14-4a4a-9a01-0a1b2c3d4e5f",
		Mode:          ModeAutoAccept,
		InitialStatus: status,
	})
	assert.NoError(t, err)
	return e
}

func TestNewEnrollment_Validation(t *testing.T) {
	_, err := NewEnrollment(NewEnrollmentParams{UserID: 7, CourseID: "c", InitialStatus: StatusPending})
	assert.Error(t, err) // missing ID

	_, err = NewEnrollment(NewEnrollmentParams{ID: "e1", CourseID: "c", InitialStatus: StatusPending})
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = NewEnrollment(NewEnrollmentParams{ID: "e1", UserID: 7, InitialStatus: StatusPending})
	assert.ErrorIs(t, err, ErrInvalidCourseID)

	_, err = NewEnrollment(NewEnrollmentParams{ID: "e1", UserID: 7, CourseID: "c", InitialStatus: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// completed is a valid status but not a valid starting point
	_, err = NewEnrollment(NewEnrollmentParams{ID: "e1", UserID: 7, CourseID: "c", InitialStatus: StatusCompleted})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewEnrollment_ActiveStartSetsActivatedAt(t *testing.T) {
	e := newTestEnrollment(t, StatusActive)
	assert.NotNil(t, e.ActivatedAt)

	pending := newTestEnrollment(t, StatusPending)
	assert.Nil(t, pending.ActivatedAt)
}

func TestEnrollment_Approve(t *testing.T) {
	e := newTestEnrollment(t, StatusPending)

	assert.NoError(t, e.Approve(100))
	assert.Equal(t, StatusActive, e.Status)
	assert.Equal(t, int64(100), e.DecidedBy)
	assert.NotNil(t, e.ActivatedAt)

	// approving twice is not a valid transition
	assert.ErrorIs(t, e.Approve(100), ErrInvalidTransition)
}

func TestEnrollment_Decline(t *testing.T) {
	e := newTestEnrollment(t, StatusPending)

	assert.NoError(t, e.Decline(100))
	assert.Equal(t, StatusDeclined, e.Status)
	assert.Equal(t, int64(100), e.DecidedBy)
}

func TestEnrollment_Cancel_OnlyFromPending(t *testing.T) {
	e := newTestEnrollment(t, StatusPending)
	assert.NoError(t, e.Cancel())
	assert.Equal(t, StatusCancelled, e.Status)

	active := newTestEnrollment(t, StatusActive)
	assert.ErrorIs(t, active.Cancel(), ErrInvalidTransition)
	assert.Equal(t, StatusActive, active.Status)
}

func TestEnrollment_Withdraw_OnlyFromActive(t *testing.T) {
	e := newTestEnrollment(t, StatusActive)
	assert.NoError(t, e.Withdraw())
	assert.Equal(t, StatusWithdrawn, e.Status)

	pending := newTestEnrollment(t, StatusPending)
	assert.ErrorIs(t, pending.Withdraw(), ErrInvalidTransition)
}

func TestEnrollment_Remove(t *testing.T) {
	pending := newTestEnrollment(t, StatusPending)
	assert.NoError(t, pending.Remove(100))
	assert.Equal(t, StatusRemoved, pending.Status)

	active := newTestEnrollment(t, StatusActive)
	assert.NoError(t, active.Remove(100))
	assert.Equal(t, StatusRemoved, active.Status)

	// terminal states stay terminal
	assert.ErrorIs(t, active.Remove(100), ErrInvalidTransition)
}

func TestEnrollment_Complete(t *testing.T) {
	e := newTestEnrollment(t, StatusActive)

	assert.NoError(t, e.Complete())
	assert.Equal(t, StatusCompleted, e.Status)
	assert.NotNil(t, e.CompletedAt)

	pending := newTestEnrollment(t, StatusPending)
	assert.ErrorIs(t, pending.Complete(), ErrInvalidTransition)
	assert.Nil(t, pending.CompletedAt)
}

func TestEnrollment_InvalidTransitionDoesNotMutate(t *testing.T) {
	e := newTestEnrollment(t, StatusPending)
	before := e.UpdatedAt

	assert.ErrorIs(t, e.Withdraw(), ErrInvalidTransition)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, before, e.UpdatedAt)
}

func TestStatus_IsOpen(t *testing.T) {
	assert.True(t, StatusPending.IsOpen())
	assert.True(t, StatusActive.IsOpen())

	// Пройденный курс занимает место: повторная запись невозможна.
	assert.True(t, StatusCompleted.IsOpen())

	// Отменённые и отклонённые зачисления место освобождают.
	assert.False(t, StatusDeclined.IsOpen())
	assert.False(t, StatusCancelled.IsOpen())
	assert.False(t, StatusWithdrawn.IsOpen())
	assert.False(t, StatusRemoved.IsOpen())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())

	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusDeclined, StatusWithdrawn, StatusRemoved} {
		assert.True(t, s.IsTerminal(), "status %s", s)
	}
}

func TestMode_RequiresKey(t *testing.T) {
	assert.True(t, ModeKeyBased.RequiresKey())
	assert.False(t, ModeAutoAccept.RequiresKey())
	assert.False(t, ModeApproval.RequiresKey())
}

func TestEnrollment_Clone(t *testing.T) {
	e := newTestEnrollment(t, StatusActive)

	clone := e.Clone()
	assert.Equal(t, e.ID, clone.ID)
	assert.NotSame(t, e.ActivatedAt, clone.ActivatedAt)

	clone.Status = StatusWithdrawn
	assert.Equal(t, StatusActive, e.Status)
}
