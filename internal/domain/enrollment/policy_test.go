package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func publishedCourse(mode Mode) *Course {
	return &Course{
		ID:        "8d6c14f2-5a14-4a4a-9a01-0a1b2c3d4e5f",
		Title:     "Go Basics",
		Mode:      mode,
		Published: true,
	}
}

func TestResolveAdmission_AutoAccept(t *testing.T) {
	status, err := ResolveAdmission(publishedCourse(ModeAutoAccept), "")
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, status)
}

func TestResolveAdmission_Approval(t *testing.T) {
	status, err := ResolveAdmission(publishedCourse(ModeApproval), "")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}

func TestResolveAdmission_KeyBased(t *testing.T) {
	course := publishedCourse(ModeKeyBased)
	assert.NoError(t, course.SetEnrollmentKey("secret-key"))

	status, err := ResolveAdmission(course, "secret-key")
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, status)

	_, err = ResolveAdmission(course, "wrong-key")
	assert.ErrorIs(t, err, ErrKeyMismatch)

	_, err = ResolveAdmission(course, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestResolveAdmission_UnknownModeDefaultsToActive(t *testing.T) {
	// A mode introduced elsewhere must not break enrollment here.
	status, err := ResolveAdmission(publishedCourse("invite_only"), "")
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, status)
}

func TestResolveAdmission_Unpublished(t *testing.T) {
	course := publishedCourse(ModeAutoAccept)
	course.Published = false

	_, err := ResolveAdmission(course, "")
	assert.ErrorIs(t, err, ErrCourseUnpublished)
}

func TestResolveAdmission_NilCourse(t *testing.T) {
	_, err := ResolveAdmission(nil, "")
	assert.ErrorIs(t, err, ErrInvalidCourseID)
}

func TestSetEnrollmentKey(t *testing.T) {
	course := publishedCourse(ModeKeyBased)

	assert.ErrorIs(t, course.SetEnrollmentKey("   "), ErrKeyRequired)
	assert.Empty(t, course.KeyHash)

	assert.NoError(t, course.SetEnrollmentKey("  padded-key  "))
	assert.NotEmpty(t, course.KeyHash)

	// The stored hash matches the trimmed key.
	assert.NoError(t, course.VerifyEnrollmentKey("padded-key"))
}
