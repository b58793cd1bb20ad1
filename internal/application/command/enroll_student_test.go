package command

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-lms/internal/domain/enrollment"
	"github.com/campus-hub/campus-lms/internal/domain/notification"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// fakeEnrollmentStore keeps enrollments in memory.
type fakeEnrollmentStore struct {
	enrollments []*enrollment.Enrollment
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *enrollment.Enrollment) error {
	for _, existing := range f.enrollments {
		if existing.UserID == e.UserID && existing.CourseID == e.CourseID && existing.Status.IsOpen() {
			return shared.ErrAlreadyEnrolled
		}
	}
	f.enrollments = append(f.enrollments, e)
	return nil
}

func (f *fakeEnrollmentStore) GetByID(_ context.Context, id string) (*enrollment.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) GetOpen(_ context.Context, userID int64, courseID string) (*enrollment.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID && e.Status.IsOpen() {
			return e, nil
		}
	}
	return nil, shared.ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) Update(_ context.Context, _ *enrollment.Enrollment) error {
	return nil
}

func (f *fakeEnrollmentStore) ListByUser(_ context.Context, _ int64) ([]*enrollment.Enrollment, error) {
	return nil, nil
}

func (f *fakeEnrollmentStore) ListByCourse(_ context.Context, _ string, _ enrollment.Status) ([]*enrollment.Enrollment, error) {
	return nil, nil
}

func (f *fakeEnrollmentStore) ListPending(_ context.Context, _ string) ([]*enrollment.Enrollment, error) {
	return nil, nil
}

func (f *fakeEnrollmentStore) CountActive(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (f *fakeEnrollmentStore) HasActive(_ context.Context, userID int64, courseID string) (bool, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID && e.Status == enrollment.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeCourseStore struct {
	byID map[string]*enrollment.Course
}

func (f *fakeCourseStore) Create(_ context.Context, c *enrollment.Course) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id string) (*enrollment.Course, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (f *fakeCourseStore) Update(_ context.Context, c *enrollment.Course) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCourseStore) ListPublished(_ context.Context) ([]*enrollment.Course, error) {
	return nil, nil
}

// notified is one recorded notification.
type notified struct {
	userID int64
	t      notification.Type
}

type fakeNotifier struct {
	sent []notified
}

func (n *fakeNotifier) Notify(_ context.Context, userID int64, t notification.Type, _ ...interface{}) error {
	n.sent = append(n.sent, notified{userID: userID, t: t})
	return nil
}

func publishedCourse(mode enrollment.Mode) *enrollment.Course {
	return &enrollment.Course{
		ID:        uuid.NewString(),
		Title:     "Основы Go",
		Mode:      mode,
		Published: true,
	}
}

func TestEnrollStudent_AutoAcceptActivatesAndNotifies(t *testing.T) {
	course := publishedCourse(enrollment.ModeAutoAccept)
	enrollments := &fakeEnrollmentStore{}
	notifier := &fakeNotifier{}
	h := NewEnrollStudentHandler(enrollments, &fakeCourseStore{byID: map[string]*enrollment.Course{course.ID: course}}, nil, notifier)

	result, err := h.Handle(context.Background(), EnrollStudentCommand{UserID: 7, CourseID: course.ID})
	assert.NoError(t, err)
	assert.Equal(t, enrollment.StatusActive, result.Status)
	assert.False(t, result.RequiresApproval)

	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(7), notifier.sent[0].userID)
	assert.Equal(t, notification.TypeEnrollmentActive, notifier.sent[0].t)
}

func TestEnrollStudent_ApprovalStaysPendingAndNotifies(t *testing.T) {
	course := publishedCourse(enrollment.ModeApproval)
	notifier := &fakeNotifier{}
	h := NewEnrollStudentHandler(&fakeEnrollmentStore{}, &fakeCourseStore{byID: map[string]*enrollment.Course{course.ID: course}}, nil, notifier)

	result, err := h.Handle(context.Background(), EnrollStudentCommand{UserID: 7, CourseID: course.ID})
	assert.NoError(t, err)
	assert.Equal(t, enrollment.StatusPending, result.Status)
	assert.True(t, result.RequiresApproval)

	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, notification.TypeEnrollmentPending, notifier.sent[0].t)
}

func TestEnrollStudent_OpenEnrollmentBlocksSecondRequest(t *testing.T) {
	course := publishedCourse(enrollment.ModeAutoAccept)
	enrollments := &fakeEnrollmentStore{}
	h := NewEnrollStudentHandler(enrollments, &fakeCourseStore{byID: map[string]*enrollment.Course{course.ID: course}}, nil, nil)
	cmd := EnrollStudentCommand{UserID: 7, CourseID: course.ID}

	_, err := h.Handle(context.Background(), cmd)
	assert.NoError(t, err)

	_, err = h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrAlreadyEnrolled)
}

func TestEnrollStudent_CompletedCourseBlocksReenrollment(t *testing.T) {
	// A finished course cannot be taken a second time.
	course := publishedCourse(enrollment.ModeAutoAccept)
	enrollments := &fakeEnrollmentStore{enrollments: []*enrollment.Enrollment{{
		ID:       uuid.NewString(),
		UserID:   7,
		CourseID: course.ID,
		Status:   enrollment.StatusCompleted,
	}}}
	h := NewEnrollStudentHandler(enrollments, &fakeCourseStore{byID: map[string]*enrollment.Course{course.ID: course}}, nil, nil)

	_, err := h.Handle(context.Background(), EnrollStudentCommand{UserID: 7, CourseID: course.ID})
	assert.ErrorIs(t, err, shared.ErrAlreadyEnrolled)
}

func TestEnrollStudent_WithdrawnEnrollmentAllowsRetry(t *testing.T) {
	course := publishedCourse(enrollment.ModeAutoAccept)
	enrollments := &fakeEnrollmentStore{enrollments: []*enrollment.Enrollment{{
		ID:       uuid.NewString(),
		UserID:   7,
		CourseID: course.ID,
		Status:   enrollment.StatusWithdrawn,
	}}}
	h := NewEnrollStudentHandler(enrollments, &fakeCourseStore{byID: map[string]*enrollment.Course{course.ID: course}}, nil, nil)

	result, err := h.Handle(context.Background(), EnrollStudentCommand{UserID: 7, CourseID: course.ID})
	assert.NoError(t, err)
	assert.Equal(t, enrollment.StatusActive, result.Status)
}

func TestEnrollStudent_UnpublishedCourse(t *testing.T) {
	course := publishedCourse(enrollment.ModeAutoAccept)
	course.Published = false
	h := NewEnrollStudentHandler(&fakeEnrollmentStore{}, &fakeCourseStore{byID: map[string]*enrollment.Course{course.ID: course}}, nil, nil)

	_, err := h.Handle(context.Background(), EnrollStudentCommand{UserID: 7, CourseID: course.ID})
	assert.ErrorIs(t, err, enrollment.ErrCourseUnpublished)
}
