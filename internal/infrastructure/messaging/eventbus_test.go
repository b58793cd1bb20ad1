package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
	})
}

func TestInMemoryEventBus_PublishSubscribe(t *testing.T) {
	bus := newSyncBus()

	var received []shared.Event
	err := bus.Subscribe(shared.EventLessonCompleted, func(e shared.Event) error {
		received = append(received, e)
		return nil
	})
	assert.NoError(t, err)

	event := shared.NewLessonCompletedEvent(7, "lesson-1", "course-1")
	assert.NoError(t, bus.Publish(event))

	assert.Len(t, received, 1)
	assert.Equal(t, shared.EventLessonCompleted, received[0].EventType())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := newSyncBus()

	lessonCalls := 0
	assert.NoError(t, bus.Subscribe(shared.EventLessonCompleted, func(shared.Event) error {
		lessonCalls++
		return nil
	}))

	levelCalls := 0
	assert.NoError(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		levelCalls++
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewLessonCompletedEvent(7, "lesson-1", "course-1")))

	assert.Equal(t, 1, lessonCalls)
	assert.Equal(t, 0, levelCalls)
}

func TestInMemoryEventBus_SubscribeAll(t *testing.T) {
	bus := newSyncBus()

	seen := 0
	assert.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		seen++
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewLessonCompletedEvent(7, "lesson-1", "course-1")))
	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 2, 150)))

	assert.Equal(t, 2, seen)
}

func TestInMemoryEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := newSyncBus()

	assert.NoError(t, bus.Subscribe(shared.EventLessonCompleted, func(shared.Event) error {
		return errors.New("handler failed")
	}))

	called := false
	assert.NoError(t, bus.Subscribe(shared.EventLessonCompleted, func(shared.Event) error {
		called = true
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewLessonCompletedEvent(7, "lesson-1", "course-1")))
	assert.True(t, called)
}

func TestInMemoryEventBus_NilArguments(t *testing.T) {
	bus := newSyncBus()

	assert.ErrorIs(t, bus.Subscribe(shared.EventLessonCompleted, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}

func TestInMemoryEventBus_Close(t *testing.T) {
	bus := newSyncBus()

	assert.NoError(t, bus.Close())
	assert.NoError(t, bus.Close()) // idempotent

	assert.ErrorIs(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 2, 150)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_Metrics(t *testing.T) {
	bus := newSyncBus()

	assert.NoError(t, bus.Subscribe(shared.EventLessonCompleted, func(shared.Event) error { return nil }))
	assert.NoError(t, bus.Subscribe(shared.EventLessonCompleted, func(shared.Event) error {
		return errors.New("boom")
	}))

	assert.NoError(t, bus.Publish(shared.NewLessonCompletedEvent(7, "lesson-1", "course-1")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalHandlerExecs)
	assert.Equal(t, 0.5, snap.HandlerSuccessRate)
}
