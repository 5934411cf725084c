package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notifyd/internal/common/logger"
)

func TestRegistryRegisterAndPublish(t *testing.T) {
	r := NewRegistry(4, logger.NewNoOpLogger())
	defer r.Close()

	s := r.Register("app-1", "user-1")
	assert.NotNil(t, s)
	assert.Equal(t, 1, r.ActiveSessions("app-1", "user-1"))

	delivered := r.Publish("app-1", "user-1", Event{NotificationID: "n-1", Body: "hello"})
	assert.Equal(t, 1, delivered)

	ev := <-s.Events
	assert.Equal(t, "n-1", ev.NotificationID)
	assert.Equal(t, "hello", ev.Body)
}

func TestRegistryPublishNoSessions(t *testing.T) {
	r := NewRegistry(4, logger.NewNoOpLogger())
	defer r.Close()

	delivered := r.Publish("app-1", "absent", Event{NotificationID: "n-1"})
	assert.Equal(t, 0, delivered)
}

func TestRegistryMultipleSessionsPerUser(t *testing.T) {
	r := NewRegistry(4, logger.NewNoOpLogger())
	defer r.Close()

	first := r.Register("app-1", "user-1")
	second := r.Register("app-1", "user-1")
	assert.Equal(t, 2, r.ActiveSessions("app-1", "user-1"))

	delivered := r.Publish("app-1", "user-1", Event{NotificationID: "n-2"})
	assert.Equal(t, 2, delivered)

	assert.Equal(t, "n-2", (<-first.Events).NotificationID)
	assert.Equal(t, "n-2", (<-second.Events).NotificationID)
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry(4, logger.NewNoOpLogger())
	defer r.Close()

	s := r.Register("app-1", "user-1")
	r.Unregister(s)

	assert.Equal(t, 0, r.ActiveSessions("app-1", "user-1"))
	select {
	case <-s.Done():
	default:
		t.Fatal("expected session done channel to be closed")
	}

	// unregistering twice is harmless
	r.Unregister(s)
}

func TestRegistryFullBufferDoesNotBlock(t *testing.T) {
	r := NewRegistry(1, logger.NewNoOpLogger())
	defer r.Close()

	s := r.Register("app-1", "user-1")

	assert.Equal(t, 1, r.Publish("app-1", "user-1", Event{NotificationID: "n-1"}))
	// buffer is full now; publish must return without blocking
	assert.Equal(t, 1, r.Publish("app-1", "user-1", Event{NotificationID: "n-2"}))

	assert.Equal(t, "n-1", (<-s.Events).NotificationID)
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry(4, logger.NewNoOpLogger())

	s := r.Register("app-1", "user-1")
	r.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("expected session to be closed on registry shutdown")
	}

	assert.Nil(t, r.Register("app-1", "user-2"))
}
