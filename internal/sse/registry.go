// Package sse tracks live recipient sessions and pushes rendered
// notifications to them as server-sent events.
package sse

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"notifyd/internal/common/logger"
	"notifyd/internal/common/metrics"
)

// Event is one notification pushed to a connected session.
type Event struct {
	NotificationID string `json:"notification_id"`
	Subject        string `json:"subject,omitempty"`
	Body           string `json:"body"`
}

// Session is one live event-stream connection for a recipient. A user may
// hold several concurrent sessions; each gets every event.
type Session struct {
	ID     string
	AppID  string
	UserID string
	Events chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// Done is closed when the session is unregistered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Registry maps connected recipients to their live sessions. It is created at
// service start, passed by reference to the SSE adapter and the stream
// handler, and closed at shutdown.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string][]*Session
	buffer   int
	closed   bool
	log      logger.Logger
}

// NewRegistry creates a registry whose sessions buffer up to eventBuffer
// undelivered events before slow consumers start missing them.
func NewRegistry(eventBuffer int, log logger.Logger) *Registry {
	if eventBuffer <= 0 {
		eventBuffer = 10
	}
	return &Registry{
		sessions: make(map[string][]*Session),
		buffer:   eventBuffer,
		log:      log,
	}
}

func sessionKey(appID, userID string) string {
	return fmt.Sprintf("%s:%s", appID, userID)
}

// Register adds a new session for the recipient and returns it. Returns nil
// after the registry has been closed.
func (r *Registry) Register(appID, userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	s := &Session{
		ID:     uuid.New().String(),
		AppID:  appID,
		UserID: userID,
		Events: make(chan Event, r.buffer),
		done:   make(chan struct{}),
	}

	key := sessionKey(appID, userID)
	r.sessions[key] = append(r.sessions[key], s)
	metrics.SSESessionsActive.Inc()

	r.log.Debug("sse session registered", map[string]interface{}{
		"session_id": s.ID,
		"app_id":     appID,
		"user_id":    userID,
	})

	return s
}

// Unregister removes the session and signals its consumer to stop.
func (r *Registry) Unregister(s *Session) {
	if s == nil {
		return
	}

	r.mu.Lock()
	key := sessionKey(s.AppID, s.UserID)
	list := r.sessions[key]
	for i, candidate := range list {
		if candidate.ID == s.ID {
			list = append(list[:i], list[i+1:]...)
			metrics.SSESessionsActive.Dec()
			break
		}
	}
	if len(list) == 0 {
		delete(r.sessions, key)
	} else {
		r.sessions[key] = list
	}
	r.mu.Unlock()

	s.close()
}

// Publish delivers the event to every live session of the recipient. Returns
// the number of sessions that existed at publish time; zero means the
// recipient was unreachable. A session whose buffer is full is skipped rather
// than blocking the caller.
func (r *Registry) Publish(appID, userID string, ev Event) int {
	r.mu.RLock()
	list := r.sessions[sessionKey(appID, userID)]
	targets := make([]*Session, len(list))
	copy(targets, list)
	r.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.Events <- ev:
		default:
			r.log.Warn("sse session buffer full, dropping event", map[string]interface{}{
				"session_id":      s.ID,
				"user_id":         userID,
				"notification_id": ev.NotificationID,
			})
		}
	}

	return len(targets)
}

// ActiveSessions returns how many sessions the recipient currently holds.
func (r *Registry) ActiveSessions(appID, userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionKey(appID, userID)])
}

// Close unregisters every session. Subsequent Register calls return nil.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	all := r.sessions
	r.sessions = make(map[string][]*Session)
	r.mu.Unlock()

	for _, list := range all {
		for _, s := range list {
			metrics.SSESessionsActive.Dec()
			s.close()
		}
	}
}
