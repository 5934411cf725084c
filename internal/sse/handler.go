// internal/sse/handler.go
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"notifyd/internal/common/logger"
)

// StreamHandler serves the per-recipient event stream. Each delivered
// notification is written as one "notification" event whose data line carries
// the event JSON-encoded by the registry's caller.
type StreamHandler struct {
	registry  *Registry
	heartbeat time.Duration
	log       logger.Logger
}

func NewStreamHandler(registry *Registry, heartbeat time.Duration, log logger.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &StreamHandler{registry: registry, heartbeat: heartbeat, log: log}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	appID := r.URL.Query().Get("app_id")
	userID := r.URL.Query().Get("user_id")
	if appID == "" || userID == "" {
		http.Error(w, "app_id and user_id are required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := h.registry.Register(appID, userID)
	if session == nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.registry.Unregister(session)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, ": connected %s\n\n", session.ID)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-session.Done():
			return
		case ev := <-session.Events:
			writeEvent(w, ev)
			flusher.Flush()
		case <-ticker.C:
			// comment frame keeps intermediaries from timing out the stream
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprint(w, "event: notification\n")
	fmt.Fprintf(w, "id: %s\n", ev.NotificationID)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
