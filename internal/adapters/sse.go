// internal/adapters/sse.go
package adapters

import (
	"context"
	"fmt"

	"notifyd/internal/models"
	"notifyd/internal/sse"
)

// SSEAdapter pushes rendered content to the recipient's live sessions. SSE is
// push-only with no backlog: a recipient with no session at dispatch time is
// undeliverable and never retried.
type SSEAdapter struct {
	registry *sse.Registry
}

func NewSSEAdapter(registry *sse.Registry) *SSEAdapter {
	return &SSEAdapter{registry: registry}
}

func (a *SSEAdapter) Channel() models.Channel {
	return models.ChannelSSE
}

func (a *SSEAdapter) Attempt(_ context.Context, n *models.Notification, content *models.Content, _ *Target) *Result {
	delivered := a.registry.Publish(n.AppID, n.UserID, sse.Event{
		NotificationID: n.NotificationID,
		Subject:        content.Subject,
		Body:           content.Body,
	})

	if delivered == 0 {
		return undeliverable("no live session")
	}
	return success(fmt.Sprintf("pushed to %d session(s)", delivered), 0, 0)
}
