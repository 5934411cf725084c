package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/models"
)

func TestParseSubmission(t *testing.T) {
	body := []byte(`{
		"app_id": "app-1",
		"user_id": "user-1",
		"channel": "webhook",
		"priority": "high",
		"template_id": "tpl-1",
		"bindings": {"order_id": "42"},
		"idempotency_key": "order-42"
	}`)

	req, err := ParseSubmission(body)
	assert.NoError(t, err)
	assert.Equal(t, "app-1", req.AppID)
	assert.Equal(t, models.ChannelWebhook, req.Channel)
	assert.Equal(t, models.PriorityHigh, req.Priority)
	assert.Equal(t, "42", req.Bindings["order_id"])
	assert.Equal(t, "order-42", req.IdempotencyKey)
}

func TestParseSubmissionRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"missing app_id", `{"channel": "webhook"}`},
		{"missing channel", `{"app_id": "app-1"}`},
		{"bad channel enum", `{"app_id": "app-1", "channel": "fax"}`},
		{"bad priority enum", `{"app_id": "app-1", "channel": "webhook", "priority": "urgent"}`},
		{"non-string binding", `{"app_id": "app-1", "channel": "webhook", "bindings": {"n": 42}}`},
		{"unknown field", `{"app_id": "app-1", "channel": "webhook", "color": "red"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSubmission([]byte(tt.body))
			var stdErr *commonerrors.StandardError
			assert.ErrorAs(t, err, &stdErr)
			assert.Equal(t, commonerrors.ErrCodeValidationFailed, stdErr.Code)
		})
	}
}
