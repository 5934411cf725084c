// internal/models/notification.go
package models

import "time"

// Outcome classifies the result of one adapter delivery attempt.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeTransientFailure Outcome = "transient_failure"
	OutcomePermanentFailure Outcome = "permanent_failure"
	OutcomeUndeliverable    Outcome = "undeliverable"
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}

// Content is the rendered subject/body produced by the template renderer, or
// supplied inline by the submission when no template is referenced.
type Content struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Notification is the unit of dispatch. Once Status reaches a terminal state
// the record is immutable.
type Notification struct {
	NotificationID string            `json:"notification_id"`
	AppID          string            `json:"app_id"`
	UserID         string            `json:"user_id,omitempty"`
	TemplateID     string            `json:"template_id,omitempty"`
	Channel        Channel           `json:"channel"`
	Priority       Priority          `json:"priority"`
	Status         Status            `json:"status"`
	Category       string            `json:"category,omitempty"`
	Content        *Content          `json:"content,omitempty"`
	Bindings       map[string]string `json:"bindings,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	OverrideURL    string            `json:"override_url,omitempty"`
	AttemptCount   int               `json:"attempt_count"`
	Attempts       []DeliveryAttempt `json:"attempts,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAttemptAt  *time.Time        `json:"last_attempt_at,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// DeliveryAttempt records one transport attempt. History is append-only.
type DeliveryAttempt struct {
	Seq        int           `json:"seq"`
	Timestamp  time.Time     `json:"timestamp"`
	Outcome    Outcome       `json:"outcome"`
	Detail     string        `json:"detail,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency_ms,omitempty"`
}
