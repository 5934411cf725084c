// Package adapters implements the per-channel delivery transports behind a
// uniform attempt contract. Adapters never retry on their own; retry policy
// belongs to the dispatcher.
package adapters

import (
	"context"
	"time"

	"notifyd/internal/models"
)

// Target carries the resolved recipient records an adapter may need. App is
// always set; User is nil for direct webhook sends without a recipient.
type Target struct {
	App  *models.Application
	User *models.User
}

// Result is the outcome of one delivery attempt plus transport detail for the
// attempt history.
type Result struct {
	Outcome    models.Outcome
	Detail     string
	StatusCode int
	Latency    time.Duration
}

// Adapter is the uniform delivery contract. Attempt must honor ctx for its
// transport I/O; the dispatcher bounds each attempt with a timeout.
type Adapter interface {
	Channel() models.Channel
	Attempt(ctx context.Context, n *models.Notification, content *models.Content, target *Target) *Result
}

func success(detail string, code int, latency time.Duration) *Result {
	return &Result{Outcome: models.OutcomeSuccess, Detail: detail, StatusCode: code, Latency: latency}
}

func transient(detail string, code int, latency time.Duration) *Result {
	return &Result{Outcome: models.OutcomeTransientFailure, Detail: detail, StatusCode: code, Latency: latency}
}

func permanent(detail string, code int, latency time.Duration) *Result {
	return &Result{Outcome: models.OutcomePermanentFailure, Detail: detail, StatusCode: code, Latency: latency}
}

func undeliverable(detail string) *Result {
	return &Result{Outcome: models.OutcomeUndeliverable, Detail: detail}
}
