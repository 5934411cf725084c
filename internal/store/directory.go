// Package store provides the read-only directory of applications, users and
// templates consumed by the dispatcher, plus the idempotency key store. The
// records themselves are owned and written by the management layer.
package store

import (
	"context"
	"errors"

	"notifyd/internal/models"
)

// ErrNotFound is returned when a directory record does not exist.
var ErrNotFound = errors.New("record not found")

// Directory is the read-only lookup surface for tenant records.
type Directory interface {
	Application(ctx context.Context, appID string) (*models.Application, error)
	User(ctx context.Context, appID, userID string) (*models.User, error)
	Template(ctx context.Context, appID, templateID string) (*models.Template, error)
}

// IdempotencyStore maps caller-supplied idempotency keys to notification ids.
// A key maps to exactly one notification for its lifetime.
type IdempotencyStore interface {
	// Reserve associates key with notificationID unless the key is already
	// taken. It returns the notification id now bound to the key and whether
	// this call created the binding.
	Reserve(ctx context.Context, appID, key, notificationID string) (string, bool, error)
}
