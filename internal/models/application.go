// internal/models/application.go
package models

import "time"

// Application is the API-key-scoped tenant that owns users, templates and
// notifications. The key hash is immutable once issued.
type Application struct {
	AppID      string    `json:"app_id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
	WebhookURL string    `json:"webhook_url,omitempty"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
