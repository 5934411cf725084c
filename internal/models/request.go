// internal/models/request.go
package models

// SendRequest is the validated, tenant-authenticated submission object handed
// over by the intake layer.
type SendRequest struct {
	AppID           string            `json:"app_id"`
	UserID          string            `json:"user_id,omitempty"`
	TemplateID      string            `json:"template_id,omitempty"`
	Channel         Channel           `json:"channel"`
	Priority        Priority          `json:"priority"`
	Category        string            `json:"category,omitempty"`
	Subject         string            `json:"subject,omitempty"`
	Body            string            `json:"body,omitempty"`
	Bindings        map[string]string `json:"bindings,omitempty"`
	IdempotencyKey  string            `json:"idempotency_key,omitempty"`
	OverrideURL     string            `json:"override_url,omitempty"`
	OverrideChannel bool              `json:"override_channel,omitempty"`
}
