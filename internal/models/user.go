// internal/models/user.go
package models

import "time"

// User is a recipient registered under an application. ExternalID is the
// caller-supplied identifier, unique within the application.
type User struct {
	UserID      string       `json:"user_id"`
	AppID       string       `json:"app_id"`
	ExternalID  string       `json:"external_id"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Timezone    string       `json:"timezone,omitempty"`
	Locale      string       `json:"locale,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Preferences holds the per-channel opt-in flags plus category overrides.
// Nil pointers mean the flag was never set and the channel defaults to enabled.
type Preferences struct {
	EmailEnabled   *bool                         `json:"email_enabled,omitempty"`
	SMSEnabled     *bool                         `json:"sms_enabled,omitempty"`
	WebhookEnabled *bool                         `json:"webhook_enabled,omitempty"`
	SSEEnabled     *bool                         `json:"sse_enabled,omitempty"`
	Categories     map[string]CategoryPreference `json:"categories,omitempty"`
}

// CategoryPreference overrides the global channel flags for one category.
type CategoryPreference struct {
	Enabled         bool      `json:"enabled"`
	EnabledChannels []Channel `json:"enabled_channels,omitempty"`
}

// ChannelFlag returns the global opt-in pointer for the given channel, or nil
// when the channel has no corresponding flag.
func (p *Preferences) ChannelFlag(ch Channel) *bool {
	if p == nil {
		return nil
	}
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelWebhook:
		return p.WebhookEnabled
	case ChannelSSE:
		return p.SSEEnabled
	}
	return nil
}
