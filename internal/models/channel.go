// internal/models/channel.go
package models

// Channel represents a notification delivery transport.
type Channel string

const (
	ChannelWebhook Channel = "webhook"
	ChannelSSE     Channel = "sse"
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
)

// Valid checks if the channel is a recognized enum value
func (c Channel) Valid() bool {
	switch c {
	case ChannelWebhook, ChannelSSE, ChannelEmail, ChannelSMS:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel
func (c Channel) String() string {
	return string(c)
}

// Priority represents the dispatch-ordering hint for a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid checks if the priority is a recognized enum value
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the priority
func (p Priority) String() string {
	return string(p)
}

// Status represents the delivery lifecycle state of a notification.
type Status string

const (
	StatusPending       Status = "pending"
	StatusSending       Status = "sending"
	StatusDelivered     Status = "delivered"
	StatusFailed        Status = "failed"
	StatusUndeliverable Status = "undeliverable"
)

// Valid checks if the status is a recognized enum value
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSending, StatusDelivered, StatusFailed, StatusUndeliverable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsFinal returns true if this is a terminal status
func (s Status) IsFinal() bool {
	return s == StatusDelivered || s == StatusFailed || s == StatusUndeliverable
}
