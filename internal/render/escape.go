// internal/render/escape.go
package render

import (
	"strings"
	"unicode/utf8"

	"notifyd/internal/models"
)

// EscapeForChannel makes rendered text safe for the channel's framing.
// Webhook content is escaped for embedding inside a JSON string; SSE content
// must not contain raw newlines, which would break the event-stream data
// field. Email and SMS carry plain text untouched.
func EscapeForChannel(ch models.Channel, s string) string {
	switch ch {
	case models.ChannelWebhook:
		return escapeJSON(s)
	case models.ChannelSSE:
		return escapeEventStream(s)
	default:
		return s
	}
}

// escapeJSON escapes backslashes, quotes and control characters so the result
// can be spliced verbatim between JSON string quotes.
func escapeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case utf8.RuneError:
			// drop invalid UTF-8
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// escapeEventStream folds newlines into literal \n sequences so one rendered
// body stays one data field.
func escapeEventStream(s string) string {
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\n`)
	return s
}
