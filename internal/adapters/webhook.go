// internal/adapters/webhook.go
package adapters

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"notifyd/internal/common/config"
	"notifyd/internal/common/logger"
	"notifyd/internal/models"
)

// HTTPClient is the outbound client surface, narrowed for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookAdapter POSTs rendered notifications to the resolved target URL.
// The per-request override URL wins over the application's registered URL.
type WebhookAdapter struct {
	client    HTTPClient
	secret    string
	userAgent string
	logger    logger.Logger
}

// webhookPayload is the JSON body sent to the receiver. Subject and Body are
// pre-escaped by the renderer, so they are spliced in as raw JSON strings.
type webhookPayload struct {
	NotificationID string            `json:"notification_id"`
	AppID          string            `json:"app_id"`
	UserID         string            `json:"user_id,omitempty"`
	TemplateID     string            `json:"template_id,omitempty"`
	Channel        string            `json:"channel"`
	Priority       string            `json:"priority"`
	Subject        json.RawMessage   `json:"subject,omitempty"`
	Body           json.RawMessage   `json:"body"`
	Bindings       map[string]string `json:"bindings,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func NewWebhookAdapter(client HTTPClient, cfg config.WebhookChannelConfig, log logger.Logger) *WebhookAdapter {
	if cfg.SigningSecret == "" {
		log.Warn("webhook adapter initialized without a signing secret, outbound calls will not be signed", nil)
	}
	return &WebhookAdapter{
		client:    client,
		secret:    cfg.SigningSecret,
		userAgent: cfg.UserAgent,
		logger:    log,
	}
}

func (a *WebhookAdapter) Channel() models.Channel {
	return models.ChannelWebhook
}

func (a *WebhookAdapter) Attempt(ctx context.Context, n *models.Notification, content *models.Content, target *Target) *Result {
	targetURL := n.OverrideURL
	if targetURL == "" && target != nil && target.App != nil {
		targetURL = target.App.WebhookURL
	}
	if targetURL == "" {
		return permanent("no webhook target URL", 0, 0)
	}

	body, err := json.Marshal(webhookPayload{
		NotificationID: n.NotificationID,
		AppID:          n.AppID,
		UserID:         n.UserID,
		TemplateID:     n.TemplateID,
		Channel:        n.Channel.String(),
		Priority:       n.Priority.String(),
		Subject:        quoteRendered(content.Subject),
		Body:           quoteRendered(content.Body),
		Bindings:       n.Bindings,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return permanent(fmt.Sprintf("marshal payload: %v", err), 0, 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return permanent(fmt.Sprintf("build request: %v", err), 0, 0)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("X-Notification-ID", n.NotificationID)
	if a.secret != "" {
		mac := hmac.New(sha256.New, []byte(a.secret))
		mac.Write(body)
		req.Header.Set("X-Webhook-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return transient(fmt.Sprintf("attempt timed out after %s", latency.Round(time.Millisecond)), 0, latency)
		}
		return transient(fmt.Sprintf("network error: %v", err), 0, latency)
	}
	defer resp.Body.Close()

	a.logger.Debug("webhook response", map[string]interface{}{
		"notification_id": n.NotificationID,
		"url":             targetURL,
		"status_code":     resp.StatusCode,
		"latency_ms":      latency.Milliseconds(),
	})

	return classifyStatus(resp.StatusCode, latency)
}

// classifyStatus maps an HTTP response to an attempt outcome: 2xx succeeds,
// 5xx and 429 are retryable, every other 4xx is final.
func classifyStatus(code int, latency time.Duration) *Result {
	switch {
	case code >= 200 && code < 300:
		return success("delivered", code, latency)
	case code >= 500:
		return transient(fmt.Sprintf("server error: %d", code), code, latency)
	case code == http.StatusTooManyRequests:
		return transient("rate limited", code, latency)
	case code >= 400:
		return permanent(fmt.Sprintf("rejected: %d", code), code, latency)
	default:
		return permanent(fmt.Sprintf("unexpected status: %d", code), code, latency)
	}
}

// quoteRendered wraps pre-escaped renderer output in JSON string quotes.
func quoteRendered(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(`"` + s + `"`)
}
