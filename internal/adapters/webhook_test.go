package adapters

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"notifyd/internal/common/config"
	"notifyd/internal/common/logger"
	"notifyd/internal/models"
)

type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func webhookNotification(overrideURL string) *models.Notification {
	return &models.Notification{
		NotificationID: "n-1",
		AppID:          "app-1",
		UserID:         "user-1",
		Channel:        models.ChannelWebhook,
		Priority:       models.PriorityNormal,
		OverrideURL:    overrideURL,
		Bindings:       map[string]string{"order": "42"},
		CreatedAt:      time.Now().UTC(),
	}
}

func webhookTarget(appURL string) *Target {
	return &Target{
		App: &models.Application{AppID: "app-1", WebhookURL: appURL, Enabled: true},
	}
}

func newTestWebhookAdapter(client HTTPClient, secret string) *WebhookAdapter {
	return NewWebhookAdapter(client, config.WebhookChannelConfig{
		SigningSecret: secret,
		UserAgent:     "notifyd-webhook/1.0",
	}, logger.NewNoOpLogger())
}

func TestWebhookStatusClassification(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		wantOutcome models.Outcome
	}{
		{"200 succeeds", http.StatusOK, models.OutcomeSuccess},
		{"204 succeeds", http.StatusNoContent, models.OutcomeSuccess},
		{"500 is transient", http.StatusInternalServerError, models.OutcomeTransientFailure},
		{"503 is transient", http.StatusServiceUnavailable, models.OutcomeTransientFailure},
		{"429 is transient", http.StatusTooManyRequests, models.OutcomeTransientFailure},
		{"400 is permanent", http.StatusBadRequest, models.OutcomePermanentFailure},
		{"404 is permanent", http.StatusNotFound, models.OutcomePermanentFailure},
		{"410 is permanent", http.StatusGone, models.OutcomePermanentFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			adapter := newTestWebhookAdapter(srv.Client(), "")
			res := adapter.Attempt(context.Background(), webhookNotification(srv.URL),
				&models.Content{Body: "hi"}, webhookTarget(""))

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.statusCode, res.StatusCode)
		})
	}
}

func TestWebhookOverrideURLWinsOverAppURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := newTestWebhookAdapter(srv.Client(), "")
	res := adapter.Attempt(context.Background(), webhookNotification(srv.URL),
		&models.Content{Body: "hi"}, webhookTarget("http://127.0.0.1:1/never"))

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 1, hits)
}

func TestWebhookFallsBackToAppURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := newTestWebhookAdapter(srv.Client(), "")
	res := adapter.Attempt(context.Background(), webhookNotification(""),
		&models.Content{Body: "hi"}, webhookTarget(srv.URL))

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
}

func TestWebhookNoTargetURL(t *testing.T) {
	adapter := newTestWebhookAdapter(&mockHTTPClient{}, "")
	res := adapter.Attempt(context.Background(), webhookNotification(""),
		&models.Content{Body: "hi"}, webhookTarget(""))

	assert.Equal(t, models.OutcomePermanentFailure, res.Outcome)
	assert.Contains(t, res.Detail, "no webhook target")
}

func TestWebhookNetworkErrorIsTransient(t *testing.T) {
	adapter := newTestWebhookAdapter(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}, "")

	res := adapter.Attempt(context.Background(), webhookNotification("http://example.invalid/hook"),
		&models.Content{Body: "hi"}, webhookTarget(""))

	assert.Equal(t, models.OutcomeTransientFailure, res.Outcome)
	assert.Contains(t, res.Detail, "network error")
}

func TestWebhookTimeoutIsTransient(t *testing.T) {
	adapter := newTestWebhookAdapter(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := adapter.Attempt(ctx, webhookNotification("http://example.invalid/hook"),
		&models.Content{Body: "hi"}, webhookTarget(""))

	assert.Equal(t, models.OutcomeTransientFailure, res.Outcome)
}

func TestWebhookPayloadAndHeaders(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := newTestWebhookAdapter(srv.Client(), "s3cret")
	res := adapter.Attempt(context.Background(), webhookNotification(srv.URL),
		&models.Content{Subject: "alert", Body: `order \"42\" shipped`}, webhookTarget(""))

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "notifyd-webhook/1.0", gotHeaders.Get("User-Agent"))
	assert.Equal(t, "n-1", gotHeaders.Get("X-Notification-ID"))

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotHeaders.Get("X-Webhook-Signature"))

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "n-1", payload["notification_id"])
	assert.Equal(t, "app-1", payload["app_id"])
	assert.Equal(t, "alert", payload["subject"])
	assert.Equal(t, `order "42" shipped`, payload["body"])
	assert.Equal(t, map[string]interface{}{"order": "42"}, payload["bindings"])
}

func TestWebhookUnsignedWithoutSecret(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := newTestWebhookAdapter(srv.Client(), "")
	adapter.Attempt(context.Background(), webhookNotification(srv.URL),
		&models.Content{Body: "hi"}, webhookTarget(""))

	assert.Empty(t, gotHeaders.Get("X-Webhook-Signature"))
}
