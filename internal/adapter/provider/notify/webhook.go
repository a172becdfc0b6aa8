// Package notify delivers reminder notifications to an external webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Notification is one outbound reminder payload.
type Notification struct {
	Recipient uuid.UUID         `json:"recipient"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// WebhookDispatcher posts notifications as JSON to a configured endpoint.
type WebhookDispatcher struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewWebhookDispatcher creates a dispatcher targeting the given webhook URL.
func NewWebhookDispatcher(url string, timeout time.Duration, logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "notify"),
	}
}

// Dispatch delivers a single notification. Any non-2xx response counts as
// a delivery failure.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	d.log.Debug("notification delivered", "recipient", n.Recipient, "title", n.Title)
	return nil
}

// LogDispatcher writes notifications to the application log instead of
// delivering them anywhere. Used when no webhook URL is configured.
type LogDispatcher struct {
	log *slog.Logger
}

// NewLogDispatcher creates a dispatcher that only logs.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{log: logger.With("adapter", "notify")}
}

// Dispatch logs the notification and reports success.
func (d *LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.log.Info("reminder due",
		"recipient", n.Recipient, "title", n.Title, "body", n.Body)
	return nil
}
