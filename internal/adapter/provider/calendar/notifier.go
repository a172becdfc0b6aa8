// Package calendar propagates schedule mutations to an external
// calendar-sync endpoint.
package calendar

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

// Event describes one schedule mutation for downstream calendar sync.
type Event struct {
	Action     string     `json:"action"` // created, updated, deleted
	UserID     uuid.UUID  `json:"userId"`
	ScheduleID uuid.UUID  `json:"scheduleId"`
	Name       string     `json:"name,omitempty"`
	Times      []string   `json:"times,omitempty"`
	StartDate  time.Time  `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// WebhookNotifier posts schedule events as JSON to a configured endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewWebhookNotifier creates a notifier targeting the given sync URL.
func NewWebhookNotifier(url string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "calendar"),
	}
}

// ScheduleChanged delivers a single mutation event.
func (n *WebhookNotifier) ScheduleChanged(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal calendar event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver calendar event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("calendar sync responded with status %d", resp.StatusCode)
	}

	n.log.Debug("calendar event delivered", "action", ev.Action, "schedule_id", ev.ScheduleID)
	return nil
}

// NoopNotifier drops every event. Used when no sync URL is configured.
type NoopNotifier struct{}

// ScheduleChanged does nothing.
func (NoopNotifier) ScheduleChanged(context.Context, Event) error { return nil }
