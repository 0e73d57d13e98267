// Package notify formats and delivers the daily Slack notifications and
// decides whether a given day should get any at all.
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
)

// Webhook posts preformatted text to a Slack incoming webhook. Delivery
// is fire-and-forget: the response body is drained and discarded and
// nothing is retried.
type Webhook struct {
	url     string
	enabled bool
	client  *http.Client
	logger  *slog.Logger
}

// NewWebhook constructs the webhook sink. A disabled flag or empty URL
// turns Send into a no-op.
func NewWebhook(url string, enabled bool, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:     url,
		enabled: enabled,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Send posts one text payload.
func (w *Webhook) Send(ctx context.Context, text string) error {
	if !w.enabled || w.url == "" {
		w.logger.Debug("slack disabled, skipping send")
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook status %d", resp.StatusCode)
	}
	return nil
}
