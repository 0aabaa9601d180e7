package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"insight-engine/internal/domain"
)

// WebhookSink delivers alert records as JSON POSTs. The caller decides what
// to do with delivery errors; this engine logs and moves on.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a sink posting to url.
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: client,
	}
}

func (s *WebhookSink) Notify(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert sink returned status %d", resp.StatusCode)
	}
	return nil
}

var _ domain.AlertSink = (*WebhookSink)(nil)
