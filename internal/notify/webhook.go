package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// WebhookTransport POSTs the payload as JSON to the channel's configured URL.
type WebhookTransport struct {
	client *http.Client
}

// NewWebhookTransport creates a webhook transport. The per-send deadline comes
// from the dispatch context, so the client itself carries no timeout.
func NewWebhookTransport() *WebhookTransport {
	return &WebhookTransport{client: &http.Client{}}
}

// Send delivers the payload to the channel's "url" config entry.
func (t *WebhookTransport) Send(ctx context.Context, ch *models.NotificationChannel, p *Payload) error {
	url := ch.Config["url"]
	if url == "" {
		return fmt.Errorf("webhook channel %s has no url configured", ch.ID)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code %d", ErrUnavailable, resp.StatusCode)
	}

	return nil
}
