package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// GatewayTransport delivers email and sms notifications through the external
// delivery-gateway service, which owns provider credentials and retries.
type GatewayTransport struct {
	baseURL string
	client  *http.Client
}

// NewGatewayTransport creates a delivery-gateway transport.
func NewGatewayTransport(baseURL string) *GatewayTransport {
	return &GatewayTransport{baseURL: baseURL, client: &http.Client{}}
}

// Send posts a delivery request to the gateway. The channel's "to" config
// entry names the recipient (address or phone number).
func (t *GatewayTransport) Send(ctx context.Context, ch *models.NotificationChannel, p *Payload) error {
	to := ch.Config["to"]
	if to == "" {
		return fmt.Errorf("%s channel %s has no recipient configured", ch.Type, ch.ID)
	}

	reqBody := struct {
		Type    string   `json:"type"`
		To      string   `json:"to"`
		Payload *Payload `json:"payload"`
	}{
		Type:    ch.Type,
		To:      to,
		Payload: p,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/deliveries", t.baseURL)
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
