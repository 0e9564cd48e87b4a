package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/vetlink-systems/vetlink-triage/internal/messaging"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// PushTransport publishes push notifications on the message bus for vet-facing
// clients to consume.
type PushTransport struct {
	conn *nats.Conn
}

// NewPushTransport creates a push transport over the given NATS connection.
func NewPushTransport(conn *nats.Conn) *PushTransport {
	return &PushTransport{conn: conn}
}

// Send publishes the payload on the push subject, scoped by the channel's
// optional "topic" config entry.
func (t *PushTransport) Send(ctx context.Context, ch *models.NotificationChannel, p *Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := messaging.SubjectNotifyPush
	if topic := ch.Config["topic"]; topic != "" {
		subject = subject + "." + topic
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := t.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
