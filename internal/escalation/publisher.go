package escalation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/vetlink-systems/vetlink-triage/internal/messaging"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// Publisher mirrors alert lifecycle events to NATS subjects.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher creates a NATS-backed alert event publisher.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// PublishAlertRaised publishes an alert raised event.
func (p *Publisher) PublishAlertRaised(ctx context.Context, a *models.AlertInstance) error {
	return p.publish(ctx, messaging.SubjectAlertsRaised, a)
}

// PublishAlertAcknowledged publishes an alert acknowledged event.
func (p *Publisher) PublishAlertAcknowledged(ctx context.Context, a *models.AlertInstance) error {
	return p.publish(ctx, messaging.SubjectAlertsAcknowledged, a)
}

// PublishAlertResolved publishes an alert resolved event.
func (p *Publisher) PublishAlertResolved(ctx context.Context, a *models.AlertInstance) error {
	return p.publish(ctx, messaging.SubjectAlertsResolved, a)
}

func (p *Publisher) publish(ctx context.Context, subject string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.conn.Publish(subject, bytes)
}
