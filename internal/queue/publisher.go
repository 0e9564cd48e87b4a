package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/vetlink-systems/vetlink-triage/internal/messaging"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// CaseEvent is the payload published on case lifecycle subjects.
type CaseEvent struct {
	Case  *models.Case `json:"case"`
	VetID string       `json:"vet_id,omitempty"`
}

// Publisher mirrors queue and case events to NATS subjects for out-of-process
// consumers (dashboards, vet clients).
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher creates a NATS-backed publisher.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// PublishSnapshot publishes a queue snapshot.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap *models.QueueSnapshot) error {
	return p.publish(ctx, messaging.SubjectQueueSnapshot, snap)
}

// PublishBroadcast publishes an urgent red-triage broadcast.
func (p *Publisher) PublishBroadcast(ctx context.Context, snap *models.QueueSnapshot) error {
	return p.publish(ctx, messaging.SubjectQueueBroadcast, snap)
}

// PublishCaseCreated publishes a case created event.
func (p *Publisher) PublishCaseCreated(ctx context.Context, c *models.Case) error {
	return p.publish(ctx, messaging.SubjectCasesCreated, &CaseEvent{Case: c})
}

// PublishCaseAssigned publishes a case assigned event.
func (p *Publisher) PublishCaseAssigned(ctx context.Context, c *models.Case, vetID string) error {
	return p.publish(ctx, messaging.SubjectCasesAssigned, &CaseEvent{Case: c, VetID: vetID})
}

// PublishCaseUpdated publishes a case updated event.
func (p *Publisher) PublishCaseUpdated(ctx context.Context, c *models.Case) error {
	return p.publish(ctx, messaging.SubjectCasesUpdated, &CaseEvent{Case: c})
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
