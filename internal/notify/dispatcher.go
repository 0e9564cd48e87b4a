// Package notify dispatches alert notifications to configured channels.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/metrics"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// ErrUnavailable marks a dispatch that could not complete within the timeout.
var ErrUnavailable = errors.New("channel unavailable")

// Payload is the notification content delivered to a channel.
type Payload struct {
	InstanceID  string    `json:"instance_id"`
	RuleID      string    `json:"rule_id"`
	RuleName    string    `json:"rule_name"`
	Severity    string    `json:"severity"`
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	Level       int       `json:"level"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Transport delivers a payload through one channel type.
type Transport interface {
	Send(ctx context.Context, ch *models.NotificationChannel, p *Payload) error
}

// Dispatcher fans a payload out to a set of channels. Delivery is best-effort:
// a failing or slow channel is logged and skipped, it never blocks the rest of
// the fan-out or later escalation levels.
type Dispatcher struct {
	transports map[string]Transport
	timeout    time.Duration
	logger     *logging.Logger
}

// NewDispatcher creates a dispatcher with a per-channel send timeout.
func NewDispatcher(timeout time.Duration, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		transports: make(map[string]Transport),
		timeout:    timeout,
		logger:     logger,
	}
}

// RegisterTransport binds a transport to a channel type (email, sms, webhook,
// push). Later registrations replace earlier ones.
func (d *Dispatcher) RegisterTransport(channelType string, t Transport) {
	d.transports[channelType] = t
}

// Dispatch delivers the payload to every enabled channel concurrently and
// returns when all sends have completed or timed out.
func (d *Dispatcher) Dispatch(ctx context.Context, channels []*models.NotificationChannel, p *Payload) {
	var wg sync.WaitGroup
	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}
		wg.Add(1)
		go func(ch *models.NotificationChannel) {
			defer wg.Done()
			d.send(ctx, ch, p)
		}(ch)
	}
	wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, ch *models.NotificationChannel, p *Payload) {
	t, ok := d.transports[ch.Type]
	if !ok {
		d.logger.WarnContext(ctx, "no transport for channel type",
			logging.ChannelID(ch.ID), "channel_type", ch.Type)
		metrics.IncDispatch(ch.Type, metrics.OutcomeError)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := t.Send(sendCtx, ch, p); err != nil {
		d.logger.WarnContext(ctx, "channel dispatch failed",
			logging.ChannelID(ch.ID), logging.InstanceID(p.InstanceID), logging.Error(err))
		metrics.IncDispatch(ch.Type, metrics.OutcomeError)
		return
	}

	metrics.IncDispatch(ch.Type, metrics.OutcomeOK)
}
