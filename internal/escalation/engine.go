// Package escalation drives raised alert instances through timed notification
// levels until acknowledged or resolved.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/metrics"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
	"github.com/vetlink-systems/vetlink-triage/internal/notify"
	"github.com/vetlink-systems/vetlink-triage/internal/repository"
)

var (
	ErrInstanceNotFound    = errors.New("alert instance not found")
	ErrAlreadyAcknowledged = errors.New("alert instance already acknowledged")
)

// persistTimeout bounds repository writes made from timer goroutines, which
// carry no caller context.
const persistTimeout = 5 * time.Second

// Notifier fans a payload out to a set of channels. Implemented by
// *notify.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, channels []*models.NotificationChannel, p *notify.Payload)
}

// EventPublisher mirrors alert lifecycle events to out-of-process consumers.
// nil disables mirroring.
type EventPublisher interface {
	PublishAlertRaised(ctx context.Context, a *models.AlertInstance) error
	PublishAlertAcknowledged(ctx context.Context, a *models.AlertInstance) error
	PublishAlertResolved(ctx context.Context, a *models.AlertInstance) error
}

// instanceState holds one open instance with its resolved policy and pending
// timers, keyed by level index so each timer cancels independently.
type instanceState struct {
	inst    *models.AlertInstance
	binding *models.RuleBinding
	timers  map[int]*time.Timer
}

// Engine owns alert instances from creation until resolution. Each escalation
// level is an independently cancellable timer anchored to the instance's
// TriggeredAt, so levels do not drift under dispatch latency.
type Engine struct {
	repo       repository.AlertRepository
	dispatcher Notifier
	events     EventPublisher
	logger     *logging.Logger
	now        func() time.Time

	mu     sync.Mutex
	states map[string]*instanceState
}

// NewEngine creates an escalation engine. events may be nil when no message
// bus is configured.
func NewEngine(repo repository.AlertRepository, dispatcher Notifier, events EventPublisher, logger *logging.Logger) *Engine {
	return &Engine{
		repo:       repo,
		dispatcher: dispatcher,
		events:     events,
		logger:     logger,
		now:        time.Now,
		states:     make(map[string]*instanceState),
	}
}

// Raise creates an alert instance for the binding and schedules every level of
// its policy. A level with zero delay dispatches immediately; dispatch never
// blocks the caller.
func (e *Engine) Raise(ctx context.Context, binding *models.RuleBinding, value float64) (*models.AlertInstance, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate instance id: %w", err)
	}

	inst := &models.AlertInstance{
		ID:           id.String(),
		RuleID:       binding.Rule.ID,
		RuleName:     binding.Rule.Name,
		Severity:     binding.Rule.Severity,
		Metric:       binding.Rule.Metric,
		Value:        value,
		TriggeredAt:  e.now(),
		CurrentLevel: -1,
	}

	if err := e.repo.CreateInstance(ctx, inst); err != nil {
		return nil, err
	}

	state := &instanceState{
		inst:    inst,
		binding: binding,
		timers:  make(map[int]*time.Timer),
	}

	e.mu.Lock()
	e.states[inst.ID] = state
	for i, level := range binding.Policy.Levels {
		idx := i
		delay := level.Delay
		if delay <= 0 {
			go e.fireLevel(inst.ID, idx)
			continue
		}
		state.timers[idx] = time.AfterFunc(delay, func() {
			e.fireLevel(inst.ID, idx)
		})
	}
	e.mu.Unlock()

	metrics.IncAlertFired(inst.Severity)
	e.logger.InfoContext(ctx, "alert raised",
		logging.InstanceID(inst.ID), logging.RuleID(inst.RuleID),
		logging.Metric(inst.Metric), "severity", inst.Severity)

	if e.events != nil {
		if err := e.events.PublishAlertRaised(ctx, inst); err != nil {
			e.logger.WarnContext(ctx, "failed to publish alert raised", logging.Error(err))
		}
	}

	return inst, nil
}

// fireLevel dispatches one escalation level if the instance is still open and
// un-acknowledged. A timer that lost the race to an acknowledgement or
// resolution is a no-op.
func (e *Engine) fireLevel(instanceID string, level int) {
	e.mu.Lock()
	state, ok := e.states[instanceID]
	if !ok {
		e.mu.Unlock()
		return
	}
	if state.inst.Acknowledged() || state.inst.ResolvedAt != nil {
		e.mu.Unlock()
		return
	}

	delete(state.timers, level)
	state.inst.CurrentLevel = level
	inst := *state.inst
	channels := e.levelChannels(state.binding, level)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	if err := e.repo.UpdateInstance(ctx, &inst); err != nil {
		e.logger.ErrorContext(ctx, "failed to persist escalation level",
			logging.InstanceID(inst.ID), logging.Level(level), logging.Error(err))
	}
	cancel()

	metrics.IncEscalation(fmt.Sprintf("%d", level))
	e.logger.InfoContext(context.Background(), "escalation level dispatched",
		logging.InstanceID(inst.ID), logging.Level(level))

	e.dispatcher.Dispatch(context.Background(), channels, &notify.Payload{
		InstanceID:  inst.ID,
		RuleID:      inst.RuleID,
		RuleName:    inst.RuleName,
		Severity:    inst.Severity,
		Metric:      inst.Metric,
		Value:       inst.Value,
		Level:       level,
		TriggeredAt: inst.TriggeredAt,
	})
}

// levelChannels resolves the channel IDs of a policy level against the
// binding's channel set. Unknown or disabled channels are dropped here;
// the dispatcher logs nothing for them.
func (e *Engine) levelChannels(binding *models.RuleBinding, level int) []*models.NotificationChannel {
	if level < 0 || level >= len(binding.Policy.Levels) {
		return nil
	}
	ids := binding.Policy.Levels[level].Channels
	channels := make([]*models.NotificationChannel, 0, len(ids))
	for _, id := range ids {
		if ch, ok := binding.Channels[id]; ok && ch.Enabled {
			channels = append(channels, ch)
		}
	}
	return channels
}

// Acknowledge marks the instance acknowledged and cancels all pending timers.
// A second acknowledgement returns ErrAlreadyAcknowledged so the race is
// visible to the caller.
func (e *Engine) Acknowledge(ctx context.Context, instanceID, by string) (*models.AlertInstance, error) {
	e.mu.Lock()
	state, ok := e.states[instanceID]
	if !ok {
		e.mu.Unlock()
		return e.acknowledgeArchived(ctx, instanceID, by)
	}

	if state.inst.Acknowledged() {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAcknowledged, instanceID)
	}

	now := e.now()
	state.inst.AcknowledgedAt = &now
	state.inst.AcknowledgedBy = &by
	stopTimers(state)
	inst := *state.inst
	e.mu.Unlock()

	if err := e.repo.UpdateInstance(ctx, &inst); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "alert acknowledged",
		logging.InstanceID(inst.ID), "acknowledged_by", by)

	if e.events != nil {
		if err := e.events.PublishAlertAcknowledged(ctx, &inst); err != nil {
			e.logger.WarnContext(ctx, "failed to publish alert acknowledged", logging.Error(err))
		}
	}

	return &inst, nil
}

// acknowledgeArchived handles instances the engine no longer tracks in memory,
// e.g. raised before a restart. Timers for those are already gone.
func (e *Engine) acknowledgeArchived(ctx context.Context, instanceID, by string) (*models.AlertInstance, error) {
	inst, err := e.repo.GetInstance(ctx, instanceID)
	if err != nil {
		if errors.Is(err, repository.ErrInstanceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
		}
		return nil, err
	}
	if inst.Acknowledged() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAcknowledged, instanceID)
	}

	now := e.now()
	inst.AcknowledgedAt = &now
	inst.AcknowledgedBy = &by
	if err := e.repo.UpdateInstance(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Resolve marks the instance resolved, cancels any pending timers regardless
// of acknowledgement state, and archives it. History is retained in the
// repository.
func (e *Engine) Resolve(ctx context.Context, instanceID string) (*models.AlertInstance, error) {
	e.mu.Lock()
	state, ok := e.states[instanceID]
	var inst models.AlertInstance
	if ok {
		now := e.now()
		state.inst.ResolvedAt = &now
		stopTimers(state)
		delete(e.states, instanceID)
		inst = *state.inst
	}
	e.mu.Unlock()

	if !ok {
		stored, err := e.repo.GetInstance(ctx, instanceID)
		if err != nil {
			if errors.Is(err, repository.ErrInstanceNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
			}
			return nil, err
		}
		if stored.ResolvedAt == nil {
			now := e.now()
			stored.ResolvedAt = &now
		}
		inst = *stored
	}

	if err := e.repo.UpdateInstance(ctx, &inst); err != nil {
		return nil, err
	}

	metrics.IncAlertResolved()
	e.logger.InfoContext(ctx, "alert resolved", logging.InstanceID(inst.ID))

	if e.events != nil {
		if err := e.events.PublishAlertResolved(ctx, &inst); err != nil {
			e.logger.WarnContext(ctx, "failed to publish alert resolved", logging.Error(err))
		}
	}

	return &inst, nil
}

// ListOpen retrieves all unresolved alert instances.
func (e *Engine) ListOpen(ctx context.Context) ([]*models.AlertInstance, error) {
	return e.repo.ListOpenInstances(ctx)
}

// IsOpen reports whether the instance exists and is not yet resolved. An
// unknown ID counts as not open.
func (e *Engine) IsOpen(ctx context.Context, instanceID string) (bool, error) {
	inst, err := e.repo.GetInstance(ctx, instanceID)
	if errors.Is(err, repository.ErrInstanceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return inst.Open(), nil
}

// Stop cancels every pending timer. Used on shutdown; instances stay open in
// the repository.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, state := range e.states {
		stopTimers(state)
	}
}

func stopTimers(state *instanceState) {
	for idx, timer := range state.timers {
		timer.Stop()
		delete(state.timers, idx)
	}
}
