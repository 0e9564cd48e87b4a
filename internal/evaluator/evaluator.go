// Package evaluator samples operational metrics against configured alert
// rules and raises alert instances on sustained breaches.
package evaluator

import (
	"context"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/metrics"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// Escalator receives fired instances and resolve requests. Implemented by
// *escalation.Engine.
type Escalator interface {
	Raise(ctx context.Context, binding *models.RuleBinding, value float64) (*models.AlertInstance, error)
	Resolve(ctx context.Context, instanceID string) (*models.AlertInstance, error)
	IsOpen(ctx context.Context, instanceID string) (bool, error)
}

// Evaluator compares live metrics to alert rules on a fixed tick.
type Evaluator struct {
	provider      Provider
	source        MetricsSource
	escalator     Escalator
	state         *StateManager
	sampleTimeout time.Duration
	logger        *logging.Logger
	now           func() time.Time

	// breachStart holds, per rule, the earliest consecutive tick at which the
	// rule's condition began to hold. Cleared on any non-breaching tick.
	breachStart map[string]time.Time
}

// NewEvaluator creates an evaluator.
func NewEvaluator(provider Provider, source MetricsSource, escalator Escalator, state *StateManager, sampleTimeout time.Duration, logger *logging.Logger) *Evaluator {
	return &Evaluator{
		provider:      provider,
		source:        source,
		escalator:     escalator,
		state:         state,
		sampleTimeout: sampleTimeout,
		logger:        logger,
		now:           time.Now,
		breachStart:   make(map[string]time.Time),
	}
}

// Run starts the evaluation loop. This should be called in a goroutine.
func (e *Evaluator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.InfoContext(ctx, "alert evaluator started", "interval", interval.String())

	// Run immediately on start
	e.evaluate(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.InfoContext(ctx, "alert evaluator stopped")
			return
		case <-ticker.C:
			e.evaluate(ctx)
		}
	}
}

// evaluate performs a single evaluation cycle over all enabled rules.
func (e *Evaluator) evaluate(ctx context.Context) {
	bindings, err := e.provider.ListBindings(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to fetch rule bindings", logging.Error(err))
		return
	}

	for _, binding := range bindings {
		if !binding.Rule.Enabled {
			continue
		}
		e.evaluateRule(ctx, binding)
	}
}

// evaluateRule samples one rule's metric and advances its breach state.
func (e *Evaluator) evaluateRule(ctx context.Context, binding *models.RuleBinding) {
	rule := binding.Rule
	now := e.now()

	value, err := e.sample(ctx, rule.Metric)
	if err != nil {
		// Fail-open: a failed or timed-out sample counts as non-breaching for
		// this tick so monitoring outages never escalate. The breach streak
		// resets, but an already-open instance is not resolved on a gap.
		metrics.IncSampleFailure(rule.Metric)
		e.logger.WarnContext(ctx, "metric sample failed",
			logging.RuleID(rule.ID), logging.Metric(rule.Metric), logging.Error(err))
		delete(e.breachStart, rule.ID)
		return
	}

	openID, hasOpen, err := e.state.OpenInstance(ctx, rule.ID)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to read open-instance state",
			logging.RuleID(rule.ID), logging.Error(err))
		return
	}

	// An instance can be resolved out of band through the API. The instance
	// record is authoritative: stale dedup state is cleared here so a
	// persisting condition re-fires instead of going silent.
	if hasOpen {
		open, err := e.escalator.IsOpen(ctx, openID)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to check open instance",
				logging.RuleID(rule.ID), logging.InstanceID(openID), logging.Error(err))
			return
		}
		if !open {
			if err := e.state.ClearOpen(ctx, rule.ID); err != nil {
				e.logger.ErrorContext(ctx, "failed to clear open instance",
					logging.RuleID(rule.ID), logging.Error(err))
				return
			}
			hasOpen = false
		}
	}

	if rule.Condition.Holds(value, rule.Threshold) {
		start, ok := e.breachStart[rule.ID]
		if !ok {
			start = now
			e.breachStart[rule.ID] = start
		}

		if hasOpen {
			return
		}
		if now.Sub(start) < rule.Duration {
			return
		}

		inst, err := e.escalator.Raise(ctx, binding, value)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to raise alert",
				logging.RuleID(rule.ID), logging.Error(err))
			return
		}
		if err := e.state.RecordOpen(ctx, rule.ID, inst.ID); err != nil {
			e.logger.ErrorContext(ctx, "failed to record open instance",
				logging.RuleID(rule.ID), logging.InstanceID(inst.ID), logging.Error(err))
		}
		return
	}

	// Condition no longer holds: the streak resets with no partial credit,
	// and any open instance resolves.
	delete(e.breachStart, rule.ID)

	if !hasOpen {
		return
	}
	if _, err := e.escalator.Resolve(ctx, openID); err != nil {
		e.logger.ErrorContext(ctx, "failed to resolve alert",
			logging.RuleID(rule.ID), logging.InstanceID(openID), logging.Error(err))
		return
	}
	if err := e.state.ClearOpen(ctx, rule.ID); err != nil {
		e.logger.ErrorContext(ctx, "failed to clear open instance",
			logging.RuleID(rule.ID), logging.Error(err))
	}
}

// sample reads the metric under the configured sampling timeout.
func (e *Evaluator) sample(ctx context.Context, metric string) (float64, error) {
	sampleCtx, cancel := context.WithTimeout(ctx, e.sampleTimeout)
	defer cancel()
	return e.source.Sample(sampleCtx, metric)
}
