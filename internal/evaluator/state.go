package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// StateManager tracks the open alert instance per rule. With Redis enabled the
// state survives restarts, so a rule cannot double-fire across a redeploy;
// otherwise an in-process map provides the same guarantee for a single run.
type StateManager struct {
	redis   *redis.Client
	enabled bool

	mu    sync.Mutex
	local map[string]string
}

// NewStateManager creates a state manager. Pass a nil client or enabled=false
// to fall back to in-process state.
func NewStateManager(redisClient *redis.Client, enabled bool) *StateManager {
	return &StateManager{
		redis:   redisClient,
		enabled: enabled,
		local:   make(map[string]string),
	}
}

// IsEnabled returns whether Redis-backed state is active.
func (sm *StateManager) IsEnabled() bool {
	return sm.enabled && sm.redis != nil
}

// OpenInstance returns the open instance ID recorded for the rule, if any.
func (sm *StateManager) OpenInstance(ctx context.Context, ruleID string) (string, bool, error) {
	if !sm.IsEnabled() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		id, ok := sm.local[ruleID]
		return id, ok, nil
	}

	id, err := sm.redis.Get(ctx, sm.openKey(ruleID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get open instance: %w", err)
	}
	return id, true, nil
}

// RecordOpen records the instance as the rule's open firing. No TTL: the entry
// is cleared explicitly when the instance resolves.
func (sm *StateManager) RecordOpen(ctx context.Context, ruleID, instanceID string) error {
	if !sm.IsEnabled() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		sm.local[ruleID] = instanceID
		return nil
	}

	if err := sm.redis.Set(ctx, sm.openKey(ruleID), instanceID, 0).Err(); err != nil {
		return fmt.Errorf("failed to record open instance: %w", err)
	}
	return nil
}

// ClearOpen removes the rule's open-instance record.
func (sm *StateManager) ClearOpen(ctx context.Context, ruleID string) error {
	if !sm.IsEnabled() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		delete(sm.local, ruleID)
		return nil
	}

	if err := sm.redis.Del(ctx, sm.openKey(ruleID)).Err(); err != nil {
		return fmt.Errorf("failed to clear open instance: %w", err)
	}
	return nil
}

func (sm *StateManager) openKey(ruleID string) string {
	return "triage:alerts:open:" + ruleID
}
