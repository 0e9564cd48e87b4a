package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// Provider supplies enabled alert rules with their resolved escalation
// policies and channels. Rule/policy/channel CRUD lives in the external config
// service; the core only reads resolved bindings.
type Provider interface {
	ListBindings(ctx context.Context) ([]*models.RuleBinding, error)
}

// HTTPProvider implements Provider against the config service.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a new HTTP config provider.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// wire types for the config service response. Durations travel as strings
// ("30s", "5m") and are parsed here.
type wireRule struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Metric        string   `json:"metric"`
	Condition     string   `json:"condition"`
	Threshold     float64  `json:"threshold"`
	Duration      string   `json:"duration"`
	Severity      string   `json:"severity"`
	Notifications []string `json:"notifications"`
	Enabled       bool     `json:"enabled"`
}

type wireLevel struct {
	Delay    string   `json:"delay"`
	Channels []string `json:"channels"`
}

type wirePolicy struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Levels []wireLevel `json:"levels"`
}

type wireBinding struct {
	Rule     wireRule                      `json:"rule"`
	Policy   wirePolicy                    `json:"policy"`
	Channels []*models.NotificationChannel `json:"channels"`
}

// ListBindings fetches enabled rule bindings from the config service.
func (p *HTTPProvider) ListBindings(ctx context.Context) ([]*models.RuleBinding, error) {
	url := fmt.Sprintf("%s/api/v1/bindings?enabled=true", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bindings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body struct {
		Bindings []wireBinding `json:"bindings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	bindings := make([]*models.RuleBinding, 0, len(body.Bindings))
	for _, wb := range body.Bindings {
		b, err := wb.toBinding()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (wb *wireBinding) toBinding() (*models.RuleBinding, error) {
	duration, err := parseDuration(wb.Rule.Duration, 0)
	if err != nil {
		return nil, fmt.Errorf("rule %s: invalid duration %q: %w", wb.Rule.ID, wb.Rule.Duration, err)
	}

	rule := &models.AlertRule{
		ID:            wb.Rule.ID,
		Name:          wb.Rule.Name,
		Metric:        wb.Rule.Metric,
		Condition:     models.RuleCondition(wb.Rule.Condition),
		Threshold:     wb.Rule.Threshold,
		Duration:      duration,
		Severity:      wb.Rule.Severity,
		Notifications: wb.Rule.Notifications,
		Enabled:       wb.Rule.Enabled,
	}
	if !rule.Condition.Valid() {
		return nil, fmt.Errorf("rule %s: invalid condition %q", rule.ID, rule.Condition)
	}

	policy := &models.EscalationPolicy{
		ID:     wb.Policy.ID,
		Name:   wb.Policy.Name,
		Levels: make([]models.EscalationLevel, 0, len(wb.Policy.Levels)),
	}
	for _, wl := range wb.Policy.Levels {
		delay, err := parseDuration(wl.Delay, 0)
		if err != nil {
			return nil, fmt.Errorf("policy %s: invalid delay %q: %w", policy.ID, wl.Delay, err)
		}
		policy.Levels = append(policy.Levels, models.EscalationLevel{
			Delay:    delay,
			Channels: wl.Channels,
		})
	}

	channels := make(map[string]*models.NotificationChannel, len(wb.Channels))
	for _, ch := range wb.Channels {
		channels[ch.ID] = ch
	}

	return &models.RuleBinding{Rule: rule, Policy: policy, Channels: channels}, nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// StaticProvider implements Provider over a fixed binding set. It backs tests
// and file-configured single-node deployments.
type StaticProvider struct {
	bindings []*models.RuleBinding
}

// NewStaticProvider creates a provider returning the given bindings.
func NewStaticProvider(bindings ...*models.RuleBinding) *StaticProvider {
	return &StaticProvider{bindings: bindings}
}

// ListBindings returns the configured bindings.
func (p *StaticProvider) ListBindings(_ context.Context) ([]*models.RuleBinding, error) {
	return p.bindings, nil
}
