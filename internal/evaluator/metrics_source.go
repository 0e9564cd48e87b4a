package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// ErrUnknownMetric marks a metric name no source can supply.
var ErrUnknownMetric = errors.New("unknown metric")

// MetricsSource samples a named operational signal.
type MetricsSource interface {
	Sample(ctx context.Context, metric string) (float64, error)
}

// Queue-derived metric names.
const (
	MetricQueueSize   = "queue_size"
	MetricLongestWait = "longest_wait_minutes"
	MetricRedWaiting  = "red_waiting"
	MetricActiveCases = "active_cases"
)

// CaseLister is the slice of the case store the queue source reads.
type CaseLister interface {
	ListActive(ctx context.Context) ([]*models.Case, error)
}

// QueueMetricsSource derives operational metrics from the live case set.
type QueueMetricsSource struct {
	cases CaseLister
	now   func() time.Time
}

// NewQueueMetricsSource creates a source over the case store.
func NewQueueMetricsSource(cases CaseLister) *QueueMetricsSource {
	return &QueueMetricsSource{cases: cases, now: time.Now}
}

// Sample computes the named queue metric from the active case set.
func (s *QueueMetricsSource) Sample(ctx context.Context, metric string) (float64, error) {
	active, err := s.cases.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active cases: %w", err)
	}

	switch metric {
	case MetricActiveCases:
		return float64(len(active)), nil
	case MetricQueueSize:
		n := 0
		for _, c := range active {
			if c.Status == models.StatusWaiting {
				n++
			}
		}
		return float64(n), nil
	case MetricRedWaiting:
		n := 0
		for _, c := range active {
			if c.Status == models.StatusWaiting && c.TriageLevel == models.TriageRed {
				n++
			}
		}
		return float64(n), nil
	case MetricLongestWait:
		now := s.now()
		longest := 0.0
		for _, c := range active {
			if c.Status != models.StatusWaiting {
				continue
			}
			if mins := now.Sub(c.CreatedAt).Minutes(); mins > longest {
				longest = mins
			}
		}
		return longest, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
}

// HTTPMetricsSource samples metrics from an external metrics service.
type HTTPMetricsSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPMetricsSource creates a metrics client. The per-sample deadline comes
// from the evaluator's sample timeout context.
func NewHTTPMetricsSource(baseURL string) *HTTPMetricsSource {
	return &HTTPMetricsSource{baseURL: baseURL, client: &http.Client{}}
}

// Sample fetches the named metric's current value.
func (s *HTTPMetricsSource) Sample(ctx context.Context, metric string) (float64, error) {
	url := fmt.Sprintf("%s/api/v1/metrics/%s", s.baseURL, metric)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to sample metric: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Value, nil
}

// ChainSource tries each source in order, falling through on ErrUnknownMetric
// so locally derived metrics and external signals share one namespace.
type ChainSource struct {
	sources []MetricsSource
}

// NewChainSource creates a chained metrics source.
func NewChainSource(sources ...MetricsSource) *ChainSource {
	return &ChainSource{sources: sources}
}

// Sample returns the first source's value for the metric, trying the next
// source only when the metric is unknown to the current one.
func (s *ChainSource) Sample(ctx context.Context, metric string) (float64, error) {
	for _, src := range s.sources {
		v, err := src.Sample(ctx, metric)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrUnknownMetric) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
}
