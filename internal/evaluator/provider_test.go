package evaluator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

const bindingsResponse = `{
	"bindings": [
		{
			"rule": {
				"id": "rule-1",
				"name": "queue too deep",
				"metric": "queue_size",
				"condition": "above",
				"threshold": 10,
				"duration": "5m",
				"severity": "warning",
				"notifications": ["ch-oncall"],
				"enabled": true
			},
			"policy": {
				"id": "pol-1",
				"name": "standard",
				"levels": [
					{"delay": "0s", "channels": ["ch-oncall"]},
					{"delay": "10m", "channels": ["ch-oncall", "ch-lead"]}
				]
			},
			"channels": [
				{"id": "ch-oncall", "name": "on-call", "type": "push", "enabled": true},
				{"id": "ch-lead", "name": "lead", "type": "sms", "config": {"to": "+15551234"}, "enabled": true}
			]
		}
	]
}`

func TestHTTPProvider_ListBindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bindings", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("enabled"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bindingsResponse))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL)
	bindings, err := provider.ListBindings(context.Background())
	require.NoError(t, err)
	require.Len(t, bindings, 1)

	b := bindings[0]
	assert.Equal(t, "rule-1", b.Rule.ID)
	assert.Equal(t, models.ConditionAbove, b.Rule.Condition)
	assert.Equal(t, 5*time.Minute, b.Rule.Duration)

	require.Len(t, b.Policy.Levels, 2)
	assert.Equal(t, time.Duration(0), b.Policy.Levels[0].Delay)
	assert.Equal(t, 10*time.Minute, b.Policy.Levels[1].Delay)
	assert.Equal(t, []string{"ch-oncall", "ch-lead"}, b.Policy.Levels[1].Channels)

	require.Contains(t, b.Channels, "ch-lead")
	assert.Equal(t, "sms", b.Channels["ch-lead"].Type)
	assert.Equal(t, "+15551234", b.Channels["ch-lead"].Config["to"])
}

func TestHTTPProvider_InvalidDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bindings":[{"rule":{"id":"r","condition":"above","duration":"soon"},"policy":{},"channels":[]}]}`))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL)
	_, err := provider.ListBindings(context.Background())
	assert.Error(t, err)
}

func TestHTTPProvider_InvalidCondition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bindings":[{"rule":{"id":"r","condition":"around","duration":"1m"},"policy":{},"channels":[]}]}`))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL)
	_, err := provider.ListBindings(context.Background())
	assert.Error(t, err)
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL)
	_, err := provider.ListBindings(context.Background())
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	binding := testBinding(time.Minute)
	provider := NewStaticProvider(binding)

	bindings, err := provider.ListBindings(context.Background())
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Same(t, binding, bindings[0])
}
