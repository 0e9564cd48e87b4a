package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vetlink-systems/vetlink-triage/internal/handlers"
	"github.com/vetlink-systems/vetlink-triage/internal/middleware"
)

// NewRouter constructs a ServeMux with triage API routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.HandleFunc("/readyz", h.ReadyCheck)

	// Queue API
	mux.HandleFunc("/api/v1/queue", h.GetQueue)
	mux.HandleFunc("/api/v1/queue/stream", h.StreamQueue)
	mux.HandleFunc("/api/v1/queue/autoassign", h.AutoAssign)

	// Cases API
	mux.HandleFunc("/api/v1/cases", h.CreateCase)

	// Note: These are simplified routes. In production, use a proper router like chi or gorilla/mux
	mux.HandleFunc("/api/v1/cases/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// POST /api/v1/cases/:id/transition
		if strings.HasSuffix(path, "/transition") {
			h.TransitionCase(w, r)
			// POST /api/v1/cases/:id/assign
		} else if strings.HasSuffix(path, "/assign") {
			h.AssignCase(w, r)
			// POST /api/v1/cases/:id/cancel
		} else if strings.HasSuffix(path, "/cancel") {
			h.CancelCase(w, r)
			// GET /api/v1/cases/:id/estimate
		} else if strings.HasSuffix(path, "/estimate") {
			h.EstimateCase(w, r)
			// GET /api/v1/cases/:id
		} else {
			h.GetCase(w, r)
		}
	})

	// Alerts API
	mux.HandleFunc("/api/v1/alerts", h.ListAlerts)

	mux.HandleFunc("/api/v1/alerts/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// POST /api/v1/alerts/:id/ack
		if strings.HasSuffix(path, "/ack") {
			h.AcknowledgeAlert(w, r)
			// POST /api/v1/alerts/:id/resolve
		} else if strings.HasSuffix(path, "/resolve") {
			h.ResolveAlert(w, r)
		} else {
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
