package handlers

import (
	"net/http"

	"github.com/vetlink-systems/vetlink-triage/internal/httputil"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// ListAlerts handles GET /api/v1/alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	instances, err := h.engine.ListOpen(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, instances)
}

// AcknowledgeAlert handles POST /api/v1/alerts/{id}/ack
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/alerts", "/ack")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "instance ID required")
		return
	}

	var req models.AcknowledgeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.By == "" {
		httputil.WriteError(w, http.StatusBadRequest, "by required")
		return
	}

	inst, err := h.engine.Acknowledge(r.Context(), id, req.By)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, inst)
}

// ResolveAlert handles POST /api/v1/alerts/{id}/resolve
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/alerts", "/resolve")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "instance ID required")
		return
	}

	inst, err := h.engine.Resolve(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, inst)
}
