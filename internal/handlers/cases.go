package handlers

import (
	"context"
	"net/http"

	"github.com/vetlink-systems/vetlink-triage/internal/httputil"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// CreateCase handles POST /api/v1/cases
func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.IntakeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PatientName == "" {
		httputil.WriteError(w, http.StatusBadRequest, "patient_name required")
		return
	}
	if !req.TriageLevel.Valid() {
		httputil.WriteError(w, http.StatusBadRequest, "invalid triage level")
		return
	}

	c, err := h.manager.Intake(r.Context(), &req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, c)
}

// GetCase handles GET /api/v1/cases/{id}
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/cases", "")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "case ID required")
		return
	}

	c, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, c)
}

// TransitionCase handles POST /api/v1/cases/{id}/transition
func (h *Handler) TransitionCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/cases", "/transition")

	var req models.TransitionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		httputil.WriteError(w, http.StatusBadRequest, "invalid status")
		return
	}

	c, err := h.transition(r.Context(), id, req.Status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, c)
}

// AssignCase handles POST /api/v1/cases/{id}/assign
func (h *Handler) AssignCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/cases", "/assign")

	var req models.AssignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VetID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "vet_id required")
		return
	}

	c, err := h.manager.Assign(r.Context(), id, req.VetID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, c)
}

// CancelCase handles POST /api/v1/cases/{id}/cancel
func (h *Handler) CancelCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/cases", "/cancel")

	c, err := h.transition(r.Context(), id, models.StatusCancelled)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, c)
}

// EstimateCase handles GET /api/v1/cases/{id}/estimate
func (h *Handler) EstimateCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/v1/cases", "/estimate")

	vetIDs, err := h.vets.AvailableVetIDs(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	est, err := h.manager.EstimatedWait(r.Context(), id, h.avgConsultMinutes, len(vetIDs))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, est)
}

func (h *Handler) transition(ctx context.Context, id string, status models.CaseStatus) (*models.Case, error) {
	return h.manager.Transition(ctx, id, status)
}
