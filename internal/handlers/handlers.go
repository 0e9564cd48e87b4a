// Package handlers implements the triage HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vetlink-systems/vetlink-triage/internal/casestore"
	"github.com/vetlink-systems/vetlink-triage/internal/escalation"
	"github.com/vetlink-systems/vetlink-triage/internal/httputil"
	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/queue"
	"github.com/vetlink-systems/vetlink-triage/internal/repository"
)

// Handler carries the service dependencies for all API routes.
type Handler struct {
	manager           *queue.Manager
	engine            *escalation.Engine
	vets              queue.VetDirectory
	avgConsultMinutes int
	logger            *logging.Logger
}

// NewHandler creates the API handler set.
func NewHandler(manager *queue.Manager, engine *escalation.Engine, vets queue.VetDirectory, avgConsultMinutes int, logger *logging.Logger) *Handler {
	return &Handler{
		manager:           manager,
		engine:            engine,
		vets:              vets,
		avgConsultMinutes: avgConsultMinutes,
		logger:            logger,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck handles readiness check requests
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// pathID extracts the {id} segment from /prefix/{id} or /prefix/{id}/suffix.
func pathID(path, prefix, suffix string) string {
	id := strings.TrimPrefix(path, prefix)
	id = strings.TrimSuffix(id, suffix)
	return strings.Trim(id, "/")
}

// writeDomainError maps service errors onto HTTP status codes. Caller misuse
// and races surface synchronously; nothing is swallowed.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrCaseNotFound),
		errors.Is(err, repository.ErrInstanceNotFound),
		errors.Is(err, escalation.ErrInstanceNotFound),
		errors.Is(err, queue.ErrVetNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, casestore.ErrInvalidTransition),
		errors.Is(err, casestore.ErrAlreadyAssigned),
		errors.Is(err, escalation.ErrAlreadyAcknowledged),
		errors.Is(err, queue.ErrNotWaiting),
		errors.Is(err, queue.ErrAutoAssignDisabled):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
