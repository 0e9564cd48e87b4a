package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/httputil"
	"github.com/vetlink-systems/vetlink-triage/internal/logging"
)

// GetQueue handles GET /api/v1/queue
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := h.manager.Refresh(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, snap)
}

// StreamQueue handles GET /api/v1/queue/stream. It serves queue snapshots
// over SSE: one event on connect, then one per queue change until the
// client disconnects.
func (h *Handler) StreamQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	snap, err := h.manager.Refresh(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	sub := h.manager.Subscribe()
	defer sub.Cancel()

	// The server-wide write timeout would cut long-lived streams; clear the
	// per-connection deadline for this response only.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.DebugContext(r.Context(), "failed to clear write deadline", logging.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := writeEvent(snap); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			if err := writeEvent(snap); err != nil {
				h.logger.DebugContext(r.Context(), "queue stream closed", logging.Error(err))
				return
			}
		}
	}
}

// AutoAssign handles POST /api/v1/queue/autoassign
func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	vetIDs, err := h.vets.AvailableVetIDs(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	assignments, err := h.manager.AutoAssign(r.Context(), vetIDs)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, assignments)
}
