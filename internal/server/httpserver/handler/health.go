package handler

import (
	"net/http"
	"time"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady reports 503 until the log has been replayed.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil || !h.engine.Ready() {
		h.writeError(w, r, http.StatusServiceUnavailable, "LK-SYS-5031", "replaying append-only log")
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
