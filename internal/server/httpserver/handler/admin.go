package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// handleRewrite compacts the append-only log to the live key set.
func (h *Handler) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil || h.engine.AOF() == nil || !h.engine.AOF().Enabled() {
		h.handleServiceError(w, r, domain.ErrAOFUnavailable.WithDetails("aof disabled"))
		return
	}

	start := time.Now()
	before := h.engine.AOF().Size()
	if err := h.engine.Rewrite(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, RewriteResponse{
		BytesBefore: before,
		BytesAfter:  h.engine.AOF().Size(),
		Elapsed:     time.Since(start).String(),
	})
}
