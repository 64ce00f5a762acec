package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/litekv-go/internal/infra/buildinfo"
)

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.info())
}

func (h *Handler) info() InfoResponse {
	info := InfoResponse{
		Build:         buildinfo.Get(),
		UptimeSeconds: int64(time.Since(h.started) / time.Second),
	}
	if h.engine == nil {
		return info
	}

	info.Ready = h.engine.Ready()
	info.Keys = h.engine.Store().Len()

	st := h.engine.ReplayStats()
	info.AOF.ReplayedCommands = st.Commands
	info.AOF.ReplayedBytes = st.Bytes
	info.AOF.DiscardedBytes = st.Trailing
	if !st.Clean() {
		info.AOF.Tail = st.TailMessage
	}
	if log := h.engine.AOF(); log != nil {
		info.AOF.Enabled = log.Enabled()
		info.AOF.Path = log.Path()
		info.AOF.SizeBytes = log.Size()
	}
	return info
}
