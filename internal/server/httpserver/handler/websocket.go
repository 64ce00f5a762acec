package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/litekv-go/internal/server/redisserver"
	"github.com/yndnr/litekv-go/internal/telemetry/logger"
)

const wsTransport = "ws"

// handleWebSocket carries RESP over a WebSocket. Every message, text or
// binary, is fed to the socket's Dispatcher; a message may hold any number
// of frames or part of one. Replies go back in one message of the same type.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.maxMsg)

	ctx := logger.WithConnID(r.Context(), ulid.Make().String())
	log := h.logger.With("conn_id", logger.ConnIDFromContext(ctx), "remote", r.RemoteAddr)

	if h.metrics != nil {
		h.metrics.ConnectionsTotal.WithLabelValues(wsTransport).Inc()
		h.metrics.ConnectionsActive.WithLabelValues(wsTransport).Inc()
		defer h.metrics.ConnectionsActive.WithLabelValues(wsTransport).Dec()
	}

	d := redisserver.NewDispatcher(h.exec, redisserver.WithProtocolErrorHook(func(msg string) {
		log.Debug("protocol error", "reason", msg)
		if h.metrics != nil {
			h.metrics.ProtocolErrors.Inc()
		}
	}))

	log.Debug("websocket opened")
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				log.Debug("websocket read error", "error", err)
			}
			log.Debug("websocket closed", "buffered", d.Buffered())
			return
		}

		out := d.Feed(msg)
		if len(out) == 0 {
			continue
		}
		if err := conn.WriteMessage(mt, out); err != nil {
			log.Debug("websocket write error", "error", err)
			return
		}
	}
}
