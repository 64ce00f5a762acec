package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/server/redisserver"
	"github.com/yndnr/litekv-go/internal/storage"
	"github.com/yndnr/litekv-go/internal/telemetry/logger"
	"github.com/yndnr/litekv-go/internal/telemetry/metric"
)

// DefaultMaxMessageBytes limits one WebSocket message.
const DefaultMaxMessageBytes = 1 << 20

// Config wires the handler to the server components.
type Config struct {
	Engine   *storage.Engine
	Executor redisserver.Executor
	Metrics  *metric.Registry
	Logger   *slog.Logger

	// WebSocket registers GET /ws.
	WebSocket bool
	// MaxMessageBytes caps a WebSocket message. Zero uses the default.
	MaxMessageBytes int64
}

// Handler serves the API endpoints.
type Handler struct {
	engine   *storage.Engine
	exec     redisserver.Executor
	metrics  *metric.Registry
	logger   *slog.Logger
	started  time.Time
	upgrader websocket.Upgrader
	maxMsg   int64
	mux      *http.ServeMux
}

// New creates a Handler and registers its routes.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = DefaultMaxMessageBytes
	}

	h := &Handler{
		engine:  cfg.Engine,
		exec:    cfg.Executor,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		maxMsg: cfg.MaxMessageBytes,
		mux:    http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /readyz", h.handleReady)
	h.mux.HandleFunc("GET /v1/info", h.handleInfo)
	h.mux.HandleFunc("POST /v1/aof/rewrite", h.handleRewrite)
	if cfg.WebSocket {
		h.mux.HandleFunc("GET /ws", h.handleWebSocket)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(logger.RequestIDFromContext(r.Context()), data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message))
}

// handleServiceError converts domain errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	if code == "" {
		h.logger.Error("internal error", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "LK-SYS-5000", "internal server error")
		return
	}
	h.writeError(w, r, ErrorCodeToHTTPStatus(code), code, err.Error())
}

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.Contains(code, "-4"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
