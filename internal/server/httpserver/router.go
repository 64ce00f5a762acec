package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/litekv-go/internal/server/httpserver/handler"
	"github.com/yndnr/litekv-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the API routes.
	Handler *handler.Handler

	// Metrics backs /metrics and the request metrics. Nil disables both.
	Metrics *metric.Registry

	// AdminToken guards POST /v1/aof/rewrite when set.
	AdminToken string

	Logger *slog.Logger
}

// NewRouter builds the top-level handler.
// Order: Recover -> RequestID -> AccessLog -> routes.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", cfg.Handler)
	mux.Handle("GET /readyz", cfg.Handler)
	mux.Handle("GET /v1/info", cfg.Handler)
	mux.Handle("GET /ws", cfg.Handler)
	mux.Handle("POST /v1/aof/rewrite", Chain(cfg.Handler, AdminToken(cfg.AdminToken)))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return Chain(mux,
		Recover(log),
		RequestID(),
		AccessLog(log, cfg.Metrics),
	)
}
