package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

const namespace = "litekv"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal  *prometheus.CounterVec
	ProtocolErrors prometheus.Counter
	RateLimited    prometheus.Counter

	// Storage metrics
	AOFAppends      *prometheus.CounterVec
	LazyExpirations prometheus.Counter
	ReplayCommands  prometheus.Gauge
	ReplayBytes     prometheus.Gauge

	// Connection metrics
	ConnectionsActive *prometheus.GaugeVec
	ConnectionsTotal  *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with every metric registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command and reply type.",
		}, []string{"command", "reply"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Frames rejected by the decoder.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Commands rejected by the per-client rate limit.",
		}),

		AOFAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aof",
			Name:      "appends_total",
			Help:      "Append-only log writes, by command and result.",
		}, []string{"command", "result"}),
		LazyExpirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_keys_total",
			Help:      "Keys evicted on access after their TTL elapsed.",
		}),
		ReplayCommands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aof",
			Name:      "replay_commands",
			Help:      "Commands applied by the last replay.",
		}),
		ReplayBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aof",
			Name:      "replay_bytes",
			Help:      "Bytes applied by the last replay.",
		}),

		ConnectionsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open client connections, by transport.",
		}, []string{"transport"}),
		ConnectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted client connections, by transport.",
		}, []string{"transport"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.CommandsTotal,
		r.ProtocolErrors,
		r.RateLimited,
		r.AOFAppends,
		r.LazyExpirations,
		r.ReplayCommands,
		r.ReplayBytes,
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Register adds an extra collector, such as a StoreCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns the /metrics handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveCommand counts an executed command.
func (r *Registry) ObserveCommand(kind domain.Kind, reply domain.Reply) {
	r.CommandsTotal.WithLabelValues(kind.String(), replyLabel(reply.Kind)).Inc()
}

// ObserveAppend counts a log write.
func (r *Registry) ObserveAppend(kind domain.Kind, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.AOFAppends.WithLabelValues(kind.String(), result).Inc()
}

// ObserveExpired counts a lazily evicted key. It has the signature of a
// memory.WithExpireHook callback.
func (r *Registry) ObserveExpired(string) {
	r.LazyExpirations.Inc()
}

func replyLabel(k domain.ReplyKind) string {
	switch k {
	case domain.ReplyOK:
		return "ok"
	case domain.ReplyBulk:
		return "bulk"
	case domain.ReplyNil:
		return "nil"
	case domain.ReplyInteger:
		return "integer"
	default:
		return "error"
	}
}
