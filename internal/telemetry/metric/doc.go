// Package metric provides Prometheus metrics for litekv.
//
//   - prometheus.go: the registry, command and connection metrics, /metrics handler
//   - collector.go: a collector reading store and log state at scrape time
//
// Metrics are exposed at /metrics by the HTTP server.
package metric
