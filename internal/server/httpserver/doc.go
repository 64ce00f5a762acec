// Package httpserver provides the admin HTTP listener of litekv-server.
//
// Routes:
//
//   - GET /healthz, GET /readyz
//   - GET /metrics (Prometheus)
//   - GET /v1/info
//   - POST /v1/aof/rewrite (admin token when configured)
//   - GET /ws (RESP over WebSocket, when enabled)
//
// Every route runs behind Recover, RequestID and AccessLog.
package httpserver
