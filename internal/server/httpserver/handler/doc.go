// Package handler provides the HTTP endpoints of litekv-server.
//
//   - health.go: liveness and readiness (ready once the log is replayed)
//   - info.go: server, store and log status
//   - admin.go: log compaction
//   - websocket.go: RESP over WebSocket, one Dispatcher per socket
//
// JSON responses share the envelope in types.go.
package handler
