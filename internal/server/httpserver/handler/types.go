package handler

import (
	"time"

	"github.com/yndnr/litekv-go/internal/infra/buildinfo"
)

// Response is the JSON envelope for every endpoint except /metrics and /ws.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// HealthResponse is the data of /healthz and /readyz.
type HealthResponse struct {
	Status string `json:"status" yaml:"status"`
	Time   string `json:"time" yaml:"time"`
}

// InfoResponse is the data of GET /v1/info.
type InfoResponse struct {
	Build         buildinfo.Info `json:"build" yaml:"build"`
	UptimeSeconds int64          `json:"uptime_seconds" yaml:"uptime_seconds"`
	Ready         bool           `json:"ready" yaml:"ready"`
	Keys          int            `json:"keys" yaml:"keys"`
	AOF           AOFInfo        `json:"aof" yaml:"aof"`
}

// AOFInfo describes the append-only log.
type AOFInfo struct {
	Enabled          bool   `json:"enabled" yaml:"enabled"`
	Path             string `json:"path,omitempty" yaml:"path,omitempty"`
	SizeBytes        int64  `json:"size_bytes" yaml:"size_bytes"`
	ReplayedCommands int    `json:"replayed_commands" yaml:"replayed_commands"`
	ReplayedBytes    int64  `json:"replayed_bytes" yaml:"replayed_bytes"`
	DiscardedBytes   int64  `json:"discarded_bytes" yaml:"discarded_bytes"`
	Tail             string `json:"tail,omitempty" yaml:"tail,omitempty"`
}

// RewriteResponse is the data of POST /v1/aof/rewrite.
type RewriteResponse struct {
	BytesBefore int64  `json:"bytes_before" yaml:"bytes_before"`
	BytesAfter  int64  `json:"bytes_after" yaml:"bytes_after"`
	Elapsed     string `json:"elapsed" yaml:"elapsed"`
}
