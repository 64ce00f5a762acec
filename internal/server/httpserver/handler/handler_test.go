package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/core/service"
	"github.com/yndnr/litekv-go/internal/storage"
	"github.com/yndnr/litekv-go/internal/telemetry/metric"
)

// newTestEngine returns a recovered engine logging to a temp dir.
func newTestEngine(t *testing.T, aofEnabled bool) *storage.Engine {
	t.Helper()
	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "appendonly.aof"))
	cfg.AOFEnabled = aofEnabled
	e := storage.New(cfg)
	t.Cleanup(func() { e.Close() })
	return e
}

func newTestHandler(t *testing.T, e *storage.Engine, ws bool) (*Handler, *metric.Registry) {
	t.Helper()
	m := metric.NewRegistry()
	svc := service.NewKVService(e.Store(), service.WithLog(e))
	return New(Config{Engine: e, Executor: svc, Metrics: m, WebSocket: ws}), m
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var resp Response
	if data != nil {
		resp.Data = data
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

// ============================================================
// Health
// ============================================================

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t, newTestEngine(t, false), false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var data HealthResponse
	if resp := decodeResponse(t, rec, &data); resp.Code != "OK" || data.Status != "healthy" {
		t.Errorf("response = %+v, data = %+v", resp, data)
	}
}

func TestHandler_ReadyAfterRecover(t *testing.T) {
	e := newTestEngine(t, true)
	h, _ := newTestHandler(t, e, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before Recover = %d, want 503", rec.Code)
	}

	if err := e.Recover(context.Background()); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status after Recover = %d, want 200", rec.Code)
	}
}

// ============================================================
// Info
// ============================================================

func TestHandler_Info(t *testing.T) {
	e := newTestEngine(t, true)
	if err := e.Recover(context.Background()); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	h, _ := newTestHandler(t, e, false)
	h.exec.Execute(domain.NewSet("a", "1"))
	h.exec.Execute(domain.NewSet("b", "2"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/info", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info InfoResponse
	decodeResponse(t, rec, &info)
	if !info.Ready {
		t.Error("Ready = false, want true")
	}
	if info.Keys != 2 {
		t.Errorf("Keys = %d, want 2", info.Keys)
	}
	if !info.AOF.Enabled || info.AOF.SizeBytes == 0 {
		t.Errorf("AOF = %+v, want enabled with data", info.AOF)
	}
	if info.Build.Version == "" {
		t.Error("Build.Version is empty")
	}
}

// ============================================================
// Admin
// ============================================================

func TestHandler_Rewrite(t *testing.T) {
	e := newTestEngine(t, true)
	if err := e.Recover(context.Background()); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	h, _ := newTestHandler(t, e, false)
	for i := 0; i < 10; i++ {
		h.exec.Execute(domain.NewSet("k", strings.Repeat("v", i)))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/aof/rewrite", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var data RewriteResponse
	decodeResponse(t, rec, &data)
	if data.BytesAfter >= data.BytesBefore {
		t.Errorf("rewrite did not shrink the log: %d -> %d", data.BytesBefore, data.BytesAfter)
	}
}

func TestHandler_RewriteWithoutAOF(t *testing.T) {
	h, _ := newTestHandler(t, newTestEngine(t, false), false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/aof/rewrite", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "LK-AOF-5030" {
		t.Errorf("X-Error-Code = %q, want LK-AOF-5030", got)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"LK-PROTO-4000", http.StatusBadRequest},
		{"LK-PROTO-4290", http.StatusTooManyRequests},
		{"LK-AOF-5030", http.StatusServiceUnavailable},
		{"LK-AOF-5001", http.StatusInternalServerError},
		{"LK-SYS-4010", http.StatusUnauthorized},
		{"LK-SYS-4000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

// ============================================================
// WebSocket
// ============================================================

func dialWS(t *testing.T, h http.Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func wsRoundTrip(t *testing.T, conn *websocket.Conn, in string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte(in)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	return string(msg)
}

func TestHandler_WebSocket(t *testing.T) {
	e := newTestEngine(t, false)
	h, m := newTestHandler(t, e, true)
	conn := dialWS(t, h)

	if got := wsRoundTrip(t, conn, "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"); got != "+OK\r\n" {
		t.Fatalf("SET reply = %q", got)
	}
	if got := wsRoundTrip(t, conn, "*2\r\n$3\r\nGET\r\n$1\r\nk\r\n*2\r\n$6\r\nEXISTS\r\n$1\r\nz\r\n"); got != "$1\r\nv\r\n:0\r\n" {
		t.Fatalf("pipelined reply = %q", got)
	}
	if got := wsRoundTrip(t, conn, "HELLO\r\n"); got != "-ERR Expected '*'\r\n" {
		t.Fatalf("error reply = %q", got)
	}

	if v, ok := e.Store().Get("k"); !ok || v != "v" {
		t.Errorf("store.Get(k) = %q, %v", v, ok)
	}
	if n := testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues("ws")); n != 1 {
		t.Errorf("ws connections total = %v, want 1", n)
	}
	if n := testutil.ToFloat64(m.ProtocolErrors); n != 1 {
		t.Errorf("protocol errors = %v, want 1", n)
	}
}

func TestHandler_WebSocketSplitFrame(t *testing.T) {
	h, _ := newTestHandler(t, newTestEngine(t, false), true)
	conn := dialWS(t, h)

	// The first half yields no reply, so only one message comes back.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("*2\r\n$3\r\nDEL")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if got := wsRoundTrip(t, conn, "\r\n$1\r\nk\r\n"); got != ":0\r\n" {
		t.Errorf("reply = %q, want :0", got)
	}
}

func TestHandler_WebSocketDisabled(t *testing.T) {
	h, _ := newTestHandler(t, newTestEngine(t, false), false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
