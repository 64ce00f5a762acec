package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.CommandsTotal == nil || r.AOFAppends == nil || r.ConnectionsActive == nil {
		t.Error("metric vectors not initialised")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestRegistry_ObserveCommand(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand(domain.KindSet, domain.OK())
	r.ObserveCommand(domain.KindGet, domain.Nil())
	r.ObserveCommand(domain.KindGet, domain.Bulk("v"))
	r.ObserveCommand(domain.KindGet, domain.Bulk("w"))
	r.ObserveCommand(domain.KindDel, domain.Bool(true))

	tests := []struct {
		command, reply string
		want           float64
	}{
		{"SET", "ok", 1},
		{"GET", "nil", 1},
		{"GET", "bulk", 2},
		{"DEL", "integer", 1},
		{"EXISTS", "integer", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues(tt.command, tt.reply))
		if got != tt.want {
			t.Errorf("commands_total{%s,%s} = %v, want %v", tt.command, tt.reply, got, tt.want)
		}
	}
}

func TestRegistry_ObserveAppendAndExpired(t *testing.T) {
	r := NewRegistry()

	r.ObserveAppend(domain.KindSet, true)
	r.ObserveAppend(domain.KindDel, false)
	r.ObserveExpired("k")
	r.ObserveExpired("k2")

	if got := testutil.ToFloat64(r.AOFAppends.WithLabelValues("SET", "ok")); got != 1 {
		t.Errorf("aof appends ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.AOFAppends.WithLabelValues("DEL", "failed")); got != 1 {
		t.Errorf("aof appends failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.LazyExpirations); got != 2 {
		t.Errorf("expired = %v, want 2", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ProtocolErrors.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "litekv_protocol_errors_total 1") {
		t.Errorf("metrics output missing protocol errors:\n%s", body)
	}
}
