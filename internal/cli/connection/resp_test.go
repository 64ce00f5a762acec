package connection

import (
	"context"
	"strings"
	"testing"
	"time"

	tresp "github.com/tidwall/resp"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/core/service"
	"github.com/yndnr/litekv-go/internal/server/redisserver"
	"github.com/yndnr/litekv-go/internal/storage/memory"
)

func startServer(t *testing.T) *redisserver.Server {
	t.Helper()

	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := redisserver.New(cfg, service.NewKVService(memory.New()))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func dialServer(t *testing.T, srv *redisserver.Server) *RESPClient {
	t.Helper()
	c, err := DialRESP(context.Background(), srv.Addr().String(), 5*time.Second)
	if err != nil {
		t.Fatalf("DialRESP() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// ============================================================
// RESPClient
// ============================================================

func TestRESPClient_Exec(t *testing.T) {
	c := dialServer(t, startServer(t))
	ctx := context.Background()

	steps := []struct {
		name string
		cmd  domain.Command
		want domain.Reply
	}{
		{"set", domain.NewSet("k", "v"), domain.OK()},
		{"get hit", domain.NewGet("k"), domain.Bulk("v")},
		{"exists", domain.NewExists("k"), domain.Bool(true)},
		{"del", domain.NewDel("k"), domain.Bool(true)},
		{"get miss", domain.NewGet("k"), domain.Nil()},
		{"set ex", domain.NewSetEX("t", "1", 100), domain.OK()},
		{"binary value", domain.NewSet("b", "a\r\nb"), domain.OK()},
		{"get binary", domain.NewGet("b"), domain.Bulk("a\r\nb")},
	}

	for _, st := range steps {
		got, err := c.Exec(ctx, st.cmd)
		if err != nil {
			t.Fatalf("%s: Exec() error = %v", st.name, err)
		}
		if got != st.want {
			t.Errorf("%s: Exec() = %+v, want %+v", st.name, got, st.want)
		}
	}
}

func TestRESPClient_DoUnknownCommand(t *testing.T) {
	c := dialServer(t, startServer(t))

	got, err := c.Do(context.Background(), "PING")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got.Kind != domain.ReplyError {
		t.Fatalf("Do(PING) = %+v, want error reply", got)
	}
	if !strings.Contains(got.Message, "PING") {
		t.Errorf("Message = %q, want it to name the command", got.Message)
	}

	// The connection stays usable after an error reply.
	if got, err := c.Exec(context.Background(), domain.NewExists("x")); err != nil || got != domain.Bool(false) {
		t.Errorf("Exec() after error = %+v, %v", got, err)
	}
}

func TestRESPClient_DoEmpty(t *testing.T) {
	c := dialServer(t, startServer(t))
	if _, err := c.Do(context.Background()); err == nil {
		t.Error("Do() with no args should fail")
	}
}

func TestRESPClient_ExecUnsupportedKind(t *testing.T) {
	c := dialServer(t, startServer(t))
	if _, err := c.Exec(context.Background(), domain.Command{}); err == nil {
		t.Error("Exec(unknown kind) should fail")
	}
}

func TestDialRESP_Refused(t *testing.T) {
	srv := startServer(t)
	addr := srv.Addr().String()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)

	if _, err := DialRESP(context.Background(), addr, time.Second); err == nil {
		t.Error("DialRESP() to a closed listener should fail")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		cmd  domain.Command
		want []string
	}{
		{"set", domain.NewSet("k", "v"), []string{"SET", "k", "v"}},
		{"set ex", domain.NewSetEX("k", "v", 7), []string{"SET", "k", "v", "EX", "7"}},
		{"get", domain.NewGet("k"), []string{"GET", "k"}},
		{"del", domain.NewDel("k"), []string{"DEL", "k"}},
		{"exists", domain.NewExists("k"), []string{"EXISTS", "k"}},
		{"unknown", domain.Command{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommandArgs(tt.cmd)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") || len(got) != len(tt.want) {
				t.Errorf("CommandArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToReply(t *testing.T) {
	tests := []struct {
		name    string
		wire    string
		want    domain.Reply
		wantErr bool
	}{
		{"ok", "+OK\r\n", domain.OK(), false},
		{"simple string", "+PONG\r\n", domain.Bulk("PONG"), false},
		{"bulk", "$3\r\nabc\r\n", domain.Bulk("abc"), false},
		{"empty bulk", "$0\r\n\r\n", domain.Bulk(""), false},
		{"nil", "$-1\r\n", domain.Nil(), false},
		{"integer", ":1\r\n", domain.Bool(true), false},
		{"error", "-ERR boom\r\n", domain.Error("ERR boom"), false},
		{"array", "*1\r\n$1\r\na\r\n", domain.Reply{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, err := tresp.NewReader(strings.NewReader(tt.wire)).ReadValue()
			if err != nil {
				t.Fatalf("ReadValue() error = %v", err)
			}
			got, err := ToReply(v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ToReply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
