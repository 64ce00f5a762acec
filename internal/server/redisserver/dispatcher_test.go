package redisserver

import (
	"strings"
	"testing"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/core/service"
	"github.com/yndnr/litekv-go/internal/storage/memory"
)

// recordingLog collects appended commands.
type recordingLog struct {
	cmds []domain.Command
}

func (l *recordingLog) Append(cmd domain.Command) bool {
	l.cmds = append(l.cmds, cmd)
	return true
}

func newTestDispatcher(opts ...DispatcherOption) (*Dispatcher, *memory.Store, *recordingLog) {
	store := memory.New()
	log := &recordingLog{}
	svc := service.NewKVService(store, service.WithLog(log))
	return NewDispatcher(svc, opts...), store, log
}

// ============================================================
// Feed
// ============================================================

func TestDispatcher_SetGetDelGet(t *testing.T) {
	d, _, log := newTestDispatcher()

	steps := []struct {
		in   string
		want string
	}{
		{"*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n", "+OK\r\n"},
		{"*2\r\n$3\r\nGET\r\n$1\r\na\r\n", "$1\r\n1\r\n"},
		{"*2\r\n$3\r\nDEL\r\n$1\r\na\r\n", ":1\r\n"},
		{"*2\r\n$3\r\nGET\r\n$1\r\na\r\n", "$-1\r\n"},
	}

	for _, st := range steps {
		if got := string(d.Feed([]byte(st.in))); got != st.want {
			t.Errorf("Feed(%q) = %q, want %q", st.in, got, st.want)
		}
	}

	if len(log.cmds) != 2 {
		t.Fatalf("logged %d commands, want 2 (SET, DEL)", len(log.cmds))
	}
	if log.cmds[0].Kind != domain.KindSet || log.cmds[1].Kind != domain.KindDel {
		t.Errorf("logged kinds = %v, %v; want SET, DEL", log.cmds[0].Kind, log.cmds[1].Kind)
	}
}

func TestDispatcher_Pipelining(t *testing.T) {
	d, _, _ := newTestDispatcher()

	in := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n" +
		"*2\r\n$6\r\nEXISTS\r\n$1\r\nk\r\n" +
		"*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"
	want := "+OK\r\n:1\r\n$1\r\nv\r\n"

	if got := string(d.Feed([]byte(in))); got != want {
		t.Errorf("Feed() = %q, want %q", got, want)
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", d.Buffered())
	}
}

func TestDispatcher_IncompleteThenComplete(t *testing.T) {
	d, _, _ := newTestDispatcher()
	frame := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$5\r\nhello\r\n"

	for i := 0; i < len(frame)-1; i++ {
		if got := d.Feed([]byte{frame[i]}); len(got) != 0 {
			t.Fatalf("Feed(byte %d) = %q, want no reply", i, got)
		}
	}
	if d.Buffered() != len(frame)-1 {
		t.Fatalf("Buffered() = %d, want %d", d.Buffered(), len(frame)-1)
	}
	if got := string(d.Feed([]byte{frame[len(frame)-1]})); got != "+OK\r\n" {
		t.Errorf("final Feed() = %q, want +OK", got)
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", d.Buffered())
	}
}

func TestDispatcher_KeepsPartialTail(t *testing.T) {
	d, _, _ := newTestDispatcher()

	got := d.Feed([]byte("*2\r\n$3\r\nGET\r\n$1\r\nk\r\n*2\r\n$3\r\nGE"))
	if string(got) != "$-1\r\n" {
		t.Fatalf("Feed() = %q, want $-1", got)
	}
	if d.Buffered() != len("*2\r\n$3\r\nGE") {
		t.Fatalf("Buffered() = %d, want partial frame kept", d.Buffered())
	}
	if got := string(d.Feed([]byte("T\r\n$1\r\nk\r\n"))); got != "$-1\r\n" {
		t.Errorf("Feed() = %q, want $-1", got)
	}
}

func TestDispatcher_ErrorClearsBuffer(t *testing.T) {
	var reasons []string
	d, store, _ := newTestDispatcher(WithProtocolErrorHook(func(msg string) { reasons = append(reasons, msg) }))

	// The SET after the bad frame is discarded along with it.
	in := "PING\r\n*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"
	got := string(d.Feed([]byte(in)))

	if !strings.HasPrefix(got, "-ERR ") || strings.Count(got, "\r\n") != 1 {
		t.Errorf("Feed() = %q, want a single error reply", got)
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0 after error", d.Buffered())
	}
	if store.Exists("k") {
		t.Error("command after the bad frame should not run")
	}
	if len(reasons) != 1 {
		t.Errorf("protocol error hook calls = %d, want 1", len(reasons))
	}

	// The connection keeps working.
	if got := string(d.Feed([]byte("*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"))); got != "$-1\r\n" {
		t.Errorf("Feed() after error = %q, want $-1", got)
	}
}

func TestDispatcher_RepliesBeforeErrorKept(t *testing.T) {
	d, _, _ := newTestDispatcher()

	got := string(d.Feed([]byte("*2\r\n$6\r\nEXISTS\r\n$1\r\nk\r\n*1\r\n$4\r\nPING\r\n")))
	want := ":0\r\n-ERR Unknown command 'PING'\r\n"
	if got != want {
		t.Errorf("Feed() = %q, want %q", got, want)
	}
}

func TestDispatcher_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"not an array", "+OK\r\n", "-ERR Expected '*'\r\n"},
		{"empty array", "*0\r\n", "-ERR Array must contain at least one element\r\n"},
		{"bad bulk prefix", "*1\r\n+GET\r\n", "-ERR Expected '$'\r\n"},
		{"wrong arity", "*1\r\n$3\r\nGET\r\n", "-ERR Wrong number of arguments for GET\r\n"},
		{"bad ttl", "*5\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n$2\r\nEX\r\n$2\r\n-1\r\n", "-ERR Invalid TTL value\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newTestDispatcher()
			if got := string(d.Feed([]byte(tt.in))); got != tt.want {
				t.Errorf("Feed(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDispatcher_RateLimited(t *testing.T) {
	allowed := 1
	limited := 0
	d, store, log := newTestDispatcher(
		WithAllow(func() bool {
			if allowed > 0 {
				allowed--
				return true
			}
			return false
		}),
		WithRateLimitHook(func() { limited++ }),
	)

	in := "*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n" +
		"*3\r\n$3\r\nSET\r\n$1\r\nb\r\n$1\r\n2\r\n"
	got := string(d.Feed([]byte(in)))

	if got != "+OK\r\n-ERR rate limit exceeded\r\n" {
		t.Errorf("Feed() = %q", got)
	}
	if store.Exists("b") {
		t.Error("rate-limited SET should not execute")
	}
	if len(log.cmds) != 1 {
		t.Errorf("logged %d commands, want 1", len(log.cmds))
	}
	if limited != 1 {
		t.Errorf("rate limit hook calls = %d, want 1", limited)
	}
}

// ============================================================
// Process
// ============================================================

func TestDispatcher_Process(t *testing.T) {
	d, _, _ := newTestDispatcher()

	frame := "*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"
	tests := []struct {
		name         string
		in           string
		wantReply    string
		wantConsumed int
	}{
		{"empty", "", "", 0},
		{"incomplete", frame[:5], "", 0},
		{"one frame", frame, "$-1\r\n", len(frame)},
		{"frame plus partial", frame + frame[:3], "$-1\r\n", len(frame)},
		{"error consumes all", "bogus" + frame, "-ERR Expected '*'\r\n", len("bogus" + frame)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, consumed := d.Process([]byte(tt.in))
			if string(reply) != tt.wantReply {
				t.Errorf("reply = %q, want %q", reply, tt.wantReply)
			}
			if consumed != tt.wantConsumed {
				t.Errorf("consumed = %d, want %d", consumed, tt.wantConsumed)
			}
		})
	}

	if d.Buffered() != 0 {
		t.Errorf("Process should not touch the buffer, Buffered() = %d", d.Buffered())
	}
}

func TestExecutorFunc(t *testing.T) {
	called := false
	d := NewDispatcher(ExecutorFunc(func(cmd domain.Command) domain.Reply {
		called = cmd.Kind == domain.KindExists && cmd.Key == "x"
		return domain.Bool(true)
	}))

	if got := string(d.Feed([]byte("*2\r\n$6\r\nEXISTS\r\n$1\r\nx\r\n"))); got != ":1\r\n" {
		t.Errorf("Feed() = %q, want :1", got)
	}
	if !called {
		t.Error("executor not called with EXISTS x")
	}
}
