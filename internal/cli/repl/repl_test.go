package repl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// fakeDoer answers from a map keyed by the joined arguments.
type fakeDoer struct {
	calls   [][]string
	replies map[string]domain.Reply
	err     error
}

func (f *fakeDoer) Do(_ context.Context, args ...string) (domain.Reply, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return domain.Reply{}, f.err
	}
	if r, ok := f.replies[strings.Join(args, " ")]; ok {
		return r, nil
	}
	return domain.Error("ERR unexpected"), nil
}

func runREPL(t *testing.T, d Doer, input string, opts ...Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	opts = append(opts, WithIO(strings.NewReader(input), &out))
	err := New(d, "127.0.0.1:6379", opts...).Run(context.Background())
	return out.String(), err
}

// ============================================================
// REPL
// ============================================================

func TestREPL_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "QUIT\n"},
		{"EOF", ""},
		{"empty lines then exit", "\n\n\nexit\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDoer{}
			if _, err := runREPL(t, d, tt.input); err != nil {
				t.Errorf("Run() error = %v", err)
			}
			if len(d.calls) != 0 {
				t.Errorf("Do() called %d times, want 0", len(d.calls))
			}
		})
	}
}

func TestREPL_ExecutesCommands(t *testing.T) {
	d := &fakeDoer{replies: map[string]domain.Reply{
		"SET k hello world": domain.OK(),
		"GET k":             domain.Bulk("hello world"),
		"GET missing":       domain.Nil(),
		"DEL k":             domain.Bool(true),
	}}

	out, err := runREPL(t, d, "SET k \"hello world\"\nGET k\nGET missing\nDEL k")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{"127.0.0.1:6379> ", "OK\n", "\"hello world\"\n", "(nil)\n", "(integer) 1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(d.calls) != 4 {
		t.Errorf("Do() called %d times, want 4", len(d.calls))
	}
}

func TestREPL_ParseErrorKeepsRunning(t *testing.T) {
	d := &fakeDoer{replies: map[string]domain.Reply{"GET k": domain.Nil()}}

	out, err := runREPL(t, d, "GET \"k\nGET k\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "(error) unbalanced quotes") {
		t.Errorf("output missing parse error:\n%s", out)
	}
	if len(d.calls) != 1 {
		t.Errorf("Do() called %d times, want 1", len(d.calls))
	}
}

func TestREPL_TransportErrorStops(t *testing.T) {
	boom := errors.New("connection reset")
	d := &fakeDoer{err: boom}

	_, err := runREPL(t, d, "GET k\nGET k\n")
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if len(d.calls) != 1 {
		t.Errorf("Do() called %d times, want 1", len(d.calls))
	}
}

func TestREPL_Help(t *testing.T) {
	out, err := runREPL(t, &fakeDoer{}, "help\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "SET key value [EX seconds]") {
		t.Errorf("help output:\n%s", out)
	}
}

func TestREPL_RecordsHistory(t *testing.T) {
	h := NewHistory("")
	d := &fakeDoer{replies: map[string]domain.Reply{"GET a": domain.Nil()}}

	if _, err := runREPL(t, d, "GET a\n\nexit\n", WithHistory(h)); err != nil {
		t.Fatal(err)
	}
	if h.Len() != 2 || h.Get(0) != "exit" || h.Get(1) != "GET a" {
		t.Errorf("history = %d entries, latest %q", h.Len(), h.Get(0))
	}
}

// ============================================================
// SplitArgs
// ============================================================

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"plain", "SET k v", []string{"SET", "k", "v"}, false},
		{"extra spaces", "  GET \t k  ", []string{"GET", "k"}, false},
		{"double quotes", `SET k "a b"`, []string{"SET", "k", "a b"}, false},
		{"single quotes", `SET k 'a "b"'`, []string{"SET", "k", `a "b"`}, false},
		{"empty quoted", `SET "" ""`, []string{"SET", "", ""}, false},
		{"escapes", `SET k "a\r\nb\t\\\"c"`, []string{"SET", "k", "a\r\nb\t\\\"c"}, false},
		{"hex escape", `SET k "\x00\x41"`, []string{"SET", "k", "\x00A"}, false},
		{"backslash outside quotes", `SET k a\b`, []string{"SET", "k", `a\b`}, false},
		{"unbalanced", `SET k "a`, nil, true},
		{"bad escape", `SET k "\q"`, nil, true},
		{"short hex", `SET k "\x4`, nil, true},
		{"empty line", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SplitArgs() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ============================================================
// History
// ============================================================

func TestHistory_AddAndGet(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3
	for _, s := range []string{"a", "b", "c", "d"} {
		h.Add(s)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Get(0) != "d" || h.Get(2) != "b" {
		t.Errorf("Get(0), Get(2) = %q, %q; want d, b", h.Get(0), h.Get(2))
	}
	if h.Get(3) != "" || h.Get(-1) != "" {
		t.Error("out of range Get should return empty")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")

	h := NewHistory(path)
	h.Add("SET a 1")
	h.Add("GET a")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 2 || loaded.Get(0) != "GET a" {
		t.Errorf("loaded %d entries, latest %q", loaded.Len(), loaded.Get(0))
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil for a missing file", err)
	}
	if err := NewHistory("").Save(); err != nil {
		t.Errorf("Save() without a file error = %v", err)
	}
}
