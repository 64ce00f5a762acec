package command

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/litekv-go/internal/core/service"
	"github.com/yndnr/litekv-go/internal/server/httpserver/handler"
	"github.com/yndnr/litekv-go/internal/server/redisserver"
	"github.com/yndnr/litekv-go/internal/storage"
	"github.com/yndnr/litekv-go/internal/storage/memory"
)

// runResult captures one CLI invocation.
type runResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the app with a config file that does not exist, so only
// the flags in args and the built-in defaults apply.
func runCLI(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	return runCLIWithConfig(t, filepath.Join(t.TempDir(), "absent.yaml"), stdin, args...)
}

func runCLIWithConfig(t *testing.T, configPath, stdin string, args ...string) runResult {
	t.Helper()

	app := App()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := append([]string{"litekv-cli", "--config", configPath}, args...)
	err := app.Run(full)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// startRESP starts a RESP server over a fresh store.
func startRESP(t *testing.T) (string, *memory.Store) {
	t.Helper()

	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	store := memory.New()
	srv := redisserver.New(cfg, service.NewKVService(store))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String(), store
}

// startAdmin serves the admin API over an engine logging to a temp dir.
func startAdmin(t *testing.T, recover bool) (*httptest.Server, *storage.Engine) {
	t.Helper()

	e := storage.New(storage.DefaultConfig(filepath.Join(t.TempDir(), "appendonly.aof")))
	t.Cleanup(func() { e.Close() })
	if recover {
		if err := e.Recover(context.Background()); err != nil {
			t.Fatalf("Recover() error = %v", err)
		}
	}

	h := handler.New(handler.Config{
		Engine:   e,
		Executor: service.NewKVService(e.Store(), service.WithLog(e)),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, e
}
