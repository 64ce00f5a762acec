package aof

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/protocol/resp"
)

// File defaults.
const (
	DefaultFileName = "appendonly.aof"
	DefaultFilePerm = 0600
	DefaultDirPerm  = 0750
)

// Config configures the log writer.
type Config struct {
	// Path is the log file. Parent directories are created on Open.
	Path string

	// Logger receives open and write failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a configuration for path.
func DefaultConfig(path string) Config {
	if path == "" {
		path = DefaultFileName
	}
	return Config{Path: path}
}

// Writer appends mutating commands to the log.
//
// Its mutex is independent of the store's; callers must not hold the store
// lock while calling Append.
type Writer struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	file    *os.File
	size    int64
	frame   []byte
	openErr error
	closed  bool
}

// Open opens the log for appending. It never fails: on error the returned
// Writer is disabled and Err reports why.
func Open(cfg Config) *Writer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	w := &Writer{
		path:   cfg.Path,
		logger: cfg.Logger,
	}

	if err := w.openLocked(); err != nil {
		w.openErr = domain.ErrAOFUnavailable.WithDetails(cfg.Path).WithCause(err)
		w.logger.Error("aof disabled, running without persistence",
			"path", cfg.Path,
			"error", err)
	}
	return w
}

func (w *Writer) openLocked() error {
	if w.path == "" {
		return fmt.Errorf("aof: path is required")
	}
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("aof: create dir: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("aof: open: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("aof: stat: %w", err)
	}

	w.file = f
	w.size = st.Size()
	return nil
}

// Append writes cmd to the log and syncs it. It returns false for commands
// that are not logged (GET, EXISTS) and for any failure.
func (w *Writer) Append(cmd domain.Command) bool {
	if !cmd.IsMutating() {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil || w.closed {
		return false
	}

	w.frame = resp.AppendRequest(w.frame[:0], cmd)
	if err := w.writeLocked(w.frame); err != nil {
		w.logger.Error("aof append failed",
			"path", w.path,
			"command", cmd.Kind.String(),
			"error", err)
		return false
	}
	return true
}

func (w *Writer) writeLocked(frame []byte) error {
	n, err := w.file.Write(frame)
	if err == nil {
		err = w.file.Sync()
		if err == nil {
			w.size += int64(n)
			return nil
		}
	}

	// Cut a torn frame so later appends stay replayable.
	if n > 0 {
		if terr := w.file.Truncate(w.size); terr != nil {
			w.logger.Warn("aof truncate after failed write", "path", w.path, "error", terr)
		}
	}
	return domain.ErrAOFWrite.WithCause(err)
}

// Enabled reports whether appends can succeed.
func (w *Writer) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file != nil && !w.closed
}

// Err returns the open failure, if any.
func (w *Writer) Err() error {
	return w.openErr
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Size returns the current log size in bytes.
func (w *Writer) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Rewrite atomically replaces the log with cmds and continues appending to
// the new file.
func (w *Writer) Rewrite(cmds []domain.Command) error {
	return w.RewriteFrom(func() []domain.Command { return cmds })
}

// RewriteFrom is Rewrite with the command list produced by collect while
// appends are blocked. An append that was waiting lands in the new file.
func (w *Writer) RewriteFrom(collect func() []domain.Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil || w.closed {
		return w.disabledErr()
	}
	if err := Rewrite(w.path, collect()); err != nil {
		return err
	}

	old := w.file
	w.file = nil
	if err := w.openLocked(); err != nil {
		w.file = old
		return err
	}
	if err := old.Close(); err != nil {
		w.logger.Warn("aof close replaced file", "path", w.path, "error", err)
	}
	return nil
}

// Truncate cuts the log to size bytes. Recovery uses it to drop a damaged
// tail so that new records are not appended behind unreadable bytes.
func (w *Writer) Truncate(size int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil || w.closed {
		return w.disabledErr()
	}
	if err := w.file.Truncate(size); err != nil {
		return fmt.Errorf("aof: truncate: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("aof: sync: %w", err)
	}
	w.size = size
	return nil
}

func (w *Writer) disabledErr() error {
	if w.openErr != nil {
		return w.openErr
	}
	return domain.ErrAOFUnavailable.WithDetails("writer closed")
}

// Close syncs and closes the log. Further appends return false.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.file == nil {
		w.closed = true
		return nil
	}
	w.closed = true

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("aof: sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("aof: close: %w", err)
	}
	return nil
}
