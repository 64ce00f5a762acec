package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/storage/aof"
	"github.com/yndnr/litekv-go/internal/storage/memory"
)

// Config configures the storage engine.
type Config struct {
	// AOFEnabled turns on the append-only log.
	AOFEnabled bool

	// AOF configures the log writer.
	AOF aof.Config

	// RewriteOnStart compacts the log after a successful Recover.
	RewriteOnStart bool

	// StoreOptions are passed to memory.New.
	StoreOptions []memory.Option

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with the log at aofPath.
func DefaultConfig(aofPath string) Config {
	return Config{
		AOFEnabled: true,
		AOF:        aof.DefaultConfig(aofPath),
		Logger:     slog.Default(),
	}
}

// Engine combines the memory store and the append-only log.
type Engine struct {
	cfg    Config
	store  *memory.Store
	log    *aof.Writer
	logger *slog.Logger

	ready  atomic.Bool
	replay aof.Stats
}

// New creates the engine. With AOF enabled the log is opened here; an open
// failure only disables persistence.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		cfg:    cfg,
		store:  memory.New(cfg.StoreOptions...),
		logger: cfg.Logger,
	}

	if cfg.AOFEnabled {
		if cfg.AOF.Logger == nil {
			cfg.AOF.Logger = cfg.Logger
		}
		e.log = aof.Open(cfg.AOF)
	}
	return e
}

// Recover loads the log into the store. It only fails when ctx is done or
// a damaged tail cannot be cut; an unreadable log disables persistence.
//
// A damaged tail (truncated or corrupt record) ends the replay and is cut
// from the file so later appends stay reachable.
func (e *Engine) Recover(ctx context.Context) error {
	defer e.ready.Store(true)

	if e.log == nil {
		e.logger.Info("aof disabled, starting with empty store")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	st, err := aof.ReplayStats(e.log.Path(), e.store)
	if err != nil {
		// Appending behind a log we could not read would make the next
		// replay diverge, so persistence is turned off instead.
		e.logger.Error("aof replay failed, running without persistence",
			"path", e.log.Path(),
			"error", err)
		_ = e.log.Close()
		return nil
	}
	e.replay = st

	if !st.Clean() {
		e.logger.Warn("aof tail discarded",
			"path", e.log.Path(),
			"valid_bytes", st.Bytes,
			"discarded_bytes", st.Trailing,
			"tail", st.Tail.String(),
			"reason", st.TailMessage)
		if e.log.Enabled() {
			if err := e.log.Truncate(st.Bytes); err != nil {
				return fmt.Errorf("storage: drop damaged tail: %w", err)
			}
		}
	}

	e.logger.Info("aof replayed",
		"path", e.log.Path(),
		"commands", st.Commands,
		"bytes", st.Bytes,
		"keys", e.store.Len(),
		"elapsed", time.Since(start))

	if e.cfg.RewriteOnStart && e.log.Enabled() {
		if err := e.Rewrite(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Rewrite compacts the log to one SET per live key.
func (e *Engine) Rewrite(ctx context.Context) error {
	if e.log == nil {
		return domain.ErrAOFUnavailable.WithDetails("aof disabled")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	before := e.log.Size()
	err := e.log.RewriteFrom(func() []domain.Command {
		return SnapshotCommands(e.store.Snapshot())
	})
	if err != nil {
		return fmt.Errorf("storage: rewrite aof: %w", err)
	}

	e.logger.Info("aof rewritten",
		"path", e.log.Path(),
		"bytes_before", before,
		"bytes_after", e.log.Size())
	return nil
}

// SnapshotCommands converts live entries to SET commands. Remaining TTLs
// are rounded up to whole seconds so no key outlives its deadline by less
// than it would have.
func SnapshotCommands(entries []memory.Entry) []domain.Command {
	cmds := make([]domain.Command, 0, len(entries))
	for _, ent := range entries {
		if ent.TTL == nil {
			cmds = append(cmds, domain.NewSet(ent.Key, ent.Value))
			continue
		}
		secs := int64((*ent.TTL + time.Second - 1) / time.Second)
		cmds = append(cmds, domain.NewSetEX(ent.Key, ent.Value, secs))
	}
	return cmds
}

// Store returns the memory store.
func (e *Engine) Store() *memory.Store {
	return e.store
}

// Append writes a mutating command to the log. It returns false when the
// log is disabled or the write failed.
func (e *Engine) Append(cmd domain.Command) bool {
	if e.log == nil {
		return false
	}
	return e.log.Append(cmd)
}

// AOF returns the log writer, or nil when persistence is disabled.
func (e *Engine) AOF() *aof.Writer {
	return e.log
}

// Ready reports whether Recover has finished.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// ReplayStats returns the statistics of the last Recover.
func (e *Engine) ReplayStats() aof.Stats {
	return e.replay
}

// Close closes the log.
func (e *Engine) Close() error {
	if e.log == nil {
		return nil
	}
	e.logger.Info("closing aof", "path", e.log.Path())
	return e.log.Close()
}
