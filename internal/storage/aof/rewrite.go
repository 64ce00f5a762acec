package aof

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/protocol/resp"
)

// Rewrite replaces the log at path with the frames for cmds. The new log is
// written to a temporary file in the same directory, synced, then renamed
// over path, so readers see either the old or the new log.
func Rewrite(path string, cmds []domain.Command) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return fmt.Errorf("aof: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".rewrite-*")
	if err != nil {
		return fmt.Errorf("aof: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	var buf []byte
	for _, cmd := range cmds {
		if cmd.IsMutating() {
			buf = resp.AppendRequest(buf, cmd)
		}
	}

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("aof: write temp: %w", err)
	}
	if err := tmp.Chmod(DefaultFilePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("aof: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("aof: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("aof: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("aof: rename: %w", err)
	}
	syncDir(dir)
	return nil
}

// syncDir makes a rename durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
