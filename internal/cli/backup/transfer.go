package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/storage/aof"
)

// ErrNotFound is returned by a Store when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Result describes a finished transfer.
type Result struct {
	Object   string `json:"object" yaml:"object"`
	Path     string `json:"path" yaml:"path"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
	Commands int    `json:"commands" yaml:"commands"`
	// Discarded counts damaged tail bytes left out of an upload.
	Discarded int64 `json:"discarded_bytes" yaml:"discarded_bytes"`
}

// ObjectName builds a timestamped object name for the log at path.
func ObjectName(prefix, path string, now time.Time) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + filepath.Base(path) + "." + now.UTC().Format("20060102T150405Z")
}

// Upload sends the valid prefix of the log at path to object. progress,
// if not nil, receives a copy of the uploaded bytes.
func Upload(ctx context.Context, st Store, path, object string, progress io.Writer) (Result, error) {
	res := Result{Object: object, Path: path}

	stats, err := aof.Check(path)
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}
	if stats.Bytes == 0 {
		return res, domain.ErrBackupFailed.WithDetails("log is empty or missing: " + path)
	}

	f, err := os.Open(path)
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}
	defer f.Close()

	w, err := st.Writer(ctx, object)
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}

	var src io.Reader = io.LimitReader(f, stats.Bytes)
	if progress != nil {
		src = io.TeeReader(src, progress)
	}
	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return res, domain.ErrBackupFailed.WithCause(fmt.Errorf("upload %s: %w", object, err))
	}
	if err := w.Close(); err != nil {
		return res, domain.ErrBackupFailed.WithCause(fmt.Errorf("commit %s: %w", object, err))
	}

	res.Bytes = n
	res.Commands = stats.Commands
	res.Discarded = stats.Trailing
	return res, nil
}

// Download fetches object into path. The object must be a clean log;
// otherwise path is left untouched.
func Download(ctx context.Context, st Store, object, path string, progress io.Writer) (Result, error) {
	res := Result{Object: object, Path: path}

	r, _, err := st.Reader(ctx, object)
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(fmt.Errorf("open %s: %w", object, err))
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}
	tmp := path + ".download"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}
	defer os.Remove(tmp)

	var src io.Reader = r
	if progress != nil {
		src = io.TeeReader(src, progress)
	}
	n, err := io.Copy(f, src)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(fmt.Errorf("download %s: %w", object, err))
	}

	stats, err := aof.Check(tmp)
	if err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}
	if !stats.Clean() {
		return res, domain.ErrBackupFailed.WithDetails(fmt.Sprintf(
			"%s is damaged at byte %d (%s)", object, stats.Bytes, stats.Tail))
	}

	if err := os.Rename(tmp, path); err != nil {
		return res, domain.ErrBackupFailed.WithCause(err)
	}

	res.Bytes = n
	res.Commands = stats.Commands
	return res, nil
}
