package aof

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/protocol/resp"
)

// Applier receives replayed mutations. *memory.Store satisfies it.
type Applier interface {
	Set(key, value string, ttl *time.Duration)
	Del(key string) bool
}

// Stats describes one pass over a log.
type Stats struct {
	// Commands is the number of SET/DEL frames applied.
	Commands int
	// Skipped counts decoded frames that do not mutate state.
	Skipped int
	// Bytes is the length of the valid prefix.
	Bytes int64
	// Trailing is the number of bytes after the valid prefix.
	Trailing int64
	// Tail is StatusOK for a clean log, otherwise the status that ended
	// the scan (StatusIncomplete for a truncated record, StatusErr for a
	// corrupt one).
	Tail resp.Status
	// TailMessage is the decoder message when Tail is StatusErr.
	TailMessage string
}

// Clean reports whether the whole log was valid.
func (s Stats) Clean() bool {
	return s.Trailing == 0
}

// Replay applies every valid record in the log at path to a, in file order,
// and returns the number of bytes applied. A missing or empty log is not
// an error.
func Replay(path string, a Applier) (int64, error) {
	st, err := ReplayStats(path, a)
	return st.Bytes, err
}

// ReplayStats is Replay with the full scan statistics.
func ReplayStats(path string, a Applier) (Stats, error) {
	return Scan(path, func(_ int64, cmd domain.Command) {
		apply(a, cmd)
	})
}

// Scan decodes the log at path and calls fn for each mutating record with
// its byte offset. It stops at the first truncated or malformed record.
func Scan(path string, fn func(offset int64, cmd domain.Command)) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{Tail: resp.StatusOK}, nil
		}
		return Stats{}, domain.ErrAOFRead.WithDetails(path).WithCause(err)
	}
	return ScanBytes(data, fn), nil
}

// Check verifies the log at path without applying it.
func Check(path string) (Stats, error) {
	return Scan(path, func(int64, domain.Command) {})
}

// ScanBytes is Scan over an in-memory log.
func ScanBytes(data []byte, fn func(offset int64, cmd domain.Command)) Stats {
	st := Stats{Tail: resp.StatusOK}

	pos := 0
	for pos < len(data) {
		res := resp.Decode(data[pos:])
		if res.Status != resp.StatusOK {
			st.Tail = res.Status
			st.TailMessage = res.Message
			break
		}
		if res.Command.IsMutating() {
			fn(int64(pos), res.Command)
			st.Commands++
		} else {
			st.Skipped++
		}
		pos += res.Consumed
	}

	st.Bytes = int64(pos)
	st.Trailing = int64(len(data) - pos)
	return st
}

func apply(a Applier, cmd domain.Command) {
	switch cmd.Kind {
	case domain.KindSet:
		a.Set(cmd.Key, cmd.Value, cmd.Expiry())
	case domain.KindDel:
		a.Del(cmd.Key)
	}
}
