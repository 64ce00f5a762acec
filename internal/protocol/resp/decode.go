package resp

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// Protocol limits. A header announcing more than this is rejected up front
// instead of letting a connection buffer grow toward it.
const (
	// MaxArrayLen limits the number of elements in a request.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512MB, as Redis).
	MaxBulkLen = 512 * 1024 * 1024

	// maxTTLSeconds keeps now+ttl representable as a time.Duration.
	maxTTLSeconds = int64(math.MaxInt64 / int64(time.Second))
)

var crlf = []byte("\r\n")

// Status is the outcome of a Decode call.
type Status uint8

const (
	// StatusIncomplete means the buffer holds a strict prefix of a frame.
	StatusIncomplete Status = iota
	// StatusOK means a full frame was decoded into Command.
	StatusOK
	// StatusErr means the buffer cannot start a valid frame.
	StatusErr
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusErr:
		return "err"
	default:
		return "incomplete"
	}
}

// Result is the tri-state decode outcome.
//
// Consumed is the exact length of the decoded frame when Status is
// StatusOK and zero otherwise. Message is set only for StatusErr.
type Result struct {
	Status   Status
	Command  domain.Command
	Consumed int
	Message  string
}

func incomplete() Result {
	return Result{Status: StatusIncomplete}
}

func failure(msg string) Result {
	return Result{Status: StatusErr, Message: msg}
}

// Decode parses one request frame from the start of buf.
func Decode(buf []byte) Result {
	if len(buf) == 0 {
		return incomplete()
	}
	if buf[0] != '*' {
		return failure("Expected '*'")
	}

	line, pos, ok := readLine(buf, 1)
	if !ok {
		return incomplete()
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return failure("Invalid array length")
	}
	if n <= 0 {
		return failure("Array must contain at least one element")
	}
	if n > MaxArrayLen {
		return failure("Array length exceeds limit")
	}

	parts := make([][]byte, 0, n)
	for i := int64(0); i < n; i++ {
		if pos >= len(buf) {
			return incomplete()
		}
		if buf[pos] != '$' {
			return failure("Expected '$'")
		}

		line, next, ok := readLine(buf, pos+1)
		if !ok {
			return incomplete()
		}
		l, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return failure("Invalid bulk length")
		}
		if l == -1 {
			// Null elements are read as empty strings.
			parts = append(parts, nil)
			pos = next
			continue
		}
		if l < 0 {
			return failure("Negative bulk length")
		}
		if l > MaxBulkLen {
			return failure("Bulk length exceeds limit")
		}

		end := next + int(l)
		if len(buf) < end+2 {
			return incomplete()
		}
		if buf[end] != '\r' || buf[end+1] != '\n' {
			return failure("Missing CRLF after bulk data")
		}
		parts = append(parts, buf[next:end])
		pos = end + 2
	}

	cmd, msg := buildCommand(parts)
	if msg != "" {
		return failure(msg)
	}
	return Result{Status: StatusOK, Command: cmd, Consumed: pos}
}

// readLine returns the bytes between pos and the next CRLF, and the offset
// just past that CRLF. ok is false when no CRLF is buffered yet.
func readLine(buf []byte, pos int) (line []byte, next int, ok bool) {
	if pos > len(buf) {
		return nil, 0, false
	}
	i := bytes.Index(buf[pos:], crlf)
	if i < 0 {
		return nil, 0, false
	}
	return buf[pos : pos+i], pos + i + 2, true
}

func buildCommand(parts [][]byte) (domain.Command, string) {
	name := strings.ToUpper(string(parts[0]))
	args := parts[1:]

	switch name {
	case "SET":
		switch len(args) {
		case 2:
			return domain.NewSet(string(args[0]), string(args[1])), ""
		case 4:
			if !strings.EqualFold(string(args[2]), "EX") {
				return domain.Command{}, "Unknown SET option"
			}
			ttl, err := strconv.ParseInt(string(args[3]), 10, 64)
			if err != nil || ttl < 0 || ttl > maxTTLSeconds {
				return domain.Command{}, "Invalid TTL value"
			}
			return domain.NewSetEX(string(args[0]), string(args[1]), ttl), ""
		default:
			return domain.Command{}, "Wrong number of arguments for SET"
		}
	case "GET", "DEL", "EXISTS":
		if len(args) != 1 {
			return domain.Command{}, "Wrong number of arguments for " + name
		}
		key := string(args[0])
		switch name {
		case "GET":
			return domain.NewGet(key), ""
		case "DEL":
			return domain.NewDel(key), ""
		default:
			return domain.NewExists(key), ""
		}
	default:
		return domain.Command{}, fmt.Sprintf("Unknown command '%s'", parts[0])
	}
}
