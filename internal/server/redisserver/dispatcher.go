package redisserver

import (
	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/protocol/resp"
)

// RateLimitMessage is the error reply for a command rejected by the limiter.
const RateLimitMessage = "rate limit exceeded"

// Executor runs one decoded command.
type Executor interface {
	Execute(cmd domain.Command) domain.Reply
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(cmd domain.Command) domain.Reply

// Execute calls f(cmd).
func (f ExecutorFunc) Execute(cmd domain.Command) domain.Reply {
	return f(cmd)
}

// Dispatcher turns a byte stream into replies. It is not safe for
// concurrent use; each connection owns one.
type Dispatcher struct {
	buf  []byte
	exec Executor

	allow           func() bool
	onProtocolError func(msg string)
	onRateLimited   func()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAllow gates every decoded command. When allow returns false the
// command is answered with RateLimitMessage and not executed.
func WithAllow(allow func() bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.allow = allow
	}
}

// WithProtocolErrorHook is called with the reason of every rejected frame.
func WithProtocolErrorHook(fn func(msg string)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onProtocolError = fn
	}
}

// WithRateLimitHook is called for every command rejected by WithAllow.
func WithRateLimitHook(fn func()) DispatcherOption {
	return func(d *Dispatcher) {
		d.onRateLimited = fn
	}
}

// NewDispatcher creates a dispatcher with an empty buffer.
func NewDispatcher(exec Executor, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{exec: exec}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends chunk to the buffer and returns the concatenated replies of
// every frame that became complete. Bytes of an unfinished frame stay
// buffered for the next call.
func (d *Dispatcher) Feed(chunk []byte) []byte {
	d.buf = append(d.buf, chunk...)

	reply, consumed := d.process(d.buf)
	switch {
	case consumed == len(d.buf):
		d.buf = d.buf[:0]
	case consumed > 0:
		n := copy(d.buf, d.buf[consumed:])
		d.buf = d.buf[:n]
	}
	return reply
}

// Process runs every complete frame at the start of buf and reports how
// many bytes were used. After a protocol error consumed is len(buf): the
// rest of the buffer cannot be resynchronised and is dropped.
func (d *Dispatcher) Process(buf []byte) (reply []byte, consumed int) {
	return d.process(buf)
}

// Buffered returns the number of bytes waiting for the rest of a frame.
func (d *Dispatcher) Buffered() int {
	return len(d.buf)
}

// Reset drops buffered bytes.
func (d *Dispatcher) Reset() {
	d.buf = d.buf[:0]
}

func (d *Dispatcher) process(buf []byte) ([]byte, int) {
	var out []byte
	pos := 0

	for pos < len(buf) {
		res := resp.Decode(buf[pos:])
		switch res.Status {
		case resp.StatusIncomplete:
			return out, pos
		case resp.StatusErr:
			if d.onProtocolError != nil {
				d.onProtocolError(res.Message)
			}
			return resp.AppendError(out, res.Message), len(buf)
		}

		pos += res.Consumed
		if d.allow != nil && !d.allow() {
			if d.onRateLimited != nil {
				d.onRateLimited()
			}
			out = resp.AppendError(out, RateLimitMessage)
			continue
		}
		out = resp.AppendReply(out, d.exec.Execute(res.Command))
	}
	return out, pos
}
