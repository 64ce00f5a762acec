package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yndnr/litekv-go/internal/cli/output"
	"github.com/yndnr/litekv-go/internal/core/domain"
)

// Doer sends one command to the server.
type Doer interface {
	Do(ctx context.Context, args ...string) (domain.Reply, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input   io.Reader
	output  io.Writer
	prompt  string
	doer    Doer
	history *History
	timeout time.Duration
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory records entered lines.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithTimeout bounds each round trip.
func WithTimeout(d time.Duration) Option {
	return func(r *REPL) {
		r.timeout = d
	}
}

// New creates a REPL that sends commands through doer. prompt is usually
// the server address.
func New(doer Doer, prompt string, opts ...Option) *REPL {
	r := &REPL{
		input:   strings.NewReader(""),
		output:  io.Discard,
		prompt:  prompt + "> ",
		doer:    doer,
		history: NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until EOF, "exit" or "quit". A transport error ends the
// loop since the connection is no longer usable.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(r.output, helpText)
			continue
		}

		args, perr := SplitArgs(line)
		if perr != nil {
			fmt.Fprintf(r.output, "(error) %v\n", perr)
			continue
		}

		reply, derr := r.do(ctx, args)
		if derr != nil {
			return derr
		}
		fmt.Fprintln(r.output, output.FormatReply(reply))
	}
}

func (r *REPL) do(ctx context.Context, args []string) (domain.Reply, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.doer.Do(ctx, args...)
}

const helpText = `SET key value [EX seconds]
GET key
DEL key
EXISTS key
exit | quit`
