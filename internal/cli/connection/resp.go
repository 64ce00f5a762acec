package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	tresp "github.com/tidwall/resp"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// RESPClient sends commands over one RESP connection. It is not safe for
// concurrent use.
type RESPClient struct {
	conn    net.Conn
	rd      *tresp.Reader
	timeout time.Duration
}

// DialRESP connects to a RESP server. timeout bounds the dial and every
// later round trip that has no earlier context deadline.
func DialRESP(ctx context.Context, addr string, timeout time.Duration) (*RESPClient, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &RESPClient{
		conn:    conn,
		rd:      tresp.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Exec sends cmd and returns the server reply.
func (c *RESPClient) Exec(ctx context.Context, cmd domain.Command) (domain.Reply, error) {
	args := CommandArgs(cmd)
	if len(args) == 0 {
		return domain.Reply{}, fmt.Errorf("unsupported command kind %s", cmd.Kind)
	}
	return c.Do(ctx, args...)
}

// Do sends an arbitrary command given as its name followed by arguments.
func (c *RESPClient) Do(ctx context.Context, args ...string) (domain.Reply, error) {
	if len(args) == 0 {
		return domain.Reply{}, errors.New("empty command")
	}

	rest := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = a
	}
	frame, err := tresp.MultiBulkValue(args[0], rest...).MarshalRESP()
	if err != nil {
		return domain.Reply{}, fmt.Errorf("encode %s: %w", args[0], err)
	}

	if err := c.conn.SetDeadline(c.deadline(ctx)); err != nil {
		return domain.Reply{}, err
	}
	if _, err := c.conn.Write(frame); err != nil {
		return domain.Reply{}, fmt.Errorf("send %s: %w", args[0], err)
	}

	v, _, err := c.rd.ReadValue()
	if err != nil {
		return domain.Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return ToReply(v)
}

// Close closes the connection.
func (c *RESPClient) Close() error {
	return c.conn.Close()
}

func (c *RESPClient) deadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	if c.timeout > 0 {
		return time.Now().Add(c.timeout)
	}
	return time.Time{}
}

// CommandArgs renders cmd as request arguments, command name first. It
// returns nil for kinds that have no wire form.
func CommandArgs(cmd domain.Command) []string {
	switch cmd.Kind {
	case domain.KindSet:
		args := []string{"SET", cmd.Key, cmd.Value}
		if cmd.TTL != nil {
			args = append(args, "EX", strconv.FormatInt(*cmd.TTL, 10))
		}
		return args
	case domain.KindGet, domain.KindDel, domain.KindExists:
		return []string{cmd.Kind.String(), cmd.Key}
	default:
		return nil
	}
}

// ToReply converts a decoded RESP value to a domain reply.
func ToReply(v tresp.Value) (domain.Reply, error) {
	switch v.Type() {
	case tresp.SimpleString:
		if v.String() == "OK" {
			return domain.OK(), nil
		}
		return domain.Bulk(v.String()), nil
	case tresp.BulkString:
		if v.IsNull() {
			return domain.Nil(), nil
		}
		return domain.Bulk(v.String()), nil
	case tresp.Integer:
		return domain.Reply{Kind: domain.ReplyInteger, Integer: int64(v.Integer())}, nil
	case tresp.Error:
		return domain.Error(v.String()), nil
	default:
		return domain.Reply{}, fmt.Errorf("unexpected reply type %q", byte(v.Type()))
	}
}
