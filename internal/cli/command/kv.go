package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/litekv-go/internal/cli/output"
	"github.com/yndnr/litekv-go/internal/core/domain"
)

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value, optionally with a TTL",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after this many seconds",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c)
			}
			cmd := domain.NewSet(c.Args().Get(0), c.Args().Get(1))
			if c.IsSet("ex") {
				cmd = domain.NewSetEX(cmd.Key, cmd.Value, c.Int64("ex"))
			}
			return execute(c, cmd)
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return keyCommand("get", "Print the value of a key", domain.NewGet)
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return keyCommand("del", "Delete a key", domain.NewDel)
}

// ExistsCommand returns the exists command.
func ExistsCommand() *cli.Command {
	return keyCommand("exists", "Report whether a key exists", domain.NewExists)
}

func keyCommand(name, usage string, build func(key string) domain.Command) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c)
			}
			return execute(c, build(c.Args().First()))
		},
	}
}

// replyView is the json/yaml form of a reply.
type replyView struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

func newReplyView(r domain.Reply) replyView {
	switch r.Kind {
	case domain.ReplyOK:
		return replyView{Type: "ok", Value: "OK"}
	case domain.ReplyBulk:
		return replyView{Type: "bulk", Value: r.Bulk}
	case domain.ReplyNil:
		return replyView{Type: "nil"}
	case domain.ReplyInteger:
		return replyView{Type: "integer", Value: r.Integer}
	default:
		return replyView{Type: "error", Value: r.Message}
	}
}

// execute sends cmd and prints the reply. An error reply is returned as
// an error so the process exits non-zero.
func execute(c *cli.Context, cmd domain.Command) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	client, err := dialServer(ctx, flags)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Exec(ctx, cmd)
	if err != nil {
		return err
	}
	if reply.Kind == domain.ReplyError {
		return errors.New(reply.Message)
	}

	if format == output.FormatTable {
		_, err = fmt.Fprintln(writer(c), output.FormatReply(reply))
		return err
	}
	return output.NewFormatter(format).Format(writer(c), newReplyView(reply))
}
