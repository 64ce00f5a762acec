package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/litekv-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Send commands interactively",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)

			dialCtx, cancel := requestContext(c, flags)
			client, err := dialServer(dialCtx, flags)
			cancel()
			if err != nil {
				return err
			}
			defer client.Close()

			historyPath := repl.DefaultHistoryPath()
			if c.Bool("no-history") {
				historyPath = ""
			}
			history := repl.NewHistory(historyPath)
			if err := history.Load(); err != nil {
				PrintError("load history: %v", err)
			}
			defer func() {
				if err := history.Save(); err != nil {
					PrintError("save history: %v", err)
				}
			}()

			r := repl.New(client, flags.Server,
				repl.WithIO(reader(c), writer(c)),
				repl.WithHistory(history),
				repl.WithTimeout(flags.Timeout),
			)
			return r.Run(c.Context)
		},
	}
}
