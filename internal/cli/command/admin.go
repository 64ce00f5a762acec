package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/litekv-go/internal/cli/connection"
	"github.com/yndnr/litekv-go/internal/server/httpserver/handler"
)

// InfoCommand returns the info command.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show server version, key count and log state",
		Action: serverInfo,
	}
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the server is up and has finished loading its log",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "live",
				Usage: "Only check liveness (/healthz)",
			},
		},
		Action: serverHealth,
	}
}

func serverInfo(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	ctx, cancel := requestContext(c, flags)
	defer cancel()

	resp, err := adminClient(flags).Get(ctx, "/v1/info")
	if err != nil {
		return err
	}

	var info handler.InfoResponse
	if err := connection.ParseResponse(resp, &info); err != nil {
		return err
	}
	return printResult(c, flags, info)
}

func serverHealth(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	ctx, cancel := requestContext(c, flags)
	defer cancel()

	path := "/readyz"
	if c.Bool("live") {
		path = "/healthz"
	}

	resp, err := adminClient(flags).Get(ctx, path)
	if err != nil {
		return err
	}

	var health handler.HealthResponse
	if err := connection.ParseResponse(resp, &health); err != nil {
		return err
	}
	return printResult(c, flags, health)
}
