package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/litekv-go/internal/cli/config"
	"github.com/yndnr/litekv-go/internal/cli/connection"
	"github.com/yndnr/litekv-go/internal/cli/output"
	"github.com/yndnr/litekv-go/internal/infra/buildinfo"
)

const metaConfig = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "litekv-cli",
		Usage:   "litekv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SetCommand(),
			GetCommand(),
			DelCommand(),
			ExistsCommand(),
			ShellCommand(),
			InfoCommand(),
			HealthCommand(),
			AOFCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[metaConfig] = cfg
			return nil
		},
	}
}

// globalFlags returns the global CLI flags. Flags left unset fall back to
// the config file and LITEKV_CLI_* variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "RESP address of litekv-server (e.g., 127.0.0.1:6379)",
		},
		&cli.StringFlag{
			Name:    "admin-url",
			Aliases: []string{"a"},
			Usage:   "HTTP admin URL (e.g., http://127.0.0.1:8080)",
		},
		&cli.StringFlag{
			Name:  "admin-token",
			Usage: "Bearer token for admin endpoints",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
	}
}

// GlobalFlags are the effective connection and output settings.
type GlobalFlags struct {
	Server     string
	AdminURL   string
	AdminToken string
	Output     string
	Timeout    time.Duration
	Backup     config.BackupConfig
}

// ParseGlobalFlags merges explicitly set flags over the loaded config.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg := cliConfig(c)
	g := &GlobalFlags{
		Server:     cfg.Server,
		AdminURL:   cfg.AdminURL,
		AdminToken: cfg.AdminToken,
		Output:     cfg.Output,
		Timeout:    cfg.Timeout,
		Backup:     cfg.Backup,
	}

	if c.IsSet("server") {
		g.Server = c.String("server")
	}
	if c.IsSet("admin-url") {
		g.AdminURL = c.String("admin-url")
	}
	if c.IsSet("admin-token") {
		g.AdminToken = c.String("admin-token")
	}
	if c.IsSet("output") {
		g.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		g.Timeout = c.Duration("timeout")
	}
	return g
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// requestContext bounds one command by the effective timeout.
func requestContext(c *cli.Context, flags *GlobalFlags) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if flags.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, flags.Timeout)
}

// dialServer opens a RESP connection to the configured server.
func dialServer(ctx context.Context, flags *GlobalFlags) (*connection.RESPClient, error) {
	return connection.DialRESP(ctx, flags.Server, flags.Timeout)
}

// adminClient returns a client for the HTTP admin surface.
func adminClient(flags *GlobalFlags) *connection.HTTPClient {
	return connection.NewHTTPClient(flags.AdminURL, flags.AdminToken, flags.Timeout)
}

// printResult renders data with the formatter chosen by --output.
func printResult(c *cli.Context, flags *GlobalFlags, data any) error {
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func reader(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

// usageError reports wrong arguments along with the command's usage line.
func usageError(c *cli.Context) error {
	return fmt.Errorf("usage: %s %s", c.Command.HelpName, c.Command.ArgsUsage)
}
