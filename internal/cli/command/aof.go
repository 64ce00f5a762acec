package command

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/litekv-go/internal/cli/backup"
	"github.com/yndnr/litekv-go/internal/cli/connection"
	"github.com/yndnr/litekv-go/internal/cli/output"
	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/server/httpserver/handler"
	"github.com/yndnr/litekv-go/internal/storage"
	"github.com/yndnr/litekv-go/internal/storage/aof"
	"github.com/yndnr/litekv-go/internal/storage/memory"
)

// AOFCommand returns the aof subcommand group.
func AOFCommand() *cli.Command {
	return &cli.Command{
		Name:  "aof",
		Usage: "Append-only log tools",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Verify a log file offline",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "fix",
						Usage: "Cut a damaged tail from the file",
					},
				},
				Action: aofCheck,
			},
			{
				Name:      "dump",
				Usage:     "List the mutations stored in a log file",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "Only show records for this key",
					},
				},
				Action: aofDump,
			},
			{
				Name:  "rewrite",
				Usage: "Compact the log (remote via the admin API, or a local file with --file)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Rewrite this log file offline instead",
					},
				},
				Action: aofRewrite,
			},
			{
				Name:  "backup",
				Usage: "Copy logs to and from Google Cloud Storage",
				Subcommands: []*cli.Command{
					{
						Name:      "upload",
						Usage:     "Upload the valid prefix of a log",
						ArgsUsage: "<path>",
						Flags: append(backupFlags(),
							&cli.StringFlag{
								Name:  "object",
								Usage: "Object name (default: <prefix><file>.<timestamp>)",
							},
						),
						Action: backupUpload,
					},
					{
						Name:      "download",
						Usage:     "Download and verify a log",
						ArgsUsage: "<object> <path>",
						Flags:     backupFlags(),
						Action:    backupDownload,
					},
				},
			},
		},
	}
}

func backupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "GCS bucket (overrides backup.bucket)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide the progress bar",
		},
	}
}

// checkResult is the output of aof check.
type checkResult struct {
	Path           string `json:"path" yaml:"path"`
	Clean          bool   `json:"clean" yaml:"clean"`
	Commands       int    `json:"commands" yaml:"commands"`
	Sets           int    `json:"sets" yaml:"sets"`
	Dels           int    `json:"dels" yaml:"dels"`
	Skipped        int    `json:"skipped" yaml:"skipped"`
	ValidBytes     int64  `json:"valid_bytes" yaml:"valid_bytes"`
	DiscardedBytes int64  `json:"discarded_bytes" yaml:"discarded_bytes"`
	Tail           string `json:"tail" yaml:"tail"`
	Reason         string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Fixed          bool   `json:"fixed" yaml:"fixed"`
}

// dumpRecord is one row of aof dump.
type dumpRecord struct {
	Offset  int64  `json:"offset" yaml:"offset"`
	Command string `json:"command" yaml:"command"`
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	TTL     *int64 `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

func aofCheck(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c)
	}
	path := c.Args().First()
	flags := ParseGlobalFlags(c)

	var cmds []domain.Command
	st, err := aof.Scan(path, func(_ int64, cmd domain.Command) {
		cmds = append(cmds, cmd)
	})
	if err != nil {
		return err
	}
	kinds := lo.CountValuesBy(cmds, func(cmd domain.Command) domain.Kind { return cmd.Kind })

	res := checkResult{
		Path:           path,
		Clean:          st.Clean(),
		Commands:       st.Commands,
		Sets:           kinds[domain.KindSet],
		Dels:           kinds[domain.KindDel],
		Skipped:        st.Skipped,
		ValidBytes:     st.Bytes,
		DiscardedBytes: st.Trailing,
		Tail:           st.Tail.String(),
		Reason:         st.TailMessage,
	}

	if !res.Clean && c.Bool("fix") {
		if err := os.Truncate(path, st.Bytes); err != nil {
			return fmt.Errorf("cut damaged tail: %w", err)
		}
		res.Fixed = true
	}

	if err := printResult(c, flags, res); err != nil {
		return err
	}
	if !res.Clean && !res.Fixed {
		return fmt.Errorf("%s: %d damaged bytes after offset %d (rerun with --fix to cut them)",
			path, st.Trailing, st.Bytes)
	}
	return nil
}

func aofDump(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c)
	}
	flags := ParseGlobalFlags(c)

	var records []dumpRecord
	st, err := aof.Scan(c.Args().First(), func(offset int64, cmd domain.Command) {
		records = append(records, dumpRecord{
			Offset:  offset,
			Command: cmd.Kind.String(),
			Key:     cmd.Key,
			Value:   cmd.Value,
			TTL:     cmd.TTL,
		})
	})
	if err != nil {
		return err
	}

	if c.IsSet("key") {
		key := c.String("key")
		records = lo.Filter(records, func(r dumpRecord, _ int) bool { return r.Key == key })
	}
	if records == nil {
		records = []dumpRecord{}
	}

	if err := printResult(c, flags, records); err != nil {
		return err
	}
	if !st.Clean() {
		fmt.Fprintf(errWriter(c), "warning: %d damaged bytes after offset %d\n", st.Trailing, st.Bytes)
	}
	return nil
}

func aofRewrite(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if c.IsSet("file") {
		return rewriteLocal(c, flags, c.String("file"))
	}

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	resp, err := adminClient(flags).Post(ctx, "/v1/aof/rewrite", nil)
	if err != nil {
		return err
	}

	var res handler.RewriteResponse
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return printResult(c, flags, res)
}

// rewriteLocal compacts a log file that no server is appending to.
func rewriteLocal(c *cli.Context, flags *GlobalFlags, path string) error {
	start := time.Now()
	before, err := fileSize(path)
	if err != nil {
		return err
	}

	store := memory.New()
	st, err := aof.ReplayStats(path, store)
	if err != nil {
		return err
	}
	if !st.Clean() {
		fmt.Fprintf(errWriter(c), "warning: dropping %d damaged bytes after offset %d\n", st.Trailing, st.Bytes)
	}

	if err := aof.Rewrite(path, storage.SnapshotCommands(store.Snapshot())); err != nil {
		return err
	}
	after, err := fileSize(path)
	if err != nil {
		return err
	}

	return printResult(c, flags, handler.RewriteResponse{
		BytesBefore: before,
		BytesAfter:  after,
		Elapsed:     time.Since(start).String(),
	})
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func backupUpload(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c)
	}
	path := c.Args().First()
	flags := ParseGlobalFlags(c)

	object := c.String("object")
	if object == "" {
		object = backup.ObjectName(flags.Backup.Prefix, path, time.Now())
	}

	return withBackupStore(c, flags, func(st backup.Store) error {
		size, err := fileSize(path)
		if err != nil {
			return domain.ErrBackupFailed.WithCause(err)
		}
		progress := newTransferProgress(c, "upload", size)

		res, err := backup.Upload(c.Context, st, path, object, progressSink(progress))
		finishProgress(progress)
		if err != nil {
			return err
		}
		return printResult(c, flags, res)
	})
}

func backupDownload(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError(c)
	}
	flags := ParseGlobalFlags(c)

	return withBackupStore(c, flags, func(st backup.Store) error {
		progress := newTransferProgress(c, "download", 0)

		res, err := backup.Download(c.Context, st, c.Args().Get(0), c.Args().Get(1), progressSink(progress))
		finishProgress(progress)
		if err != nil {
			return err
		}
		return printResult(c, flags, res)
	})
}

func withBackupStore(c *cli.Context, flags *GlobalFlags, fn func(backup.Store) error) error {
	bucket := flags.Backup.Bucket
	if c.IsSet("bucket") {
		bucket = c.String("bucket")
	}

	gcs, err := backup.NewGCS(c.Context, bucket)
	if err != nil {
		return err
	}
	defer gcs.Close()
	return fn(gcs)
}

func newTransferProgress(c *cli.Context, title string, total int64) *output.Progress {
	if c.Bool("quiet") {
		return nil
	}
	return output.NewProgress(errWriter(c), title, total)
}

// progressSink avoids handing a typed nil to an io.Writer parameter.
func progressSink(p *output.Progress) io.Writer {
	if p == nil {
		return nil
	}
	return p
}

func finishProgress(p *output.Progress) {
	if p != nil {
		p.Finish()
	}
}
