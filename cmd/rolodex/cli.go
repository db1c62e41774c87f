package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/rolodex/internal/config"
	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
	"github.com/hpungsan/rolodex/internal/ops"
	"github.com/hpungsan/rolodex/internal/vcf"
	"github.com/hpungsan/rolodex/internal/web"
)

// maxStdinBytes bounds a contact record read from stdin; inline photos make
// records large.
const maxStdinBytes = 16 << 20

// exitExportFailed is the exit code when an export produced no output.
const exitExportFailed = 2

// noticeWait bounds how long export holds its summary back for the
// --notify notice.
const noticeWait = time.Second

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "rolodex",
		Usage:   "Local contact book with vCard export",
		Version: Version,
		Commands: []*cli.Command{
			storeCmd(db),
			fetchCmd(db),
			listCmd(db),
			deleteCmd(db),
			purgeCmd(db),
			importCmd(db, cfg),
			exportCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// storeCmd creates the store command.
func storeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Store a contact (reads a JSON contact record from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("contact JSON must be piped via stdin"))
			}

			data, err := readStdin(maxStdinBytes)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			if data == "" {
				return outputError(errors.NewInvalidRequest("contact JSON is required"))
			}

			var rec contact.Contact
			if err := json.Unmarshal([]byte(data), &rec); err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid contact JSON: %v", err)))
			}

			output, err := ops.Store(c.Context, db, ops.StoreInput{
				Contact: rec,
				Mode:    ops.StoreMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a contact by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted contacts"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List contacts ordered by name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Aliases: []string{"q"}, Usage: "Only names starting with this prefix"},
			&cli.BoolFlag{Name: "starred", Usage: "Only starred contacts"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted contacts"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				NamePrefix:     c.String("prefix"),
				StarredOnly:    c.Bool("starred"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a contact",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted contacts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import contacts from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path (.jsonl)"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export contacts as vCard 4.0",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.rolodex/exports/contacts-<timestamp>.vcf)"},
			&cli.StringSliceFlag{Name: "id", Usage: "Export only these contacts, in order (repeatable)"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted contacts"},
			&cli.BoolFlag{Name: "notify", Usage: "Print \"exporting N contacts\" to stderr as the export starts"},
			&cli.BoolFlag{Name: "stdout", Usage: "Write vCard text to stdout; the summary goes to stderr"},
			&cli.StringFlag{Name: "photo-dir", Usage: "Directory for resolving relative thumbnail paths"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path:           c.String("path"),
				IDs:            c.StringSlice("id"),
				IncludeDeleted: c.Bool("include-deleted"),
				Notify:         c.Bool("notify"),
				PhotoDir:       c.String("photo-dir"),
			}
			errW := &lockedWriter{w: c.App.ErrWriter}
			noticed := make(chan struct{})
			if input.Notify {
				var once sync.Once
				input.Notifier = vcf.NotifierFunc(func(total int) {
					once.Do(func() {
						fmt.Fprintf(errW, "exporting %d contacts\n", total)
						close(noticed)
					})
				})
			}

			var output *ops.ExportOutput
			var err error
			var summary io.Writer = c.App.Writer
			if c.Bool("stdout") {
				if input.Path != "" {
					return outputError(errors.NewInvalidRequest("--path and --stdout are mutually exclusive"))
				}
				var buf bytes.Buffer
				output, err = ops.ExportTo(c.Context, db, cfg, &buf, input)
				if err == nil {
					_, err = buf.WriteTo(c.App.Writer)
				}
				summary = errW
			} else {
				output, err = ops.Export(c.Context, db, cfg, input)
			}
			if err == nil && input.Notify {
				// The notice arrives from the encoder's goroutine; keep it
				// ahead of the summary.
				select {
				case <-noticed:
				case <-time.After(noticeWait):
				}
			}
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(summary, output); err != nil {
				return err
			}
			if output.Outcome == vcf.OutcomeFail {
				return cli.Exit("", exitExportFailed)
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the contacts web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8484, Usage: "Port to listen on"},
			&cli.StringFlag{Name: "photo-dir", Usage: "Directory for resolving relative thumbnail paths"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(db, cfg, web.Options{
				Version:  Version,
				Bind:     c.String("bind"),
				Port:     c.Int("port"),
				PhotoDir: c.String("photo-dir"),
			})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv)
		},
	}
}

// Helper functions

// lockedWriter serializes writes from the export notice and the command.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var rErr *errors.RolodexError
	if stderrors.As(err, &rErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads stdin up to limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
