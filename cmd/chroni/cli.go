package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ekm507/chroni/internal/config"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/ops"
	"github.com/ekm507/chroni/internal/watch"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "chroni",
		Usage:   "Local per-file version history",
		Version: Version,
		Commands: []*cli.Command{
			trackCmd(database, cfg),
			untrackCmd(database, cfg),
			forgetCmd(database, cfg),
			listCmd(database),
			scanCmd(database, cfg),
			historyCmd(database),
			showCmd(database),
			restoreCmd(database),
			restoreDateCmd(database),
			snapshotCmd(database),
			watchCmd(database, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// trackCmd creates the track command.
func trackCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Start tracking a file or folder",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("track requires exactly one path"))
			}

			output, err := ops.Track(c.Context, database, cfg, ops.TrackInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// untrackCmd creates the untrack command.
func untrackCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "untrack",
		Usage:     "Stop tracking a path, keeping its history",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("untrack requires exactly one path"))
			}

			output, err := ops.Untrack(c.Context, database, cfg, ops.UntrackInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// forgetCmd creates the forget command.
func forgetCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "forget",
		Usage:     "Remove all history of a path",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("forget requires exactly one path"))
			}

			output, err := ops.Forget(c.Context, database, cfg, ops.ForgetInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tracked files and folders",
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, database)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// scanCmd creates the scan command.
func scanCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan tracked files for changes and store new versions",
		Action: func(c *cli.Context) error {
			output, err := ops.Scan(c.Context, database, cfg, ops.ScanInput{})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the version history of a file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Show only the most recent N versions"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("history requires exactly one path"))
			}

			output, err := ops.History(c.Context, database, ops.HistoryInput{
				Path:  c.Args().First(),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a file's content at a version (latest by default)",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "ver", Usage: "Version number to show"},
			&cli.BoolFlag{Name: "raw", Usage: "Print content only, without JSON framing"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("show requires exactly one path"))
			}

			input := ops.ShowInput{Path: c.Args().First()}
			if c.IsSet("ver") {
				v := c.Int("ver")
				input.Version = &v
			}

			output, err := ops.Show(c.Context, database, input)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("raw") {
				fmt.Print(output.Content)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a file to a specific version",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "ver", Required: true, Usage: "Version number to restore"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("restore requires exactly one path"))
			}

			output, err := ops.Restore(c.Context, database, ops.RestoreInput{
				Path:    c.Args().First(),
				Version: c.Int("ver"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// restoreDateCmd creates the restore-date command.
func restoreDateCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "restore-date",
		Usage:     "Restore a file to the latest version at or before a date",
		ArgsUsage: "<path> <date>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("restore-date requires a path and a date"))
			}

			output, err := ops.RestoreDate(c.Context, database, ops.RestoreDateInput{
				Path: c.Args().Get(0),
				Date: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// snapshotCmd creates the snapshot command group.
func snapshotCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Create, list, and restore named snapshots",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Capture the current version of every tracked file under a name",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "note", Usage: "Optional note for the snapshot"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("snapshot create requires exactly one name"))
					}

					input := ops.SnapshotCreateInput{Name: c.Args().First()}
					if note := c.String("note"); note != "" {
						input.Note = &note
					}

					output, err := ops.SnapshotCreate(c.Context, database, input)
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List all snapshots",
				Action: func(c *cli.Context) error {
					output, err := ops.SnapshotList(c.Context, database)
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
			{
				Name:      "restore",
				Usage:     "Restore all files to their snapshot versions",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("snapshot restore requires exactly one name"))
					}

					output, err := ops.SnapshotRestore(c.Context, database, ops.SnapshotRestoreInput{
						Name: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}

					return outputJSON(output)
				},
			},
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch tracked paths and store new versions as files settle",
		Action: func(c *cli.Context) error {
			roots, err := db.GetTrackedItems(c.Context, database)
			if err != nil {
				return outputError(err)
			}
			if len(roots) == 0 {
				return outputError(errors.NewInvalidRequest("nothing is tracked; run 'chroni track' first"))
			}

			// Skip roots that no longer exist on disk.
			var present []string
			for _, r := range roots {
				if _, statErr := os.Stat(r); statErr == nil {
					present = append(present, r)
				}
			}
			if len(present) == 0 {
				return outputError(errors.NewInvalidRequest("no tracked path exists on disk"))
			}

			debounce := time.Duration(cfg.WatchDebounceSeconds) * time.Second
			watcher, err := watch.New(present, cfg.ExcludedDirs, debounce)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := watcher.Start(); err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(os.Stderr, "watching %d path(s); press Ctrl-C to stop\n", len(present))

			for {
				select {
				case <-ctx.Done():
					return watcher.Stop()

				case err := <-watcher.Errors():
					fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

				case path := <-watcher.Events():
					output, err := ops.Scan(ctx, database, cfg, ops.ScanInput{Paths: []string{path}})
					if err != nil {
						fmt.Fprintf(os.Stderr, "scan error for %s: %v\n", path, err)
						continue
					}
					for _, ch := range output.Changed {
						fmt.Printf("%s -> v%d\n", ch.Path, ch.Version)
					}
					for _, sk := range output.Skipped {
						fmt.Fprintf(os.Stderr, "skipped %s: %s\n", sk.Path, sk.Reason)
					}
				}
			}
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.ChroniError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
