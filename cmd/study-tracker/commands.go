package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xmhha/study-tracker/pkg/api"
	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/ingest"
	"github.com/0xmhha/study-tracker/pkg/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

With --watch (or import.watch in the config file) the configured import
directories are swept once and then followed for appended lines.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Import.Watch = watch
			}

			var (
				in *ingest.Ingester
				w  watcher.Watcher
			)
			if a.cfg.Import.Watch {
				var err error
				if in, w, err = openWatch(a, a.cfg.Import); err != nil {
					return err
				}
				defer closeWatch(a, in, w)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			g, ctx := errgroup.WithContext(ctx)

			srv := api.NewServer(a.cfg.Server, a.tracker, a.log)
			g.Go(func() error { return srv.Run(ctx) })

			if in != nil {
				g.Go(func() error {
					return in.Run(ctx, w, func(u ingest.Update) {
						a.log.Info("imported from file",
							"path", u.Path,
							"sessions", u.Result.Sessions,
							"goals", u.Result.Goals,
							"skipped", u.Result.Skipped)
					})
				})
			}

			return g.Wait()
		}),
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "import and follow JSONL files from import.dirs")

	return cmd
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			s, err := a.tracker.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatStats(cmd.OutOrStdout(), s)
		}),
	}
}

func newInsightsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show subjects, study hours and session patterns",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			in, err := a.tracker.Insights(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatInsights(cmd.OutOrStdout(), in)
		}),
	}
}

func newTrendsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show daily, weekly and monthly study volume",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			t, err := a.tracker.Trends(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatTrends(cmd.OutOrStdout(), t)
		}),
	}
}

func newDashboardCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show statistics, active goals and recent sessions",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			d, err := a.tracker.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatDashboard(cmd.OutOrStdout(), d)
		}),
	}
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "import [dir...]",
		Short: "Import sessions and goals from JSONL files",
		Long: `Import sessions and goals from *.jsonl files under the given directories
(default: import.dirs). Each line is one JSON object:

  {"kind":"session","subject":"Math","duration":45,"date":"2024-03-13T18:00"}
  {"kind":"goal","type":"weekly","targetHours":10,"title":"Finals","startDate":"2024-03-11","endDate":"2024-03-17"}

Read offsets are remembered, so running import again only picks up new
lines. Malformed lines are skipped and counted.`,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			cfg := a.cfg.Import
			if len(args) > 0 {
				cfg.Dirs = args
			}

			if !watch {
				in, err := ingest.Open(cfg, a.loc, a.tracker, a.log)
				if err != nil {
					return importError(err)
				}
				defer func() {
					if err := in.Close(); err != nil {
						a.log.Error("failed to close ingester", "error", err)
					}
				}()

				res, err := in.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.FormatImport(cmd.OutOrStdout(), res)
			}

			in, w, err := openWatch(a, cfg)
			if err != nil {
				return err
			}
			defer closeWatch(a, in, w)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Watching for new lines (Ctrl+C to stop)")

			return in.Run(ctx, w, func(u ingest.Update) {
				if err := a.out.FormatImport(cmd.OutOrStdout(), u.Result); err != nil {
					a.log.Warn("failed to write import update", "error", err)
				}
			})
		}),
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep importing lines as they are appended")

	return cmd
}

func importError(err error) error {
	if errors.Is(err, ingest.ErrNoDirs) {
		return fmt.Errorf("%w: set import.dirs or pass directories as arguments", err)
	}
	return fmt.Errorf("failed to open importer: %w", err)
}

// openWatch opens an ingester and a watcher for cfg.
func openWatch(a *app, cfg config.ImportConfig) (*ingest.Ingester, watcher.Watcher, error) {
	in, err := ingest.Open(cfg, a.loc, a.tracker, a.log)
	if err != nil {
		return nil, nil, importError(err)
	}

	w, err := watcher.New(watcher.Config{DebounceInterval: cfg.DebounceInterval}, a.log)
	if err != nil {
		if closeErr := in.Close(); closeErr != nil {
			a.log.Error("failed to close ingester", "error", closeErr)
		}
		return nil, nil, err
	}

	return in, w, nil
}

func closeWatch(a *app, in *ingest.Ingester, w watcher.Watcher) {
	if err := w.Close(); err != nil {
		a.log.Error("failed to close watcher", "error", err)
	}
	if err := in.Close(); err != nil {
		a.log.Error("failed to close ingester", "error", err)
	}
}
