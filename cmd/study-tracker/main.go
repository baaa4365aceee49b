// Package main provides the study-tracker CLI application.
//
// Study Tracker records study sessions and goals and derives statistics,
// insights and trends from them. It can serve a JSON API, import JSONL
// logs and follow them as they grow.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/display"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/notify"
	"github.com/0xmhha/study-tracker/pkg/store"
	"github.com/0xmhha/study-tracker/pkg/tracker"
	"github.com/spf13/cobra"
)

// Set during build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	format     string
	compact    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "study-tracker",
		Short: "Track study sessions, goals and progress",
		Long: `Study Tracker records study sessions and goals and turns them into
statistics, insights and trends.

Sessions and goals can be added from the command line, through the HTTP API
(study-tracker serve) or imported from JSONL files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&opts.format, "format", "", "output format (table, json, simple)")
	root.PersistentFlags().BoolVar(&opts.compact, "compact", false, "compact output")

	root.AddCommand(
		newServeCmd(opts),
		newStatsCmd(opts),
		newInsightsCmd(opts),
		newTrendsCmd(opts),
		newDashboardCmd(opts),
		newSessionCmd(opts),
		newGoalCmd(opts),
		newImportCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "study-tracker %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
}

// app bundles the components a command needs.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	loc     *time.Location
	store   store.Store
	tracker *tracker.Service
	out     display.Formatter
}

// loadConfig loads configuration honouring --config.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.NewLoader(opts.configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the application logger from cfg.
func newLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// openApp loads configuration and opens the store. w receives formatted
// output and decides whether styling is applied.
func openApp(opts *globalOptions, w io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	formatter, err := newFormatter(opts, cfg, loc, w)
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg)

	notifier, err := notify.New(cfg.Notify, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	st, err := store.Open(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	svc := tracker.New(st, tracker.Options{
		Clock:       tracker.SystemClock(loc),
		Notifier:    notifier,
		RecentLimit: cfg.Engine.RecentLimit,
		Logger:      log,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		loc:     loc,
		store:   st,
		tracker: svc,
		out:     formatter,
	}, nil
}

// Close releases the store.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("failed to close store", "error", err)
	}
}

func newFormatter(opts *globalOptions, cfg *config.Config, loc *time.Location, w io.Writer) (display.Formatter, error) {
	name := opts.format
	if name == "" {
		name = cfg.Display.DefaultFormat
	}

	format, err := display.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	return display.New(display.Config{
		Format:   format,
		Compact:  opts.compact,
		Color:    display.ColorEnabled(cfg.Display.ColorEnabled, w),
		Location: loc,
	}), nil
}

// withApp opens the application for the duration of fn.
func withApp(opts *globalOptions, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(opts, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, a)
	}
}
