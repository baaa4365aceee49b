package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/0xmhha/study-tracker/pkg/parser"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/store"
	"github.com/spf13/cobra"
)

func newSessionCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Log and list study sessions",
	}

	cmd.AddCommand(
		newSessionAddCmd(opts),
		newSessionListCmd(opts),
		newSessionRecentCmd(opts),
		newSessionShowCmd(opts),
	)

	return cmd
}

func newSessionAddCmd(opts *globalOptions) *cobra.Command {
	var (
		subject  string
		duration int
		when     string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a study session",
		Example: `  study-tracker session add --subject Math --duration 45
  study-tracker session add --subject Art --duration 90 --date "2024-03-13 18:00" --notes "figure drawing"`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			date := a.tracker.Now()
			if when != "" {
				parsed, err := parser.ParseDate(when, a.loc)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				date = parsed
			}

			s, err := a.tracker.CreateSession(cmd.Context(), record.SessionInput{
				Subject:  subject,
				Duration: duration,
				Date:     date,
				Notes:    notes,
			})
			if err != nil {
				return validationError(err)
			}
			return a.out.FormatSession(cmd.OutOrStdout(), s)
		}),
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject studied (required)")
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "duration in minutes (required)")
	cmd.Flags().StringVar(&when, "date", "", "start time, e.g. 2024-03-13 or \"2024-03-13 18:00\" (default: now)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")

	return cmd
}

func newSessionListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all sessions, newest first",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			sessions, err := a.tracker.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatSessions(cmd.OutOrStdout(), sessions)
		}),
	}
}

func newSessionRecentCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent sessions",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be positive")
			}
			sessions, err := a.tracker.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.out.FormatSessions(cmd.OutOrStdout(), sessions)
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "number of sessions (default: engine.recent_limit)")

	return cmd
}

func newSessionShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			s, err := a.tracker.GetSession(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("session not found: %s", args[0])
				}
				return err
			}
			return a.out.FormatSession(cmd.OutOrStdout(), s)
		}),
	}
}

// validationError flattens a *record.ValidationError into a CLI message.
func validationError(err error) error {
	var verr *record.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	msg := "invalid input:"
	for _, f := range verr.Fields {
		msg += fmt.Sprintf("\n  --%s: %s", flagName(f.Field), f.Message)
	}
	return errors.New(msg)
}

// flagName maps a record field to the flag that sets it.
func flagName(field string) string {
	switch field {
	case "targetHours":
		return "target"
	case "startDate":
		return "start"
	case "endDate":
		return "end"
	default:
		return field
	}
}

// parseOptionalDate parses s in loc, returning the zero time for "".
func parseOptionalDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parser.ParseDate(s, loc)
}
