package main

import (
	"errors"
	"fmt"

	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/store"
	"github.com/spf13/cobra"
)

func newGoalCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals"},
		Short:   "Manage study goals",
	}

	cmd.AddCommand(
		newGoalAddCmd(opts),
		newGoalListCmd(opts),
		newGoalActiveCmd(opts),
		newGoalProgressCmd(opts),
		newGoalShowCmd(opts),
	)

	return cmd
}

func newGoalAddCmd(opts *globalOptions) *cobra.Command {
	var (
		goalType string
		target   int
		title    string
		start    string
		end      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a study goal",
		Long: `Create a study goal.

Without --start and --end the goal covers the current day, the next
7 days or the next month depending on --type.`,
		Example: `  study-tracker goal add --type weekly --target 10 --title "Exam prep"
  study-tracker goal add --type monthly --target 40 --title Thesis --start 2024-03-01 --end 2024-03-31`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			in := record.GoalInput{
				Type:        record.GoalType(goalType),
				TargetHours: target,
				Title:       title,
			}

			switch {
			case start == "" && end == "":
				in.StartDate, in.EndDate = in.Type.DefaultWindow(a.tracker.Now())
			case start == "" || end == "":
				return errors.New("--start and --end must be given together")
			default:
				var err error
				if in.StartDate, err = parseOptionalDate(start, a.loc); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				if in.EndDate, err = parseOptionalDate(end, a.loc); err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
			}

			g, err := a.tracker.CreateGoal(cmd.Context(), in)
			if err != nil {
				return validationError(err)
			}
			return a.out.FormatGoals(cmd.OutOrStdout(), []record.Goal{g})
		}),
	}

	cmd.Flags().StringVarP(&goalType, "type", "t", string(record.GoalWeekly), "goal type: daily, weekly, or monthly")
	cmd.Flags().IntVar(&target, "target", 0, "target hours (required)")
	cmd.Flags().StringVar(&title, "title", "", "goal title (required)")
	cmd.Flags().StringVar(&start, "start", "", "window start date")
	cmd.Flags().StringVar(&end, "end", "", "window end date")

	return cmd
}

func newGoalListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all goals",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			goals, err := a.tracker.ListGoals(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatGoals(cmd.OutOrStdout(), goals)
		}),
	}
}

func newGoalActiveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List goals whose window has not ended",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			goals, err := a.tracker.ActiveGoals(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatGoals(cmd.OutOrStdout(), goals)
		}),
	}
}

func newGoalProgressCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show progress towards every goal",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
			progress, err := a.tracker.GoalProgress(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.FormatGoalProgress(cmd.OutOrStdout(), progress)
		}),
	}
}

func newGoalShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single goal",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			g, err := a.tracker.GetGoal(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("goal not found: %s", args[0])
				}
				return err
			}
			return a.out.FormatGoals(cmd.OutOrStdout(), []record.Goal{g})
		}),
	}
}
