// Package notify announces goal completions.
//
// A Notifier is called by the tracker when logging a session pushes a goal
// over its target. Backends are selected by configuration:
//
//	n, err := notify.New(cfg.Notify, log)
//	if err != nil {
//	    return err
//	}
//	_ = n.GoalCompleted(ctx, goal, 10.5)
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/gen2brain/beeep"
)

// ErrUnknownBackend is returned by New for unrecognised backends.
var ErrUnknownBackend = errors.New("unknown notify backend")

// Notifier receives goal completion events.
type Notifier interface {
	// GoalCompleted reports that goal reached its target with hours logged
	// inside its window.
	GoalCompleted(ctx context.Context, goal record.Goal, hours float64) error
}

// New creates the notifier selected by cfg.Backend.
func New(cfg config.NotifyConfig, log logger.Logger) (Notifier, error) {
	switch cfg.Backend {
	case config.NotifyNone:
		return Noop(), nil
	case config.NotifyLog:
		return NewLog(log), nil
	case config.NotifyDesktop:
		return NewDesktop(cfg.AppName), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Message returns the title and body used for a goal completion.
func Message(goal record.Goal, hours float64) (title, body string) {
	title = "Goal completed: " + goal.Title
	body = fmt.Sprintf("%.1f of %d hours logged (%s goal)", hours, goal.TargetHours, goal.Type)
	return title, body
}

type noop struct{}

// Noop returns a notifier that does nothing.
func Noop() Notifier {
	return noop{}
}

func (noop) GoalCompleted(context.Context, record.Goal, float64) error {
	return nil
}

type logNotifier struct {
	logger logger.Logger
}

// NewLog returns a notifier that writes completions to log.
func NewLog(log logger.Logger) Notifier {
	return &logNotifier{logger: log}
}

func (n *logNotifier) GoalCompleted(_ context.Context, goal record.Goal, hours float64) error {
	n.logger.Info("goal completed",
		"goal_id", goal.ID,
		"title", goal.Title,
		"type", string(goal.Type),
		"target_hours", goal.TargetHours,
		"hours", hours)
	return nil
}

// desktop shows a native desktop notification.
type desktop struct {
	send func(title, message string, icon any) error
}

// NewDesktop returns a notifier that shows a desktop notification under
// appName.
func NewDesktop(appName string) Notifier {
	if appName != "" {
		beeep.AppName = appName
	}
	return &desktop{send: beeep.Notify}
}

func (d *desktop) GoalCompleted(ctx context.Context, goal record.Goal, hours float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title, body := Message(goal, hours)
	if err := d.send(title, body, ""); err != nil {
		return fmt.Errorf("failed to send desktop notification: %w", err)
	}
	return nil
}
