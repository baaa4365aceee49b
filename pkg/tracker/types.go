// Package tracker composes the record store with the statistics and
// insights engines.
//
// The service validates create inputs, persists them, and derives every
// statistic from a fresh snapshot of the store using an injected clock:
//
//	svc := tracker.New(st, tracker.Options{
//	    Clock:    tracker.SystemClock(loc),
//	    Notifier: notify.NewLog(log),
//	    Logger:   log,
//	})
//
//	if _, err := svc.CreateSession(ctx, in); err != nil {
//	    var verr *record.ValidationError
//	    if errors.As(err, &verr) {
//	        // report verr.Fields
//	    }
//	}
//	dash, err := svc.Dashboard(ctx)
package tracker

import (
	"time"

	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/notify"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
)

// DefaultRecentLimit is the recent sessions listing size when none is
// configured.
const DefaultRecentLimit = 5

// Options configures a Service. Zero values select defaults.
type Options struct {
	// Clock supplies now (default: SystemClock(time.Local)).
	Clock Clock

	// Notifier receives goal completions (default: notify.Noop()).
	Notifier notify.Notifier

	// RecentLimit is the default recent sessions size (default: 5).
	RecentLimit int

	// Logger (default: logger.Noop()).
	Logger logger.Logger
}

// Dashboard is a consistent view of the store at one instant.
type Dashboard struct {
	GeneratedAt    time.Time            `json:"generatedAt"`
	Statistics     stats.StudyStats     `json:"statistics"`
	Insights       insights.Insights    `json:"insights"`
	RecentSessions []record.Session     `json:"recentSessions"`
	ActiveGoals    []record.Goal        `json:"activeGoals"`
	GoalProgress   []stats.GoalProgress `json:"goalProgress"`
}
