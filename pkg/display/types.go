// Package display renders study statistics for the terminal.
//
// It supports multiple output formats (table, JSON, simple text). Table
// headers are styled with lipgloss when colour is enabled.
package display

import (
	"io"
	"time"

	"github.com/0xmhha/study-tracker/pkg/ingest"
	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/0xmhha/study-tracker/pkg/tracker"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays results in aligned tables.
	FormatTable Format = "table"

	// FormatJSON displays results as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays results as one line per item.
	FormatSimple Format = "simple"
)

// Formatter formats and displays study data.
type Formatter interface {
	// FormatStats formats aggregate study statistics.
	FormatStats(w io.Writer, s stats.StudyStats) error

	// FormatInsights formats behavioural insights.
	FormatInsights(w io.Writer, in insights.Insights) error

	// FormatTrends formats daily, weekly and monthly study volume.
	FormatTrends(w io.Writer, t insights.Trends) error

	// FormatGoalProgress formats per-goal progress.
	FormatGoalProgress(w io.Writer, progress []stats.GoalProgress) error

	// FormatSessions formats a session listing.
	FormatSessions(w io.Writer, sessions []record.Session) error

	// FormatSession formats a single session with its notes.
	FormatSession(w io.Writer, s record.Session) error

	// FormatGoals formats a goal listing.
	FormatGoals(w io.Writer, goals []record.Goal) error

	// FormatDashboard formats the combined dashboard view.
	FormatDashboard(w io.Writer, d tracker.Dashboard) error

	// FormatImport formats the outcome of an import run.
	FormatImport(w io.Writer, res ingest.Result) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool

	// Color styles table headers.
	// Default: false.
	Color bool

	// Location is used to print dates.
	// Default: time.Local.
	Location *time.Location
}
