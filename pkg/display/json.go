package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/study-tracker/pkg/ingest"
	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/0xmhha/study-tracker/pkg/tracker"
)

// jsonFormatter formats output as JSON using the same field names as the
// HTTP API.
type jsonFormatter struct {
	config Config
}

func (f *jsonFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatStats implements Formatter.FormatStats.
func (f *jsonFormatter) FormatStats(w io.Writer, s stats.StudyStats) error {
	return f.encode(w, s)
}

// FormatInsights implements Formatter.FormatInsights.
func (f *jsonFormatter) FormatInsights(w io.Writer, in insights.Insights) error {
	return f.encode(w, in)
}

// FormatTrends implements Formatter.FormatTrends.
func (f *jsonFormatter) FormatTrends(w io.Writer, t insights.Trends) error {
	return f.encode(w, t)
}

// FormatGoalProgress implements Formatter.FormatGoalProgress.
func (f *jsonFormatter) FormatGoalProgress(w io.Writer, progress []stats.GoalProgress) error {
	if progress == nil {
		progress = []stats.GoalProgress{}
	}
	return f.encode(w, progress)
}

// FormatSessions implements Formatter.FormatSessions.
func (f *jsonFormatter) FormatSessions(w io.Writer, sessions []record.Session) error {
	if sessions == nil {
		sessions = []record.Session{}
	}
	return f.encode(w, sessions)
}

// FormatSession implements Formatter.FormatSession.
func (f *jsonFormatter) FormatSession(w io.Writer, s record.Session) error {
	return f.encode(w, s)
}

// FormatGoals implements Formatter.FormatGoals.
func (f *jsonFormatter) FormatGoals(w io.Writer, goals []record.Goal) error {
	if goals == nil {
		goals = []record.Goal{}
	}
	return f.encode(w, goals)
}

// FormatDashboard implements Formatter.FormatDashboard.
func (f *jsonFormatter) FormatDashboard(w io.Writer, d tracker.Dashboard) error {
	return f.encode(w, d)
}

// FormatImport implements Formatter.FormatImport.
func (f *jsonFormatter) FormatImport(w io.Writer, res ingest.Result) error {
	return f.encode(w, res)
}
