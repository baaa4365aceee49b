package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/study-tracker/pkg/ingest"
	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/0xmhha/study-tracker/pkg/tracker"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// FormatStats implements Formatter.FormatStats.
func (f *simpleFormatter) FormatStats(w io.Writer, s stats.StudyStats) error {
	_, err := fmt.Fprintf(w, "Total: %s | Streak: %d (longest %d) | This week: %d sessions | Goals completed: %d\n",
		formatHours(s.TotalHours),
		s.CurrentStreak,
		s.LongestStreak,
		s.SessionsThisWeek,
		s.GoalsCompleted)
	return err
}

// FormatInsights implements Formatter.FormatInsights.
func (f *simpleFormatter) FormatInsights(w io.Writer, in insights.Insights) error {
	subject, hour := "-", "-"
	if in.MostStudiedSubject != "" {
		subject = in.MostStudiedSubject
	}
	if len(in.StudyPatterns) > 0 {
		hour = formatHour(in.MostProductiveHour)
	}

	if _, err := fmt.Fprintf(w, "Top subject: %s | Best hour: %s | Avg session: %s\n",
		subject, hour, formatMinutes(in.AverageSessionLength)); err != nil {
		return err
	}

	for _, s := range in.SubjectBreakdown {
		if _, err := fmt.Fprintf(w, "%s: %s in %d sessions (avg: %sm)\n",
			s.Subject,
			formatHours(s.TotalHours),
			s.SessionCount,
			formatFloat(s.AverageSessionLength, 1)); err != nil {
			return err
		}
	}

	return nil
}

// FormatTrends implements Formatter.FormatTrends.
func (f *simpleFormatter) FormatTrends(w io.Writer, t insights.Trends) error {
	series := []struct {
		name   string
		layout string
		data   []insights.PeriodStats
	}{
		{"day", dateLayout, t.Daily},
		{"week", dateLayout, t.Weekly},
		{"month", "2006-01", t.Monthly},
	}

	for _, s := range series {
		for _, p := range s.data {
			if _, err := fmt.Fprintf(w, "%s %s: %s, %d sessions\n",
				s.name,
				p.Start.In(f.config.Location).Format(s.layout),
				formatHours(p.Hours),
				p.Sessions); err != nil {
				return err
			}
		}
	}

	return nil
}

// FormatGoalProgress implements Formatter.FormatGoalProgress.
func (f *simpleFormatter) FormatGoalProgress(w io.Writer, progress []stats.GoalProgress) error {
	for _, p := range progress {
		if _, err := fmt.Fprintf(w, "%s (%s): %s/%dh %s%% %s\n",
			p.Title,
			p.Type,
			formatFloat(p.CompletedHours, 1),
			p.TargetHours,
			formatFloat(p.Percent, 1),
			goalStatus(p)); err != nil {
			return err
		}
	}

	return nil
}

// FormatSessions implements Formatter.FormatSessions.
func (f *simpleFormatter) FormatSessions(w io.Writer, sessions []record.Session) error {
	for _, s := range sessions {
		if err := f.FormatSession(w, s); err != nil {
			return err
		}
	}
	return nil
}

// FormatSession implements Formatter.FormatSession.
func (f *simpleFormatter) FormatSession(w io.Writer, s record.Session) error {
	_, err := fmt.Fprintf(w, "%s %s %s %s\n",
		s.Date.In(f.config.Location).Format(dateTimeLayout),
		s.Subject,
		formatMinutes(s.Duration),
		s.ID)
	return err
}

// FormatGoals implements Formatter.FormatGoals.
func (f *simpleFormatter) FormatGoals(w io.Writer, goals []record.Goal) error {
	for _, g := range goals {
		if _, err := fmt.Fprintf(w, "%s (%s, %dh) %s..%s %s\n",
			g.Title,
			g.Type,
			g.TargetHours,
			g.StartDate.In(f.config.Location).Format(dateLayout),
			g.EndDate.In(f.config.Location).Format(dateLayout),
			g.ID); err != nil {
			return err
		}
	}

	return nil
}

// FormatDashboard implements Formatter.FormatDashboard.
func (f *simpleFormatter) FormatDashboard(w io.Writer, d tracker.Dashboard) error {
	if err := f.FormatStats(w, d.Statistics); err != nil {
		return err
	}

	active := make([]stats.GoalProgress, 0, len(d.GoalProgress))
	for _, p := range d.GoalProgress {
		if p.Active {
			active = append(active, p)
		}
	}
	if err := f.FormatGoalProgress(w, active); err != nil {
		return err
	}

	return f.FormatSessions(w, d.RecentSessions)
}

// FormatImport implements Formatter.FormatImport.
func (f *simpleFormatter) FormatImport(w io.Writer, res ingest.Result) error {
	_, err := fmt.Fprintf(w, "Files: %d | Sessions: %d | Goals: %d | Skipped: %d | Failed: %d\n",
		res.Files, res.Sessions, res.Goals, res.Skipped, res.Failed)
	return err
}
