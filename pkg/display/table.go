package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/0xmhha/study-tracker/pkg/ingest"
	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/0xmhha/study-tracker/pkg/tracker"
)

const barWidth = 20

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
	styles styles
}

// FormatStats implements Formatter.FormatStats.
func (f *tableFormatter) FormatStats(w io.Writer, s stats.StudyStats) error {
	if err := f.header(w, "Study Statistics"); err != nil {
		return err
	}
	return f.writeTable(w, []string{"Metric", "Value"}, statsRows(s))
}

func statsRows(s stats.StudyStats) [][]string {
	return [][]string{
		{"Total Hours", formatHours(s.TotalHours)},
		{"Current Streak", days(s.CurrentStreak)},
		{"Longest Streak", days(s.LongestStreak)},
		{"Sessions This Week", formatNumber(s.SessionsThisWeek)},
		{"Goals Completed", formatNumber(s.GoalsCompleted)},
	}
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return formatNumber(n) + " days"
}

// FormatInsights implements Formatter.FormatInsights.
func (f *tableFormatter) FormatInsights(w io.Writer, in insights.Insights) error {
	if err := f.header(w, "Study Insights"); err != nil {
		return err
	}
	if err := f.writeTable(w, []string{"Insight", "Value"}, insightRows(in)); err != nil {
		return err
	}

	if err := f.header(w, "Subjects"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(in.SubjectBreakdown))
	for _, s := range in.SubjectBreakdown {
		rows = append(rows, []string{
			s.Subject,
			formatHours(s.TotalHours),
			formatNumber(s.SessionCount),
			formatFloat(s.AverageSessionLength, 1) + "m",
		})
	}
	if err := f.writeTable(w, []string{"Subject", "Hours", "Sessions", "Avg Length"}, rows); err != nil {
		return err
	}

	if err := f.header(w, "Study Patterns"); err != nil {
		return err
	}
	rows = make([][]string, 0, len(in.StudyPatterns))
	for _, p := range in.StudyPatterns {
		rows = append(rows, []string{
			formatHour(p.Hour),
			formatNumber(p.SessionCount),
			strings.Repeat("*", min(p.SessionCount, barWidth)),
		})
	}
	return f.writeTable(w, []string{"Hour", "Sessions", ""}, rows)
}

func insightRows(in insights.Insights) [][]string {
	subject, hour := "-", "-"
	if in.MostStudiedSubject != "" {
		subject = in.MostStudiedSubject
	}
	if len(in.StudyPatterns) > 0 {
		hour = formatHour(in.MostProductiveHour)
	}
	return [][]string{
		{"Most Studied Subject", subject},
		{"Most Productive Hour", hour},
		{"Average Session Length", formatMinutes(in.AverageSessionLength)},
	}
}

// FormatTrends implements Formatter.FormatTrends.
func (f *tableFormatter) FormatTrends(w io.Writer, t insights.Trends) error {
	sections := []struct {
		title  string
		label  string
		layout string
		data   []insights.PeriodStats
	}{
		{"Daily Trend", "Day", "Mon 2006-01-02", t.Daily},
		{"Weekly Trend", "Week Of", dateLayout, t.Weekly},
		{"Monthly Trend", "Month", "Jan 2006", t.Monthly},
	}

	for _, s := range sections {
		if err := f.header(w, s.title); err != nil {
			return err
		}

		peak := 0.0
		for _, p := range s.data {
			peak = max(peak, p.Hours)
		}

		rows := make([][]string, 0, len(s.data))
		for _, p := range s.data {
			pct := 0.0
			if peak > 0 {
				pct = p.Hours / peak * 100
			}
			rows = append(rows, []string{
				p.Start.In(f.config.Location).Format(s.layout),
				formatHours(p.Hours),
				formatNumber(p.Sessions),
				progressBar(pct, barWidth),
			})
		}
		if err := f.writeTable(w, []string{s.label, "Hours", "Sessions", ""}, rows); err != nil {
			return err
		}
	}

	return nil
}

// FormatGoalProgress implements Formatter.FormatGoalProgress.
func (f *tableFormatter) FormatGoalProgress(w io.Writer, progress []stats.GoalProgress) error {
	if err := f.header(w, "Goal Progress"); err != nil {
		return err
	}
	return f.writeTable(w, []string{"Title", "Type", "Window", "Progress", "Hours", "Status"}, f.progressRows(progress))
}

func (f *tableFormatter) progressRows(progress []stats.GoalProgress) [][]string {
	rows := make([][]string, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, []string{
			p.Title,
			string(p.Type),
			f.window(p.StartDate, p.EndDate),
			fmt.Sprintf("%s %5s%%", progressBar(p.Percent, barWidth), formatFloat(p.Percent, 1)),
			fmt.Sprintf("%s/%dh", formatFloat(p.CompletedHours, 1), p.TargetHours),
			goalStatus(p),
		})
	}
	return rows
}

func goalStatus(p stats.GoalProgress) string {
	switch {
	case p.Completed:
		return "completed"
	case p.Active:
		return "active"
	default:
		return "missed"
	}
}

// FormatSessions implements Formatter.FormatSessions.
func (f *tableFormatter) FormatSessions(w io.Writer, sessions []record.Session) error {
	if err := f.header(w, "Study Sessions"); err != nil {
		return err
	}
	return f.writeTable(w, []string{"Date", "Subject", "Duration", "ID"}, f.sessionRows(sessions))
}

func (f *tableFormatter) sessionRows(sessions []record.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.Date.In(f.config.Location).Format(dateTimeLayout),
			s.Subject,
			formatMinutes(s.Duration),
			s.ID,
		})
	}
	return rows
}

// FormatSession implements Formatter.FormatSession.
func (f *tableFormatter) FormatSession(w io.Writer, s record.Session) error {
	if err := f.header(w, "Study Session"); err != nil {
		return err
	}

	notes := s.Notes
	if notes == "" {
		notes = "-"
	}
	return f.writeTable(w, []string{"Field", "Value"}, [][]string{
		{"ID", s.ID},
		{"Subject", s.Subject},
		{"Date", s.Date.In(f.config.Location).Format(dateTimeLayout)},
		{"Duration", formatMinutes(s.Duration)},
		{"Notes", notes},
	})
}

// FormatGoals implements Formatter.FormatGoals.
func (f *tableFormatter) FormatGoals(w io.Writer, goals []record.Goal) error {
	if err := f.header(w, "Goals"); err != nil {
		return err
	}

	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		rows = append(rows, []string{
			g.Title,
			string(g.Type),
			fmt.Sprintf("%dh", g.TargetHours),
			f.window(g.StartDate, g.EndDate),
			g.ID,
		})
	}
	return f.writeTable(w, []string{"Title", "Type", "Target", "Window", "ID"}, rows)
}

// FormatDashboard implements Formatter.FormatDashboard.
func (f *tableFormatter) FormatDashboard(w io.Writer, d tracker.Dashboard) error {
	if err := f.FormatStats(w, d.Statistics); err != nil {
		return err
	}

	if err := f.header(w, "Highlights"); err != nil {
		return err
	}
	if err := f.writeTable(w, []string{"Insight", "Value"}, insightRows(d.Insights)); err != nil {
		return err
	}

	active := make([]stats.GoalProgress, 0, len(d.GoalProgress))
	for _, p := range d.GoalProgress {
		if p.Active {
			active = append(active, p)
		}
	}
	if err := f.header(w, "Active Goals"); err != nil {
		return err
	}
	if err := f.writeTable(w, []string{"Title", "Type", "Window", "Progress", "Hours", "Status"}, f.progressRows(active)); err != nil {
		return err
	}

	if err := f.header(w, "Recent Sessions"); err != nil {
		return err
	}
	return f.writeTable(w, []string{"Date", "Subject", "Duration", "ID"}, f.sessionRows(d.RecentSessions))
}

// FormatImport implements Formatter.FormatImport.
func (f *tableFormatter) FormatImport(w io.Writer, res ingest.Result) error {
	if err := f.header(w, "Import Summary"); err != nil {
		return err
	}
	return f.writeTable(w, []string{"Metric", "Value"}, [][]string{
		{"Files Read", formatNumber(res.Files)},
		{"Sessions Imported", formatNumber(res.Sessions)},
		{"Goals Imported", formatNumber(res.Goals)},
		{"Lines Skipped", formatNumber(res.Skipped)},
		{"Records Failed", formatNumber(res.Failed)},
	})
}

func (f *tableFormatter) header(w io.Writer, title string) error {
	return writeHeader(w, title, f.config.Compact, f.styles)
}

func (f *tableFormatter) window(start, end time.Time) string {
	return start.In(f.config.Location).Format(dateLayout) + " .. " +
		end.In(f.config.Location).Format(dateLayout)
}

// writeTable writes a formatted table.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	// Calculate column widths.
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if err := f.writeRow(w, header, widths, true); err != nil {
		return err
	}

	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, width := range widths {
			separator[i] = strings.Repeat("-", width)
		}
		if err := f.writeRow(w, separator, widths, false); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := f.writeRow(w, row, widths, false); err != nil {
			return err
		}
	}

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}

	return nil
}

// writeRow writes a single table row. Cells are padded before styling so
// that escape sequences do not affect alignment.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int, header bool) error {
	sep := "  "
	if f.config.Compact {
		sep = " "
	}

	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(sep)
		}

		padded := fmt.Sprintf("%-*s", widths[i], cell)
		if header {
			padded = f.styles.render(f.styles.header, padded)
		}
		b.WriteString(padded)
	}

	_, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	return err
}
