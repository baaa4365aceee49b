package stats

import (
	"sort"
	"time"

	"github.com/0xmhha/study-tracker/pkg/calendar"
	"github.com/0xmhha/study-tracker/pkg/record"
)

// Compute derives aggregate statistics from sessions and goals at now.
//
// Empty inputs yield a zero StudyStats.
func Compute(sessions []record.Session, goals []record.Goal, now time.Time) StudyStats {
	var stats StudyStats

	totalMinutes := 0
	weekStart := calendar.StartOfWeek(now)
	weekEnd := calendar.EndOfWeek(now)

	for _, s := range sessions {
		totalMinutes += s.Duration

		if calendar.Within(s.Date, weekStart, weekEnd) {
			stats.SessionsThisWeek++
		}
	}

	stats.TotalHours = float64(totalMinutes) / 60
	stats.CurrentStreak, stats.LongestStreak = Streaks(sessions, now)

	for _, g := range goals {
		if goalHours(g, sessions) >= float64(g.TargetHours) {
			stats.GoalsCompleted++
		}
	}

	return stats
}

// Streaks returns the current and longest runs of consecutive study days.
//
// The current streak is alive when the most recent study day is today or
// yesterday relative to now. The longest streak is independent of now.
func Streaks(sessions []record.Session, now time.Time) (current, longest int) {
	days := studyDays(sessions, now.Location())
	if len(days) == 0 {
		return 0, 0
	}

	today := calendar.DayOf(now)
	if gap := today - days[0]; gap == 0 || gap == 1 {
		current = 1
		for i := 1; i < len(days); i++ {
			if days[i-1]-days[i] != 1 {
				break
			}
			current++
		}
	}

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	return current, longest
}

// Progress reports per-goal progress in goal input order.
func Progress(goals []record.Goal, sessions []record.Session, now time.Time) []GoalProgress {
	result := make([]GoalProgress, 0, len(goals))

	for _, g := range goals {
		hours := goalHours(g, sessions)

		percent := 0.0
		if g.TargetHours > 0 {
			percent = hours / float64(g.TargetHours) * 100
		}
		if percent > 100 {
			percent = 100
		}

		result = append(result, GoalProgress{
			GoalID:         g.ID,
			Title:          g.Title,
			Type:           g.Type,
			TargetHours:    g.TargetHours,
			StartDate:      g.StartDate,
			EndDate:        g.EndDate,
			CompletedHours: hours,
			Percent:        percent,
			Completed:      hours >= float64(g.TargetHours),
			Active:         !g.EndDate.Before(now),
		})
	}

	return result
}

// goalHours sums the hours of sessions inside the goal's closed window.
func goalHours(g record.Goal, sessions []record.Session) float64 {
	minutes := 0
	for _, s := range sessions {
		if g.Contains(s.Date) {
			minutes += s.Duration
		}
	}
	return float64(minutes) / 60
}

// studyDays returns the distinct calendar days with at least one session,
// most recent first.
func studyDays(sessions []record.Session, loc *time.Location) []calendar.Day {
	seen := make(map[calendar.Day]struct{}, len(sessions))
	days := make([]calendar.Day, 0, len(sessions))

	for _, s := range sessions {
		d := calendar.DayOf(s.Date.In(loc))
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i] > days[j]
	})

	return days
}
