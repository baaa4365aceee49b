// Package stats provides the statistics engine for study sessions.
//
// It derives totals, streaks, weekly counts and goal completion from an
// in-memory snapshot of sessions and goals. Every function is pure: the
// current time is passed in, inputs are never mutated, and results are
// freshly allocated.
//
// Example usage:
//
//	sessions, _ := st.ListSessions(ctx)
//	goals, _ := st.ListGoals(ctx)
//
//	s := stats.Compute(sessions, goals, time.Now())
//	fmt.Printf("Total hours: %.1f\n", s.TotalHours)
//	fmt.Printf("Current streak: %d days\n", s.CurrentStreak)
//
// Calendar days are evaluated in the location of now.
package stats

import (
	"time"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// StudyStats contains aggregate study statistics.
type StudyStats struct {
	// TotalHours is the summed duration of all sessions in hours (unrounded).
	TotalHours float64 `json:"totalHours"`

	// CurrentStreak is the run of consecutive study days ending today or
	// yesterday.
	CurrentStreak int `json:"currentStreak"`

	// LongestStreak is the longest run of consecutive study days.
	LongestStreak int `json:"longestStreak"`

	// SessionsThisWeek counts sessions in the Monday-start week containing now.
	SessionsThisWeek int `json:"sessionsThisWeek"`

	// GoalsCompleted counts goals whose in-window hours reach the target.
	GoalsCompleted int `json:"goalsCompleted"`
}

// GoalProgress reports how far a single goal has progressed.
type GoalProgress struct {
	GoalID      string          `json:"goalId"`
	Title       string          `json:"title"`
	Type        record.GoalType `json:"type"`
	TargetHours int             `json:"targetHours"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`

	// CompletedHours is the summed duration of in-window sessions.
	CompletedHours float64 `json:"completedHours"`

	// Percent is CompletedHours relative to TargetHours, capped at 100.
	Percent float64 `json:"percent"`

	// Completed is true once CompletedHours >= TargetHours.
	Completed bool `json:"completed"`

	// Active is true while the goal window has not ended.
	Active bool `json:"active"`
}
