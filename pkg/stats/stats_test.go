package stats

import (
	"testing"
	"time"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// now is a Wednesday afternoon.
var now = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func session(subject string, minutes int, at time.Time) record.Session {
	return record.Session{
		ID:       subject + at.Format(time.RFC3339Nano),
		Subject:  subject,
		Duration: minutes,
		Date:     at,
	}
}

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	stats := Compute(nil, nil, now)

	if stats != (StudyStats{}) {
		t.Errorf("Compute(nil, nil) = %+v, want zero value", stats)
	}
}

func TestCompute_TotalHours(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		session("Math", 90, now),
		session("Art", 45, daysAgo(10)),
	}

	stats := Compute(sessions, nil, now)
	if stats.TotalHours != 2.25 {
		t.Errorf("Compute().TotalHours = %f, want 2.25", stats.TotalHours)
	}
}

func TestCompute_SessionsThisWeek(t *testing.T) {
	t.Parallel()

	monday := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	sundayEnd := time.Date(2024, time.March, 17, 23, 59, 59, 999999999, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{name: "week start boundary", at: monday, want: 1},
		{name: "week end boundary", at: sundayEnd, want: 1},
		{name: "mid week", at: now, want: 1},
		{name: "previous sunday", at: monday.Add(-time.Nanosecond), want: 0},
		{name: "next monday", at: sundayEnd.Add(time.Nanosecond), want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			stats := Compute([]record.Session{session("Math", 30, tt.at)}, nil, now)
			if stats.SessionsThisWeek != tt.want {
				t.Errorf("SessionsThisWeek = %d, want %d", stats.SessionsThisWeek, tt.want)
			}
		})
	}
}

func TestCompute_SessionsThisWeekWhenNowIsSunday(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2024, time.March, 17, 20, 0, 0, 0, time.UTC)
	sessions := []record.Session{
		session("Math", 30, time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)),
		session("Math", 30, time.Date(2024, time.March, 18, 9, 0, 0, 0, time.UTC)),
	}

	stats := Compute(sessions, nil, sunday)
	if stats.SessionsThisWeek != 1 {
		t.Errorf("SessionsThisWeek = %d, want 1", stats.SessionsThisWeek)
	}
}

func TestStreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sessions    []record.Session
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "no sessions",
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name: "today yesterday and day before",
			sessions: []record.Session{
				session("Math", 30, daysAgo(0)),
				session("Math", 30, daysAgo(1)),
				session("Math", 30, daysAgo(2)),
			},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name: "duplicate day does not extend streak",
			sessions: []record.Session{
				session("Math", 30, daysAgo(0)),
				session("Math", 30, daysAgo(1)),
				session("Math", 30, daysAgo(2)),
				session("Art", 10, daysAgo(2).Add(-2*time.Hour)),
			},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name: "streak ending yesterday is alive",
			sessions: []record.Session{
				session("Math", 30, daysAgo(1)),
				session("Math", 30, daysAgo(2)),
			},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "stale streak",
			sessions: []record.Session{
				session("Math", 30, daysAgo(5)),
				session("Math", 30, daysAgo(4)),
				session("Math", 30, daysAgo(3)),
			},
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name: "gap breaks current streak",
			sessions: []record.Session{
				session("Math", 30, daysAgo(0)),
				session("Math", 30, daysAgo(2)),
				session("Math", 30, daysAgo(3)),
				session("Math", 30, daysAgo(4)),
			},
			wantCurrent: 1,
			wantLongest: 3,
		},
		{
			name: "single old session",
			sessions: []record.Session{
				session("Math", 30, daysAgo(30)),
			},
			wantCurrent: 0,
			wantLongest: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			current, longest := Streaks(tt.sessions, now)
			if current != tt.wantCurrent {
				t.Errorf("current = %d, want %d", current, tt.wantCurrent)
			}
			if longest != tt.wantLongest {
				t.Errorf("longest = %d, want %d", longest, tt.wantLongest)
			}
		})
	}
}

func TestStreaks_OrderIndependent(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		session("Math", 30, daysAgo(2)),
		session("Math", 30, daysAgo(0)),
		session("Math", 30, daysAgo(1)),
	}

	current, longest := Streaks(sessions, now)
	if current != 3 || longest != 3 {
		t.Errorf("Streaks() = (%d, %d), want (3, 3)", current, longest)
	}
}

func TestStreaks_UsesLocationOfNow(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2024, time.March, 13, 8, 0, 0, 0, loc)

	// 23:00 UTC on the 12th is already the 13th at UTC+10.
	sessions := []record.Session{
		session("Math", 30, time.Date(2024, time.March, 12, 23, 0, 0, 0, time.UTC)),
		session("Math", 30, time.Date(2024, time.March, 12, 1, 0, 0, 0, time.UTC)),
	}

	current, _ := Streaks(sessions, localNow)
	if current != 2 {
		t.Errorf("current = %d, want 2", current)
	}
}

func TestCompute_GoalsCompleted(t *testing.T) {
	t.Parallel()

	start := daysAgo(3)
	end := now.Add(time.Hour)

	goals := []record.Goal{
		{ID: "exact", TargetHours: 2, StartDate: start, EndDate: end},
		{ID: "short", TargetHours: 3, StartDate: start, EndDate: end},
		{ID: "reversed", TargetHours: 1, StartDate: end, EndDate: start},
	}
	sessions := []record.Session{
		session("Math", 60, daysAgo(1)),
		session("Art", 60, daysAgo(2)),
		session("Math", 600, daysAgo(10)),
	}

	stats := Compute(sessions, goals, now)
	if stats.GoalsCompleted != 1 {
		t.Errorf("GoalsCompleted = %d, want 1", stats.GoalsCompleted)
	}
}

func TestCompute_SessionCountsTowardOverlappingGoals(t *testing.T) {
	t.Parallel()

	goals := []record.Goal{
		{ID: "a", TargetHours: 1, StartDate: daysAgo(7), EndDate: now},
		{ID: "b", TargetHours: 1, StartDate: daysAgo(2), EndDate: now},
	}
	sessions := []record.Session{session("Math", 60, daysAgo(1))}

	stats := Compute(sessions, goals, now)
	if stats.GoalsCompleted != 2 {
		t.Errorf("GoalsCompleted = %d, want 2", stats.GoalsCompleted)
	}
}

func TestCompute_GoalWindowBoundaries(t *testing.T) {
	t.Parallel()

	start := daysAgo(1)
	end := now
	goals := []record.Goal{{ID: "g", TargetHours: 1, StartDate: start, EndDate: end}}
	sessions := []record.Session{
		session("Math", 30, start),
		session("Math", 30, end),
	}

	stats := Compute(sessions, goals, now)
	if stats.GoalsCompleted != 1 {
		t.Errorf("GoalsCompleted = %d, want 1", stats.GoalsCompleted)
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	goals := []record.Goal{
		{ID: "half", Title: "Half", Type: record.GoalWeekly, TargetHours: 4, StartDate: daysAgo(3), EndDate: now.Add(time.Hour)},
		{ID: "over", Title: "Over", Type: record.GoalDaily, TargetHours: 1, StartDate: daysAgo(3), EndDate: daysAgo(1)},
		{ID: "reversed", Title: "Reversed", Type: record.GoalMonthly, TargetHours: 1, StartDate: now, EndDate: daysAgo(3)},
	}
	sessions := []record.Session{
		session("Math", 120, daysAgo(2)),
	}

	progress := Progress(goals, sessions, now)
	if len(progress) != 3 {
		t.Fatalf("len(Progress()) = %d, want 3", len(progress))
	}

	half := progress[0]
	if half.GoalID != "half" || half.CompletedHours != 2 || half.Percent != 50 {
		t.Errorf("half = %+v, want 2h at 50%%", half)
	}
	if half.Completed || !half.Active {
		t.Errorf("half completed=%v active=%v, want false/true", half.Completed, half.Active)
	}

	over := progress[1]
	if over.Percent != 100 || !over.Completed || over.Active {
		t.Errorf("over = %+v, want capped 100%%, completed, inactive", over)
	}

	reversed := progress[2]
	if reversed.CompletedHours != 0 || reversed.Completed {
		t.Errorf("reversed = %+v, want no progress", reversed)
	}
}

func TestProgress_AgreesWithGoalsCompleted(t *testing.T) {
	t.Parallel()

	goals := []record.Goal{
		{ID: "a", TargetHours: 1, StartDate: daysAgo(5), EndDate: now},
		{ID: "b", TargetHours: 5, StartDate: daysAgo(5), EndDate: now},
	}
	sessions := []record.Session{session("Math", 90, daysAgo(1))}

	completed := 0
	for _, p := range Progress(goals, sessions, now) {
		if p.Completed {
			completed++
		}
	}

	if got := Compute(sessions, goals, now).GoalsCompleted; got != completed {
		t.Errorf("GoalsCompleted = %d, Progress completed = %d", got, completed)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		session("Math", 30, daysAgo(2)),
		session("Math", 30, daysAgo(0)),
	}
	first := sessions[0]

	Compute(sessions, nil, now)

	if sessions[0] != first {
		t.Error("Compute() reordered or modified its input")
	}
}
