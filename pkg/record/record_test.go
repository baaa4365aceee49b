package record

import (
	"errors"
	"testing"
	"time"
)

func fields(t *testing.T, err error) []string {
	t.Helper()

	if err == nil {
		return nil
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %v is not a *ValidationError", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("errors.Is(%v, ErrValidation) = false", err)
	}

	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSessionInputValidate(t *testing.T) {
	date := time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   SessionInput
		want []string
	}{
		{name: "valid", in: SessionInput{Subject: "Math", Duration: 1, Date: date}},
		{name: "blank subject", in: SessionInput{Subject: "  ", Duration: 30, Date: date}, want: []string{"subject"}},
		{name: "zero duration", in: SessionInput{Subject: "Math", Date: date}, want: []string{"duration"}},
		{name: "everything missing", in: SessionInput{}, want: []string{"subject", "duration", "date"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := fields(t, tt.in.Validate()); !equal(got, tt.want) {
				t.Errorf("Validate() fields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalInputValidate(t *testing.T) {
	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	tests := []struct {
		name string
		in   GoalInput
		want []string
	}{
		{name: "valid", in: GoalInput{Type: GoalWeekly, TargetHours: 10, Title: "Finals", StartDate: start, EndDate: end}},
		{name: "reversed window is accepted", in: GoalInput{Type: GoalDaily, TargetHours: 1, Title: "x", StartDate: end, EndDate: start}},
		{name: "bad type", in: GoalInput{Type: "yearly", TargetHours: 1, Title: "x", StartDate: start, EndDate: end}, want: []string{"type"}},
		{name: "everything missing", in: GoalInput{}, want: []string{"type", "targetHours", "title", "startDate", "endDate"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := fields(t, tt.in.Validate()); !equal(got, tt.want) {
				t.Errorf("Validate() fields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := SessionInput{Subject: "Math"}.Validate()

	want := `Validation error: Duration must be at least 1 minute at "duration"; Date is required at "date"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestBuildersTrimText(t *testing.T) {
	s := SessionInput{Subject: " Math ", Duration: 90}.Session("s1")
	if s.ID != "s1" || s.Subject != "Math" {
		t.Errorf("Session() = %+v", s)
	}
	if s.Hours() != 1.5 {
		t.Errorf("Hours() = %v, want 1.5", s.Hours())
	}

	g := GoalInput{Title: " Finals ", Type: GoalDaily}.Goal("g1")
	if g.ID != "g1" || g.Title != "Finals" {
		t.Errorf("Goal() = %+v", g)
	}
}

func TestGoalContains(t *testing.T) {
	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	g := Goal{StartDate: start, EndDate: start.AddDate(0, 0, 6)}

	if !g.Contains(start) || !g.Contains(g.EndDate) {
		t.Error("window bounds should be inclusive")
	}
	if g.Contains(g.EndDate.Add(time.Nanosecond)) {
		t.Error("instant after the window should not count")
	}

	reversed := Goal{StartDate: g.EndDate, EndDate: start}
	if reversed.Contains(start.AddDate(0, 0, 3)) {
		t.Error("reversed window should contain nothing")
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)
	day := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		typ       GoalType
		wantStart time.Time
		wantEnd   time.Time
	}{
		{GoalDaily, day, day.AddDate(0, 0, 1).Add(-time.Nanosecond)},
		{GoalWeekly, day, day.AddDate(0, 0, 7)},
		{GoalMonthly, day, day.AddDate(0, 1, 0)},
		{"unknown", day, day.AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.typ), func(t *testing.T) {
			start, end := tt.typ.DefaultWindow(now)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("DefaultWindow() = %v..%v, want %v..%v", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
