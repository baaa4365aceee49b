// Package record defines the study session and goal records shared by the
// store, the statistics engines and the transport layers.
//
// Records are created once and never mutated. Create inputs carry the
// user-supplied fields and are validated before they reach a store:
//
//	in := record.SessionInput{
//	    Subject:  "Math",
//	    Duration: 90,
//	    Date:     time.Now(),
//	}
//	if err := in.Validate(); err != nil {
//	    var verr *record.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Println(verr.Fields)
//	    }
//	}
package record

import (
	"strings"
	"time"
)

// GoalType classifies a goal. It does not affect completion math.
type GoalType string

const (
	// GoalDaily is a goal scoped to a single day.
	GoalDaily GoalType = "daily"

	// GoalWeekly is a goal scoped to a week.
	GoalWeekly GoalType = "weekly"

	// GoalMonthly is a goal scoped to a month.
	GoalMonthly GoalType = "monthly"
)

// GoalTypes lists every recognised goal type.
var GoalTypes = []GoalType{GoalDaily, GoalWeekly, GoalMonthly}

// Valid reports whether t is one of the recognised goal types.
func (t GoalType) Valid() bool {
	switch t {
	case GoalDaily, GoalWeekly, GoalMonthly:
		return true
	default:
		return false
	}
}

// Session is one logged study event.
//
// Invariant: Duration >= 1 (minutes).
// Invariant: Subject is not empty.
type Session struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Duration int       `json:"duration"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
}

// Hours returns the session duration in hours.
func (s Session) Hours() float64 {
	return float64(s.Duration) / 60
}

// Goal is a target number of study hours within a date window.
//
// EndDate >= StartDate is expected but not enforced; a reversed window
// matches no sessions.
type Goal struct {
	ID          string    `json:"id"`
	Type        GoalType  `json:"type"`
	TargetHours int       `json:"targetHours"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// Contains reports whether t lies within the goal's closed window.
func (g Goal) Contains(t time.Time) bool {
	return !t.Before(g.StartDate) && !t.After(g.EndDate)
}

// SessionInput holds the fields supplied when logging a session.
type SessionInput struct {
	Subject  string    `json:"subject"`
	Duration int       `json:"duration"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
}

// Validate checks the session input against the create contract.
//
// Returns a *ValidationError listing every failing field, or nil.
func (in SessionInput) Validate() error {
	var fields []FieldError

	if strings.TrimSpace(in.Subject) == "" {
		fields = append(fields, FieldError{Field: "subject", Message: "Subject is required"})
	}
	if in.Duration < 1 {
		fields = append(fields, FieldError{Field: "duration", Message: "Duration must be at least 1 minute"})
	}
	if in.Date.IsZero() {
		fields = append(fields, FieldError{Field: "date", Message: "Date is required"})
	}

	return newValidationError(fields)
}

// Session builds a session record with the given ID.
func (in SessionInput) Session(id string) Session {
	return Session{
		ID:       id,
		Subject:  strings.TrimSpace(in.Subject),
		Duration: in.Duration,
		Date:     in.Date,
		Notes:    in.Notes,
	}
}

// GoalInput holds the fields supplied when creating a goal.
type GoalInput struct {
	Type        GoalType  `json:"type"`
	TargetHours int       `json:"targetHours"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// Validate checks the goal input against the create contract.
//
// Returns a *ValidationError listing every failing field, or nil.
func (in GoalInput) Validate() error {
	var fields []FieldError

	if !in.Type.Valid() {
		fields = append(fields, FieldError{Field: "type", Message: "Type must be one of daily, weekly, monthly"})
	}
	if in.TargetHours < 1 {
		fields = append(fields, FieldError{Field: "targetHours", Message: "Target must be at least 1 hour"})
	}
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "Title is required"})
	}
	if in.StartDate.IsZero() {
		fields = append(fields, FieldError{Field: "startDate", Message: "Start date is required"})
	}
	if in.EndDate.IsZero() {
		fields = append(fields, FieldError{Field: "endDate", Message: "End date is required"})
	}

	return newValidationError(fields)
}

// Goal builds a goal record with the given ID.
func (in GoalInput) Goal(id string) Goal {
	return Goal{
		ID:          id,
		Type:        in.Type,
		TargetHours: in.TargetHours,
		Title:       strings.TrimSpace(in.Title),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
}
