// Package insights derives behavioural insights from study sessions.
//
// Like the statistics engine, every function here is a pure computation over
// a snapshot of sessions. Hour of day and calendar periods are evaluated in
// the location of the now argument.
//
// Example usage:
//
//	in := insights.Compute(sessions, time.Now())
//	fmt.Printf("Favourite subject: %s\n", in.MostStudiedSubject)
//	for _, p := range in.StudyPatterns {
//	    fmt.Printf("%02d:00 %d sessions\n", p.Hour, p.SessionCount)
//	}
package insights

import "time"

// Insights contains behavioural statistics over all sessions.
type Insights struct {
	// MostStudiedSubject is the subject with the largest summed duration.
	// Empty when there are no sessions.
	MostStudiedSubject string `json:"mostStudiedSubject"`

	// MostProductiveHour is the hour of day (0-23) in which the most
	// sessions started.
	MostProductiveHour int `json:"mostProductiveHour"`

	// AverageSessionLength is the mean duration in whole minutes,
	// rounded half up.
	AverageSessionLength int `json:"averageSessionLength"`

	// StudyPatterns has one entry per hour with sessions, ascending by hour.
	StudyPatterns []TimePattern `json:"studyPatterns"`

	// SubjectBreakdown has one entry per subject, descending by hours.
	SubjectBreakdown []SubjectStats `json:"subjectBreakdown"`
}

// SubjectStats summarises the sessions of one subject.
type SubjectStats struct {
	Subject      string  `json:"subject"`
	TotalHours   float64 `json:"totalHours"`
	SessionCount int     `json:"sessionCount"`

	// AverageSessionLength is in minutes and deliberately unrounded.
	AverageSessionLength float64 `json:"averageSessionLength"`
}

// TimePattern counts the sessions starting in one hour of the day.
type TimePattern struct {
	Hour         int `json:"hour"`
	SessionCount int `json:"sessionCount"`
}

// Trends holds study volume series over recent days, weeks and months.
type Trends struct {
	// Daily covers the last 7 calendar days ending today.
	Daily []PeriodStats `json:"daily"`

	// Weekly covers the last 4 Monday-start weeks ending with this week.
	Weekly []PeriodStats `json:"weekly"`

	// Monthly covers the last 6 calendar months ending with this month.
	Monthly []PeriodStats `json:"monthly"`
}

// PeriodStats is the study volume of the half-open period [Start, End).
type PeriodStats struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Hours    float64   `json:"hours"`
	Sessions int       `json:"sessions"`
}

// Trend window sizes.
const (
	DailyPeriods   = 7
	WeeklyPeriods  = 4
	MonthlyPeriods = 6
)
