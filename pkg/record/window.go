package record

import (
	"time"

	"github.com/0xmhha/study-tracker/pkg/calendar"
)

// DefaultWindow returns the evaluation window a goal of this type gets
// when the caller does not pick dates, starting at the beginning of now's
// day.
//
// Unknown types fall back to the weekly window.
func (t GoalType) DefaultWindow(now time.Time) (start, end time.Time) {
	start = calendar.StartOfDay(now)

	switch t {
	case GoalDaily:
		return start, calendar.EndOfDay(now)
	case GoalMonthly:
		return start, start.AddDate(0, 1, 0)
	default:
		return start, start.AddDate(0, 0, 7)
	}
}
