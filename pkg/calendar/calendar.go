// Package calendar provides the date and interval helpers shared by the
// statistics engines.
//
// All helpers operate in the location of the time value they receive, so a
// caller controls "local" day boundaries by choosing the location of now.
// Weeks start on Monday.
package calendar

import "time"

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	// time.Weekday has Sunday == 0; shift so Monday == 0.
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// EndOfWeek returns the last instant of the Sunday ending t's week.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// StartOfMonth returns 00:00 on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// Within reports whether t lies in the closed interval [start, end].
//
// A reversed interval (end before start) contains nothing.
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Day identifies a calendar day independent of time of day and location
// offsets. Consecutive days differ by exactly 1.
type Day int64

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	// Civil date arithmetic in UTC avoids DST making a day 23 or 25 hours.
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DaysBetween returns the number of calendar days from b to a.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(a) - DayOf(b))
}
