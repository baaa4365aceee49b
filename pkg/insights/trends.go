package insights

import (
	"time"

	"github.com/0xmhha/study-tracker/pkg/calendar"
	"github.com/0xmhha/study-tracker/pkg/record"
)

// ComputeTrends buckets sessions into the recent daily, weekly and monthly series
// ending at now. Sessions outside every bucket are ignored.
func ComputeTrends(sessions []record.Session, now time.Time) Trends {
	today := calendar.StartOfDay(now)
	week := calendar.StartOfWeek(now)
	month := calendar.StartOfMonth(now)

	return Trends{
		Daily: series(sessions, DailyPeriods, func(i int) time.Time {
			return today.AddDate(0, 0, i)
		}),
		Weekly: series(sessions, WeeklyPeriods, func(i int) time.Time {
			return week.AddDate(0, 0, 7*i)
		}),
		Monthly: series(sessions, MonthlyPeriods, func(i int) time.Time {
			return month.AddDate(0, i, 0)
		}),
	}
}

// series builds n consecutive periods ending with the one starting at
// boundary(0). boundary(i) must be increasing in i; period k covers
// [boundary(k-n+1), boundary(k-n+2)).
func series(sessions []record.Session, n int, boundary func(i int) time.Time) []PeriodStats {
	periods := make([]PeriodStats, n)
	for k := range periods {
		offset := k - n + 1
		periods[k] = PeriodStats{
			Start: boundary(offset),
			End:   boundary(offset + 1),
		}
	}

	minutes := make([]int, n)
	for _, s := range sessions {
		for k := range periods {
			if !s.Date.Before(periods[k].Start) && s.Date.Before(periods[k].End) {
				minutes[k] += s.Duration
				periods[k].Sessions++
				break
			}
		}
	}

	for k := range periods {
		periods[k].Hours = float64(minutes[k]) / 60
	}

	return periods
}
