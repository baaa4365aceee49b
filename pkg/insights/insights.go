package insights

import (
	"math"
	"sort"
	"time"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// subjectGroup accumulates the sessions of one subject.
type subjectGroup struct {
	subject string
	minutes int
	count   int
}

// Compute derives insights from sessions at now.
//
// Ties for the most studied subject and the most productive hour go to the
// key first encountered in input order.
func Compute(sessions []record.Session, now time.Time) Insights {
	result := Insights{
		StudyPatterns:    []TimePattern{},
		SubjectBreakdown: []SubjectStats{},
	}

	if len(sessions) == 0 {
		return result
	}

	loc := now.Location()

	// Groups are kept in first-seen order so ties resolve deterministically.
	groups := make([]*subjectGroup, 0)
	bySubject := make(map[string]*subjectGroup)

	var hourCounts [24]int
	hourOrder := make([]int, 0, 24)

	totalMinutes := 0

	for _, s := range sessions {
		totalMinutes += s.Duration

		g, ok := bySubject[s.Subject]
		if !ok {
			g = &subjectGroup{subject: s.Subject}
			bySubject[s.Subject] = g
			groups = append(groups, g)
		}
		g.minutes += s.Duration
		g.count++

		hour := s.Date.In(loc).Hour()
		if hourCounts[hour] == 0 {
			hourOrder = append(hourOrder, hour)
		}
		hourCounts[hour]++
	}

	best := groups[0]
	for _, g := range groups[1:] {
		if g.minutes > best.minutes {
			best = g
		}
	}
	result.MostStudiedSubject = best.subject

	bestHour := hourOrder[0]
	for _, h := range hourOrder[1:] {
		if hourCounts[h] > hourCounts[bestHour] {
			bestHour = h
		}
	}
	result.MostProductiveHour = bestHour

	result.AverageSessionLength = roundHalfUp(float64(totalMinutes) / float64(len(sessions)))

	for hour, count := range hourCounts {
		if count > 0 {
			result.StudyPatterns = append(result.StudyPatterns, TimePattern{
				Hour:         hour,
				SessionCount: count,
			})
		}
	}

	for _, g := range groups {
		result.SubjectBreakdown = append(result.SubjectBreakdown, SubjectStats{
			Subject:              g.subject,
			TotalHours:           float64(g.minutes) / 60,
			SessionCount:         g.count,
			AverageSessionLength: float64(g.minutes) / float64(g.count),
		})
	}

	sort.SliceStable(result.SubjectBreakdown, func(i, j int) bool {
		return result.SubjectBreakdown[i].TotalHours > result.SubjectBreakdown[j].TotalHours
	})

	return result
}

// roundHalfUp rounds non-negative x to the nearest integer, halves up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
