package insights

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/study-tracker/pkg/record"
)

var now = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 15, 0, 0, time.UTC)
}

func sess(id, subject string, minutes int, date time.Time) record.Session {
	return record.Session{ID: id, Subject: subject, Duration: minutes, Date: date}
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	got := Compute(nil, now)

	assert.Equal(t, "", got.MostStudiedSubject)
	assert.Equal(t, 0, got.MostProductiveHour)
	assert.Equal(t, 0, got.AverageSessionLength)
	assert.NotNil(t, got.StudyPatterns)
	assert.Empty(t, got.StudyPatterns)
	assert.NotNil(t, got.SubjectBreakdown)
	assert.Empty(t, got.SubjectBreakdown)
}

func TestCompute_MathAndArt(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		sess("1", "Math", 90, at(12, 9)),
		sess("2", "Art", 30, at(12, 14)),
	}

	got := Compute(sessions, now)

	assert.Equal(t, "Math", got.MostStudiedSubject)
	assert.Equal(t, 60, got.AverageSessionLength)

	require.Len(t, got.SubjectBreakdown, 2)
	assert.Equal(t, SubjectStats{Subject: "Math", TotalHours: 1.5, SessionCount: 1, AverageSessionLength: 90}, got.SubjectBreakdown[0])
	assert.Equal(t, SubjectStats{Subject: "Art", TotalHours: 0.5, SessionCount: 1, AverageSessionLength: 30}, got.SubjectBreakdown[1])
}

func TestCompute_MostProductiveHourCountsSessionsNotMinutes(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		sess("1", "Math", 240, at(10, 20)),
		sess("2", "Math", 15, at(11, 7)),
		sess("3", "Math", 15, at(12, 7)),
	}

	got := Compute(sessions, now)

	assert.Equal(t, 7, got.MostProductiveHour)
	assert.Equal(t, []TimePattern{
		{Hour: 7, SessionCount: 2},
		{Hour: 20, SessionCount: 1},
	}, got.StudyPatterns)
}

func TestCompute_AverageRoundsHalfUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		durations []int
		want      int
	}{
		{name: "exact", durations: []int{30, 90}, want: 60},
		{name: "half rounds up", durations: []int{1, 2}, want: 2},
		{name: "below half rounds down", durations: []int{10, 10, 11}, want: 10},
		{name: "above half rounds up", durations: []int{10, 11, 11}, want: 11},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sessions := make([]record.Session, 0, len(tt.durations))
			for i, d := range tt.durations {
				sessions = append(sessions, sess(string(rune('a'+i)), "Math", d, at(12, 9)))
			}
			assert.Equal(t, tt.want, Compute(sessions, now).AverageSessionLength)
		})
	}
}

func TestCompute_SubjectAverageIsUnrounded(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		sess("1", "Math", 10, at(12, 9)),
		sess("2", "Math", 11, at(12, 10)),
	}

	got := Compute(sessions, now)

	require.Len(t, got.SubjectBreakdown, 1)
	assert.InDelta(t, 10.5, got.SubjectBreakdown[0].AverageSessionLength, 1e-9)
	assert.Equal(t, 11, got.AverageSessionLength)
}

func TestCompute_TiesGoToFirstEncountered(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		sess("1", "Physics", 60, at(12, 18)),
		sess("2", "Biology", 60, at(12, 8)),
	}

	got := Compute(sessions, now)

	assert.Equal(t, "Physics", got.MostStudiedSubject)
	assert.Equal(t, 18, got.MostProductiveHour)
	require.Len(t, got.SubjectBreakdown, 2)
	assert.Equal(t, "Physics", got.SubjectBreakdown[0].Subject)
}

func TestCompute_HourUsesLocationOfNow(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-5", -5*60*60)
	sessions := []record.Session{sess("1", "Math", 30, at(12, 14))}

	got := Compute(sessions, now.In(loc))

	assert.Equal(t, 9, got.MostProductiveHour)
}

func TestCompute_IdenticalTimestampsCountedIndependently(t *testing.T) {
	t.Parallel()

	ts := at(12, 9)
	sessions := []record.Session{
		sess("1", "Math", 30, ts),
		sess("2", "Math", 30, ts),
	}

	got := Compute(sessions, now)

	assert.Equal(t, []TimePattern{{Hour: 9, SessionCount: 2}}, got.StudyPatterns)
	assert.Equal(t, 2, got.SubjectBreakdown[0].SessionCount)
}

func TestCompute_PermutationInvariant(t *testing.T) {
	t.Parallel()

	sessions := []record.Session{
		sess("1", "Math", 90, at(10, 9)),
		sess("2", "Art", 30, at(11, 14)),
		sess("3", "Math", 45, at(11, 9)),
		sess("4", "History", 20, at(12, 21)),
		sess("5", "Art", 25, at(12, 14)),
		sess("6", "Math", 15, at(13, 9)),
	}

	want := Compute(sessions, now)
	assert.Equal(t, want, Compute(sessions, now), "Compute() is not idempotent")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]record.Session(nil), sessions...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Compute(shuffled, now))
	}
}
