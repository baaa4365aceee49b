package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	bolt, err := NewBolt(BoltConfig{DBPath: filepath.Join(dir, "study.db")}, logger.Noop())
	require.NoError(t, err)

	lite, err := NewSQLite(filepath.Join(dir, "study.sqlite"), logger.Noop())
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemory(),
		"bolt":   bolt,
		"sqlite": lite,
	}
	t.Cleanup(func() {
		for _, st := range stores {
			_ = st.Close()
		}
	})
	return stores
}

func sessionIn(subject string, minutes int, at time.Time) record.SessionInput {
	return record.SessionInput{Subject: subject, Duration: minutes, Date: at}
}

func goalIn(title string, start, end time.Time) record.GoalInput {
	return record.GoalInput{
		Type:        record.GoalWeekly,
		TargetHours: 5,
		Title:       title,
		StartDate:   start,
		EndDate:     end,
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := st.CreateSession(ctx, record.SessionInput{
				Subject:  "  Math ",
				Duration: 90,
				Date:     base,
				Notes:    "chapter 4",
			})
			require.NoError(t, err)
			assert.Len(t, created.ID, 36)
			assert.Equal(t, "Math", created.Subject)

			got, err := st.GetSession(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, "Math", got.Subject)
			assert.Equal(t, 90, got.Duration)
			assert.Equal(t, "chapter 4", got.Notes)
			assert.True(t, got.Date.Equal(base), "date %v, want %v", got.Date, base)
		})
	}
}

func TestStore_UniqueIDs(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seen := make(map[string]bool)
			for i := 0; i < 20; i++ {
				s, err := st.CreateSession(ctx, sessionIn("Art", 10, base))
				require.NoError(t, err)
				assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
				seen[s.ID] = true
			}
		})
	}
}

func TestStore_ListSessionsMostRecentFirst(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, offset := range []int{-2, 0, -5, -1} {
				_, err := st.CreateSession(ctx, sessionIn("Math", 30, base.AddDate(0, 0, offset)))
				require.NoError(t, err)
			}

			sessions, err := st.ListSessions(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 4)
			for i := 1; i < len(sessions); i++ {
				assert.False(t, sessions[i].Date.After(sessions[i-1].Date),
					"sessions out of order at %d", i)
			}
		})
	}
}

func TestStore_RecentSessions(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 7; i++ {
				_, err := st.CreateSession(ctx, sessionIn("Math", 30, base.Add(time.Duration(i)*time.Hour)))
				require.NoError(t, err)
			}

			recent, err := st.RecentSessions(ctx, 5)
			require.NoError(t, err)
			require.Len(t, recent, 5)
			assert.True(t, recent[0].Date.Equal(base.Add(6*time.Hour)))
			assert.True(t, recent[4].Date.Equal(base.Add(2*time.Hour)))

			all, err := st.RecentSessions(ctx, 50)
			require.NoError(t, err)
			assert.Len(t, all, 7)

			_, err = st.RecentSessions(ctx, 0)
			assert.ErrorIs(t, err, ErrInvalidLimit)
		})
	}
}

func TestStore_EmptyListsAreNotNil(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			sessions, err := st.ListSessions(ctx)
			require.NoError(t, err)
			assert.NotNil(t, sessions)
			assert.Empty(t, sessions)

			goals, err := st.ListGoals(ctx)
			require.NoError(t, err)
			assert.NotNil(t, goals)
			assert.Empty(t, goals)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := st.GetSession(ctx, "00000000-0000-0000-0000-000000000000")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = st.GetGoal(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_GoalRoundTripAndOrdering(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			older, err := st.CreateGoal(ctx, goalIn("Older", base.AddDate(0, 0, -10), base.AddDate(0, 0, -3)))
			require.NoError(t, err)
			newer, err := st.CreateGoal(ctx, goalIn("Newer", base, base.AddDate(0, 0, 7)))
			require.NoError(t, err)

			got, err := st.GetGoal(ctx, newer.ID)
			require.NoError(t, err)
			assert.Equal(t, "Newer", got.Title)
			assert.Equal(t, record.GoalWeekly, got.Type)
			assert.Equal(t, 5, got.TargetHours)
			assert.True(t, got.EndDate.Equal(base.AddDate(0, 0, 7)))

			goals, err := st.ListGoals(ctx)
			require.NoError(t, err)
			require.Len(t, goals, 2)
			assert.Equal(t, newer.ID, goals[0].ID)
			assert.Equal(t, older.ID, goals[1].ID)
		})
	}
}

func TestStore_ActiveGoals(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := st.CreateGoal(ctx, goalIn("Ended", base.AddDate(0, 0, -10), base.Add(-time.Minute)))
			require.NoError(t, err)
			late, err := st.CreateGoal(ctx, goalIn("Late", base, base.AddDate(0, 1, 0)))
			require.NoError(t, err)
			soon, err := st.CreateGoal(ctx, goalIn("Soon", base.AddDate(0, 0, -1), base.AddDate(0, 0, 1)))
			require.NoError(t, err)
			edge, err := st.CreateGoal(ctx, goalIn("Edge", base.AddDate(0, 0, -1), base))
			require.NoError(t, err)

			active, err := st.ActiveGoals(ctx, base)
			require.NoError(t, err)
			require.Len(t, active, 3)
			assert.Equal(t, edge.ID, active[0].ID)
			assert.Equal(t, soon.ID, active[1].ID)
			assert.Equal(t, late.ID, active[2].ID)
		})
	}
}

func TestStore_ConcurrentCreates(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := st.CreateSession(ctx, sessionIn("Math", 10+i, base))
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			sessions, err := st.ListSessions(ctx)
			require.NoError(t, err)
			assert.Len(t, sessions, 10)
		})
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().ListSessions(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBolt_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "study.db")
	ctx := context.Background()

	st, err := NewBolt(BoltConfig{DBPath: path}, logger.Noop())
	require.NoError(t, err)
	created, err := st.CreateSession(ctx, sessionIn("History", 45, base))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = NewBolt(BoltConfig{DBPath: path}, logger.Noop())
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "History", got.Subject)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.sqlite")
	ctx := context.Background()

	st, err := NewSQLite(path, logger.Noop())
	require.NoError(t, err)
	created, err := st.CreateGoal(ctx, goalIn("Finals", base, base.AddDate(0, 0, 7)))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = NewSQLite(path, logger.Noop())
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetGoal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Finals", got.Title)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr error
	}{
		{name: "memory", cfg: config.StorageConfig{Backend: config.BackendMemory}},
		{name: "bolt", cfg: config.StorageConfig{Backend: config.BackendBolt, DBPath: filepath.Join(dir, "a.db")}},
		{name: "sqlite", cfg: config.StorageConfig{Backend: config.BackendSQLite, DBPath: filepath.Join(dir, "a.sqlite")}},
		{name: "unknown", cfg: config.StorageConfig{Backend: "postgres"}, wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(tt.cfg, logger.Noop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, st.Close())
		})
	}
}
