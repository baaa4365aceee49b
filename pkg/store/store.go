// Package store persists study sessions and goals.
//
// Three backends implement Store: an in-memory store for tests and
// ephemeral runs, a BoltDB file, and SQLite through gorm. All of them
// return the same orderings so callers never depend on the backend:
//
//	st, err := store.Open(cfg.Storage, log)
//	if err != nil {
//	    log.Error("failed to open store", "error", err)
//	    return err
//	}
//	defer st.Close()
//
//	s, err := st.CreateSession(ctx, record.SessionInput{
//	    Subject:  "Math",
//	    Duration: 60,
//	    Date:     time.Now(),
//	})
//
// Stores do not validate inputs; callers validate before creating.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/google/uuid"
)

// Store provides session and goal persistence.
type Store interface {
	// ListSessions returns every session, most recent date first.
	ListSessions(ctx context.Context) ([]record.Session, error)

	// RecentSessions returns at most limit sessions, most recent date first.
	//
	// Returns ErrInvalidLimit if limit <= 0.
	RecentSessions(ctx context.Context, limit int) ([]record.Session, error)

	// GetSession returns the session with the given ID.
	//
	// Returns ErrNotFound if no such session exists.
	GetSession(ctx context.Context, id string) (record.Session, error)

	// CreateSession stores a new session with a freshly assigned ID.
	CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error)

	// ListGoals returns every goal, latest start date first.
	ListGoals(ctx context.Context) ([]record.Goal, error)

	// ActiveGoals returns goals whose window has not ended at now,
	// soonest end date first.
	ActiveGoals(ctx context.Context, now time.Time) ([]record.Goal, error)

	// GetGoal returns the goal with the given ID.
	//
	// Returns ErrNotFound if no such goal exists.
	GetGoal(ctx context.Context, id string) (record.Goal, error)

	// CreateGoal stores a new goal with a freshly assigned ID.
	CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error)

	// Close releases the backend's resources.
	Close() error
}

// Open creates the store selected by cfg.Backend.
func Open(cfg config.StorageConfig, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendBolt:
		return NewBolt(BoltConfig{DBPath: cfg.DBPath, Timeout: cfg.Timeout}, log)
	case config.BackendSQLite:
		return NewSQLite(cfg.DBPath, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// newID returns a new record identifier.
func newID() string {
	return uuid.NewString()
}

// sortSessions orders sessions by date, most recent first. Equal dates
// keep their relative order.
func sortSessions(sessions []record.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
}

// sortGoals orders goals by start date, latest first.
func sortGoals(goals []record.Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].StartDate.After(goals[j].StartDate)
	})
}

// activeGoals filters goals with EndDate >= now and orders them by end
// date, soonest first.
func activeGoals(goals []record.Goal, now time.Time) []record.Goal {
	active := make([]record.Goal, 0, len(goals))
	for _, g := range goals {
		if !g.EndDate.Before(now) {
			active = append(active, g)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].EndDate.Before(active[j].EndDate)
	})
	return active
}

// limitSessions truncates sorted sessions to limit entries.
func limitSessions(sessions []record.Session, limit int) ([]record.Session, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// prepareFile expands ~ and creates the parent directory of a database file.
func prepareFile(path string) (string, error) {
	path = expandHome(path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
