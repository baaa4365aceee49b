package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// memory implements Store with in-process slices.
type memory struct {
	mu       sync.RWMutex
	sessions []record.Session
	goals    []record.Goal
}

// NewMemory creates an empty in-memory store. Contents are lost on Close.
func NewMemory() Store {
	return &memory{}
}

// ListSessions implements Store.ListSessions.
func (m *memory) ListSessions(ctx context.Context) ([]record.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	sessions := append([]record.Session(nil), m.sessions...)
	m.mu.RUnlock()

	if sessions == nil {
		sessions = []record.Session{}
	}
	sortSessions(sessions)
	return sessions, nil
}

// RecentSessions implements Store.RecentSessions.
func (m *memory) RecentSessions(ctx context.Context, limit int) ([]record.Session, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	sessions, err := m.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return limitSessions(sessions, limit)
}

// GetSession implements Store.GetSession.
func (m *memory) GetSession(ctx context.Context, id string) (record.Session, error) {
	if err := ctx.Err(); err != nil {
		return record.Session{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return record.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
}

// CreateSession implements Store.CreateSession.
func (m *memory) CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error) {
	if err := ctx.Err(); err != nil {
		return record.Session{}, err
	}

	s := in.Session(newID())

	m.mu.Lock()
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()

	return s, nil
}

// ListGoals implements Store.ListGoals.
func (m *memory) ListGoals(ctx context.Context) ([]record.Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	goals := append([]record.Goal(nil), m.goals...)
	m.mu.RUnlock()

	if goals == nil {
		goals = []record.Goal{}
	}
	sortGoals(goals)
	return goals, nil
}

// ActiveGoals implements Store.ActiveGoals.
func (m *memory) ActiveGoals(ctx context.Context, now time.Time) ([]record.Goal, error) {
	goals, err := m.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	return activeGoals(goals, now), nil
}

// GetGoal implements Store.GetGoal.
func (m *memory) GetGoal(ctx context.Context, id string) (record.Goal, error) {
	if err := ctx.Err(); err != nil {
		return record.Goal{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return record.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
}

// CreateGoal implements Store.CreateGoal.
func (m *memory) CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error) {
	if err := ctx.Err(); err != nil {
		return record.Goal{}, err
	}

	g := in.Goal(newID())

	m.mu.Lock()
	m.goals = append(m.goals, g)
	m.mu.Unlock()

	return g, nil
}

// Close implements Store.Close.
func (m *memory) Close() error {
	m.mu.Lock()
	m.sessions = nil
	m.goals = nil
	m.mu.Unlock()
	return nil
}
