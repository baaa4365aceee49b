package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/notify"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/0xmhha/study-tracker/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Service is safe for concurrent use when its store is.
type Service struct {
	store       store.Store
	clock       Clock
	notifier    notify.Notifier
	recentLimit int
	logger      logger.Logger

	// createMu serialises CreateSession so goal completion is judged
	// against every earlier session.
	createMu sync.Mutex
}

// New creates a Service over st.
func New(st store.Store, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = SystemClock(time.Local)
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	return &Service{
		store:       st,
		clock:       opts.Clock,
		notifier:    opts.Notifier,
		recentLimit: opts.RecentLimit,
		logger:      opts.Logger,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// CreateSession validates and stores a session.
//
// Goals whose window contains the session and that become completed
// because of it are reported to the notifier. Notification failures are
// logged, not returned.
func (s *Service) CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error) {
	if err := in.Validate(); err != nil {
		return record.Session{}, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	sessions, goals, err := s.snapshot(ctx)
	if err != nil {
		return record.Session{}, err
	}

	affected := make([]record.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Contains(in.Date) {
			affected = append(affected, g)
		}
	}

	now := s.clock.Now()
	before := stats.Progress(affected, sessions, now)

	created, err := s.store.CreateSession(ctx, in)
	if err != nil {
		return record.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		"id", created.ID,
		"subject", created.Subject,
		"duration", created.Duration)

	if len(affected) > 0 {
		after := stats.Progress(affected, append(sessions, created), now)
		for i := range after {
			if after[i].Completed && !before[i].Completed {
				s.goalCompleted(ctx, affected[i], after[i].CompletedHours)
			}
		}
	}

	return created, nil
}

func (s *Service) goalCompleted(ctx context.Context, g record.Goal, hours float64) {
	s.logger.Debug("goal reached target", "goal_id", g.ID, "hours", hours)

	if err := s.notifier.GoalCompleted(ctx, g, hours); err != nil {
		s.logger.Warn("failed to notify goal completion",
			"goal_id", g.ID,
			"error", err)
	}
}

// CreateGoal validates and stores a goal.
func (s *Service) CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error) {
	if err := in.Validate(); err != nil {
		return record.Goal{}, err
	}

	created, err := s.store.CreateGoal(ctx, in)
	if err != nil {
		return record.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}

	s.logger.Info("goal created",
		"id", created.ID,
		"title", created.Title,
		"type", string(created.Type))

	return created, nil
}

// ListSessions returns every session, most recent first.
func (s *Service) ListSessions(ctx context.Context) ([]record.Session, error) {
	return s.store.ListSessions(ctx)
}

// RecentSessions returns the latest sessions. A limit <= 0 selects the
// configured default.
func (s *Service) RecentSessions(ctx context.Context, limit int) ([]record.Session, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	return s.store.RecentSessions(ctx, limit)
}

// GetSession returns one session or an error wrapping store.ErrNotFound.
func (s *Service) GetSession(ctx context.Context, id string) (record.Session, error) {
	return s.store.GetSession(ctx, id)
}

// ListGoals returns every goal, latest start first.
func (s *Service) ListGoals(ctx context.Context) ([]record.Goal, error) {
	return s.store.ListGoals(ctx)
}

// ActiveGoals returns goals that have not ended, soonest end first.
func (s *Service) ActiveGoals(ctx context.Context) ([]record.Goal, error) {
	return s.store.ActiveGoals(ctx, s.clock.Now())
}

// GetGoal returns one goal or an error wrapping store.ErrNotFound.
func (s *Service) GetGoal(ctx context.Context, id string) (record.Goal, error) {
	return s.store.GetGoal(ctx, id)
}

// Statistics computes StudyStats over the current store contents.
func (s *Service) Statistics(ctx context.Context) (stats.StudyStats, error) {
	sessions, goals, err := s.snapshot(ctx)
	if err != nil {
		return stats.StudyStats{}, err
	}
	return stats.Compute(sessions, goals, s.clock.Now()), nil
}

// Insights computes Insights over all sessions.
func (s *Service) Insights(ctx context.Context) (insights.Insights, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return insights.Insights{}, err
	}
	return insights.Compute(sessions, s.clock.Now()), nil
}

// Trends computes the daily, weekly and monthly series ending now.
func (s *Service) Trends(ctx context.Context) (insights.Trends, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return insights.Trends{}, err
	}
	return insights.ComputeTrends(sessions, s.clock.Now()), nil
}

// GoalProgress reports progress for every goal in store order.
func (s *Service) GoalProgress(ctx context.Context) ([]stats.GoalProgress, error) {
	sessions, goals, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Progress(goals, sessions, s.clock.Now()), nil
}

// Dashboard reads one snapshot and derives every view from it at a single
// instant. The engines run concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	sessions, goals, err := s.snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	now := s.clock.Now()
	d := Dashboard{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	run := func(compute func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			compute()
			return nil
		})
	}
	run(func() { d.Statistics = stats.Compute(sessions, goals, now) })
	run(func() { d.Insights = insights.Compute(sessions, now) })
	run(func() { d.GoalProgress = stats.Progress(goals, sessions, now) })
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("failed to build dashboard: %w", err)
	}

	recent := sessions
	if len(recent) > s.recentLimit {
		recent = recent[:s.recentLimit]
	}
	d.RecentSessions = append([]record.Session{}, recent...)

	d.ActiveGoals = make([]record.Goal, 0, len(goals))
	for _, goal := range goals {
		if !goal.EndDate.Before(now) {
			d.ActiveGoals = append(d.ActiveGoals, goal)
		}
	}
	sort.SliceStable(d.ActiveGoals, func(i, j int) bool {
		return d.ActiveGoals[i].EndDate.Before(d.ActiveGoals[j].EndDate)
	})

	return d, nil
}

// snapshot lists sessions and goals concurrently.
func (s *Service) snapshot(ctx context.Context) ([]record.Session, []record.Goal, error) {
	var (
		sessions []record.Session
		goals    []record.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.store.ListSessions(gctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = s.store.ListGoals(gctx)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sessions, goals, nil
}
