// Package api exposes the tracker over HTTP as JSON.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/sessions
//	POST /api/sessions
//	GET  /api/sessions/recent?limit=N
//	GET  /api/sessions/{id}
//	GET  /api/goals
//	POST /api/goals
//	GET  /api/goals/active
//	GET  /api/goals/progress
//	GET  /api/goals/{id}
//	GET  /api/statistics
//	GET  /api/insights
//	GET  /api/trends
//	GET  /api/dashboard
//
// Errors are returned as {"error": "..."}; validation failures also carry
// a "fields" list.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/insights"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/0xmhha/study-tracker/pkg/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the subset of the tracker the handlers use.
type Service interface {
	Now() time.Time
	CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error)
	CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error)
	ListSessions(ctx context.Context) ([]record.Session, error)
	RecentSessions(ctx context.Context, limit int) ([]record.Session, error)
	GetSession(ctx context.Context, id string) (record.Session, error)
	ListGoals(ctx context.Context) ([]record.Goal, error)
	ActiveGoals(ctx context.Context) ([]record.Goal, error)
	GetGoal(ctx context.Context, id string) (record.Goal, error)
	Statistics(ctx context.Context) (stats.StudyStats, error)
	Insights(ctx context.Context) (insights.Insights, error)
	Trends(ctx context.Context) (insights.Trends, error)
	GoalProgress(ctx context.Context) ([]stats.GoalProgress, error)
	Dashboard(ctx context.Context) (tracker.Dashboard, error)
}

type handlers struct {
	svc    Service
	logger logger.Logger
}

// NewRouter builds the HTTP handler for svc.
func NewRouter(svc Service, log logger.Logger) http.Handler {
	h := &handlers{svc: svc, logger: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.listSessions)
			r.Post("/", h.createSession)
			r.Get("/recent", h.recentSessions)
			r.Get("/{id}", h.getSession)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", h.listGoals)
			r.Post("/", h.createGoal)
			r.Get("/active", h.activeGoals)
			r.Get("/progress", h.goalProgress)
			r.Get("/{id}", h.getGoal)
		})

		r.Get("/statistics", h.statistics)
		r.Get("/insights", h.insights)
		r.Get("/trends", h.trends)
		r.Get("/dashboard", h.dashboard)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          logger.Logger
}

// NewServer creates a server for svc using cfg's address and timeouts.
func NewServer(cfg config.ServerConfig, svc Service, log logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(svc, log),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
