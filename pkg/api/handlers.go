package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/store"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds create request bodies.
const maxBodyBytes = 1 << 20

func (h *handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.internalError(w, "Failed to fetch sessions", err)
		return
	}
	respondJSON(w, sessions, http.StatusOK)
}

func (h *handlers) recentSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	sessions, err := h.svc.RecentSessions(r.Context(), limit)
	if err != nil {
		h.internalError(w, "Failed to fetch recent sessions", err)
		return
	}
	respondJSON(w, sessions, http.StatusOK)
}

func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to fetch session", err)
		return
	}
	respondJSON(w, session, http.StatusOK)
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	in, err := req.input(h.svc.Now().Location())
	if h.validationFailed(w, err) {
		return
	}

	session, err := h.svc.CreateSession(r.Context(), in)
	if h.validationFailed(w, err) {
		return
	}
	if err != nil {
		h.internalError(w, "Failed to create session", err)
		return
	}
	respondJSON(w, session, http.StatusCreated)
}

func (h *handlers) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ListGoals(r.Context())
	if err != nil {
		h.internalError(w, "Failed to fetch goals", err)
		return
	}
	respondJSON(w, goals, http.StatusOK)
}

func (h *handlers) activeGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ActiveGoals(r.Context())
	if err != nil {
		h.internalError(w, "Failed to fetch active goals", err)
		return
	}
	respondJSON(w, goals, http.StatusOK)
}

func (h *handlers) goalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.svc.GoalProgress(r.Context())
	if err != nil {
		h.internalError(w, "Failed to fetch goal progress", err)
		return
	}
	respondJSON(w, progress, http.StatusOK)
}

func (h *handlers) getGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.svc.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "Goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to fetch goal", err)
		return
	}
	respondJSON(w, goal, http.StatusOK)
}

func (h *handlers) createGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decode(w, r, &req) {
		return
	}
	in, err := req.input(h.svc.Now().Location())
	if h.validationFailed(w, err) {
		return
	}

	goal, err := h.svc.CreateGoal(r.Context(), in)
	if h.validationFailed(w, err) {
		return
	}
	if err != nil {
		h.internalError(w, "Failed to create goal", err)
		return
	}
	respondJSON(w, goal, http.StatusCreated)
}

func (h *handlers) statistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Statistics(r.Context())
	if err != nil {
		h.internalError(w, "Failed to calculate statistics", err)
		return
	}
	respondJSON(w, s, http.StatusOK)
}

func (h *handlers) insights(w http.ResponseWriter, r *http.Request) {
	in, err := h.svc.Insights(r.Context())
	if err != nil {
		h.internalError(w, "Failed to calculate insights", err)
		return
	}
	respondJSON(w, in, http.StatusOK)
}

func (h *handlers) trends(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Trends(r.Context())
	if err != nil {
		h.internalError(w, "Failed to calculate trends", err)
		return
	}
	respondJSON(w, t, http.StatusOK)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.internalError(w, "Failed to build dashboard", err)
		return
	}
	respondJSON(w, d, http.StatusOK)
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// validationFailed answers 400 with the field list when err is a
// validation error.
func (h *handlers) validationFailed(w http.ResponseWriter, err error) bool {
	var verr *record.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	respondValidation(w, verr)
	return true
}

// internalError logs err and answers 500 with a generic message.
func (h *handlers) internalError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "error", err)
	respondError(w, message, http.StatusInternalServerError)
}
