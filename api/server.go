// Package api exposes the local debugging bridge for the stacking
// simulation: JSON reads of game and stability state, a few control
// verbs, and training-run history for the dashboards.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmarfinetz/3dTetris/internal/httputil"
	"github.com/mmarfinetz/3dTetris/internal/sim"
	"github.com/mmarfinetz/3dTetris/internal/store"
	"github.com/mmarfinetz/3dTetris/internal/version"
)

type Server struct {
	runner *sim.Runner
	db     *store.Store
}

// NewServer creates the API server. The store may be nil when running
// without persistence; training endpoints then return 503.
func NewServer(runner *sim.Runner, db *store.Store) *Server {
	return &Server{
		runner: runner,
		db:     db,
	}
}

// ServeMux returns the mux with all API routes registered. The caller
// mounts static files and debug charts on top.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/stability", s.handleStability)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/pause", s.handlePause)
	mux.HandleFunc("/api/drop", s.handleDrop)
	mux.HandleFunc("/api/training/runs", s.handleTrainingRuns)
	mux.HandleFunc("/api/training/runs/", s.handleTrainingRunDetail)
	return mux
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	snap := s.runner.Snapshot()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"version":  version.Version,
		"paused":   s.runner.Paused(),
		"snapshot": snap,
	})
}

func (s *Server) handleStability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	info := s.runner.Latest()
	if info.Tick.IsZero() {
		httputil.WriteJSONError(w, http.StatusNotFound, "no stability analysis yet")
		return
	}
	httputil.WriteJSONOK(w, info)
}

// handleHistory returns recent stability samples, oldest first.
// Query params:
//
//	limit (optional, default all buffered samples)
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	history := s.runner.History()
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			httputil.WriteJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		if limit < len(history) {
			history = history[len(history)-limit:]
		}
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"count":   len(history),
		"samples": history,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	s.runner.Reset()
	httputil.WriteJSONOK(w, map[string]string{"status": "reset"})
}

// handlePause sets or toggles the pause state. With no form value the
// state toggles; with paused=true/false it is set explicitly.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	paused := !s.runner.Paused()
	if v := r.FormValue("paused"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSONError(w, http.StatusBadRequest, "invalid 'paused' parameter")
			return
		}
		paused = parsed
	}
	s.runner.SetPaused(paused)
	httputil.WriteJSONOK(w, map[string]bool{"paused": paused})
}

// handleDrop nudges the falling piece laterally. Form values dx and dz
// are clamped by the game's nudge speed.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	dx, err := parseFormFloat(r, "dx")
	if err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, "invalid 'dx' parameter")
		return
	}
	dz, err := parseFormFloat(r, "dz")
	if err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, "invalid 'dz' parameter")
		return
	}
	s.runner.Nudge(dx, dz)
	httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
}

func parseFormFloat(r *http.Request, key string) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// handleTrainingRuns lists recent GA training runs, newest first.
// Query params:
//
//	limit (optional, default 20, max 100)
func (s *Server) handleTrainingRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "training DB not configured")
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	runs, err := s.db.TrainingRuns(limit)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list training runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// handleTrainingRunDetail serves /api/training/runs/{id} and
// /api/training/runs/{id}/generations.
func (s *Server) handleTrainingRunDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "training DB not configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/training/runs/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		httputil.WriteJSONError(w, http.StatusBadRequest, "missing run id")
		return
	}

	switch sub {
	case "":
		run, err := s.db.TrainingRunByID(id)
		if err != nil {
			httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get run: %v", err))
			return
		}
		if run == nil {
			httputil.WriteJSONError(w, http.StatusNotFound, "training run not found")
			return
		}
		httputil.WriteJSONOK(w, run)
	case "generations":
		gens, err := s.db.Generations(id)
		if err != nil {
			httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get generations: %v", err))
			return
		}
		httputil.WriteJSONOK(w, map[string]interface{}{
			"run_id":      id,
			"count":       len(gens),
			"generations": gens,
		})
	default:
		httputil.WriteJSONError(w, http.StatusNotFound, "unknown training resource")
	}
}
