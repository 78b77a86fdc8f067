package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/RustedSwords/A-Star-Path-Visualization/metrics"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/engine"
	"github.com/RustedSwords/A-Star-Path-Visualization/search/service"
	"github.com/RustedSwords/A-Star-Path-Visualization/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.SearchService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(searchService service.SearchService, hub *websocket.Hub) *Server {
	s := &Server{
		service: searchService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API routes with clean REST patterns
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(countRequests)

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Grid editing
	api.HandleFunc("/sessions/{id}/state", s.handleGetGridState).Methods("GET")
	api.HandleFunc("/sessions/{id}/start", s.handleSetStart).Methods("POST")
	api.HandleFunc("/sessions/{id}/end", s.handleSetEnd).Methods("POST")
	api.HandleFunc("/sessions/{id}/barrier", s.handleSetBarrier).Methods("POST")
	api.HandleFunc("/sessions/{id}/clear-cell", s.handleClearCell).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Search runs
	api.HandleFunc("/sessions/{id}/run", s.handleRun).Methods("POST")
	api.HandleFunc("/sessions/{id}/step", s.handleStep).Methods("POST")

	// Layouts
	api.HandleFunc("/layouts", s.handleListLayouts).Methods("GET")
	api.HandleFunc("/layouts/{name}", s.handleGetLayout).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Operational endpoints
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Static files (frontend)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// countRequests increments the per-route request counter. Routes are
// labeled by path template so session IDs do not blow up cardinality.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.APIRequests.WithLabelValues(route, r.Method).Inc()
		next.ServeHTTP(w, r)
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps service errors to HTTP status codes. Everything the
// client can fix is a 400, missing things are 404, the rest is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRunRequest),
		errors.Is(err, service.ErrNoActiveRun),
		errors.Is(err, service.ErrOutOfBounds),
		errors.Is(err, service.ErrCellIsStart),
		errors.Is(err, service.ErrCellIsEnd):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// positionRequest is the body shape for all cell-addressed operations.
type positionRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LayoutID string `json:"layout_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := s.service.CreateSession(r.Context(), req.LayoutID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Grid Editing Handlers

func (s *Server) handleGetGridState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGridState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetStart(w http.ResponseWriter, r *http.Request) {
	s.handleCellEdit(w, r, "start", func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
		return s.service.SetStart(ctx, sessionID, pos)
	})
}

func (s *Server) handleSetEnd(w http.ResponseWriter, r *http.Request) {
	s.handleCellEdit(w, r, "end", func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
		return s.service.SetEnd(ctx, sessionID, pos)
	})
}

func (s *Server) handleClearCell(w http.ResponseWriter, r *http.Request) {
	s.handleCellEdit(w, r, "clear", func(ctx context.Context, sessionID string, pos engine.Position) (*service.GridState, error) {
		return s.service.ClearCell(ctx, sessionID, pos)
	})
}

// handleCellEdit decodes a cell position, applies the edit, and broadcasts
// the resulting state.
func (s *Server) handleCellEdit(w http.ResponseWriter, r *http.Request, op string, edit func(context.Context, string, engine.Position) (*service.GridState, error)) {
	sessionID := mux.Vars(r)["id"]

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := edit(r.Context(), sessionID, engine.Position{Row: req.Row, Col: req.Col})
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastState(sessionID, state)
	}

	fmt.Printf("[EDIT] session=%s op=%s cell=(%d,%d)\n", sessionID, op, req.Row, req.Col)

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetBarrier(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Row     int   `json:"row"`
		Col     int   `json:"col"`
		Barrier *bool `json:"barrier,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Omitting "barrier" places a wall; sending false removes one.
	barrier := true
	if req.Barrier != nil {
		barrier = *req.Barrier
	}

	state, err := s.service.SetBarrier(r.Context(), sessionID, engine.Position{Row: req.Row, Col: req.Col}, barrier)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastState(sessionID, state)
	}

	fmt.Printf("[EDIT] session=%s op=barrier cell=(%d,%d) barrier=%t\n", sessionID, req.Row, req.Col, barrier)

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ResetGrid(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastState(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Grid reset successfully",
		"state":   state,
	})
}

// Search Run Handlers

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	// Optional body: a positive max_events bounds the drain.
	var req struct {
		MaxEvents int `json:"max_events,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.service.RunToCompletion(r.Context(), sessionID, req.MaxEvents)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvents(sessionID, result.RunID, result.Events)
		s.hub.BroadcastState(sessionID, result.State)
	}

	// Compact server log for observability
	outcome := "NO_PATH"
	if result.Found {
		outcome = "FOUND"
	}
	fmt.Printf("[RUN] session=%s run=%s outcome=%s path=%d closed=%d opened=%d\n",
		sessionID, result.RunID, outcome, result.PathLength, result.Closed, result.Opened)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Start  bool `json:"start,omitempty"`
		Events int  `json:"events,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Start {
		if _, err := s.service.StartRun(r.Context(), sessionID); err != nil {
			respondError(w, statusForError(err), err.Error())
			return
		}
	}

	result, err := s.service.StepRun(r.Context(), sessionID, req.Events)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvents(sessionID, result.RunID, result.Events)
	}

	fmt.Printf("[STEP] session=%s run=%s events=%d done=%t\n",
		sessionID, result.RunID, len(result.Events), result.Done)

	respondJSON(w, http.StatusOK, result)
}

// Layout Handlers

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.service.ListLayouts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, layouts)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	layout, err := s.service.GetLayout(r.Context(), name)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, layout)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(context.Background(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
