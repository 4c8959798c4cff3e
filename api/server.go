package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/pong-arena/game/service"
	"github.com/wricardo/pong-arena/validate"
)

// Server represents the REST API server
type Server struct {
	service        service.GameService
	router         *mux.Router
	logger         *zap.Logger
	metrics        *Metrics
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowedOrigins sets the CORS origins. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMetrics shares a metrics instance with the caller.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, opts ...Option) *Server {
	s := &Server{
		service:        gameService,
		router:         mux.NewRouter(),
		logger:         zap.NewNop(),
		metrics:        NewMetrics(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Game operations
	s.router.HandleFunc("/start", s.handleStart).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/move", s.handleMove).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/state", s.handleState).Methods(http.MethodGet, http.MethodOptions)

	// Leaderboard
	s.router.HandleFunc("/save_score", s.handleSaveScore).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/high_scores", s.handleHighScores).Methods(http.MethodGet, http.MethodOptions)

	// Session management
	s.router.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	// Operations
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	s.router.Use(s.observe)
	s.router.Use(mux.CORSMethodMiddleware(s.router))
	s.router.Use(s.cors)
}

// Mount registers an extra POST endpoint, such as the MCP handler, behind
// the same middleware as the API routes.
func (s *Server) Mount(path string, handler http.Handler) {
	s.router.Handle(path, handler).Methods(http.MethodPost, http.MethodOptions)
}

// Metrics returns the server's counters.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
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

// respondServiceError maps error kinds to status codes. Every unknown or
// blank game id is reported as "Invalid game_id".
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusBadRequest, "Invalid game_id")
	case errors.Is(err, validate.ErrMalformed), errors.Is(err, service.ErrMalformedRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPersistence):
		s.logger.Error("persistence failure", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "score storage unavailable")
	default:
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Game Handlers

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.StartGame(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.metrics.GamesStarted.Add(1)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	req, err := validate.DecodeMove(r.Body)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	state, err := s.service.Move(r.Context(), req.GameID, req.Direction)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.metrics.Moves.Add(1)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state": state,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")

	state, err := s.service.PollState(r.Context(), gameID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.metrics.Polls.Add(1)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state": state,
	})
}

// Leaderboard Handlers

func (s *Server) handleSaveScore(w http.ResponseWriter, r *http.Request) {
	req, err := validate.DecodeSaveScore(r.Body)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if _, err := s.service.SaveScore(r.Context(), req.Username, req.Score); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.metrics.ScoresSaved.Add(1)

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	entries, err := s.service.HighScores(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"high_scores": entries,
	})
}

// Session Handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	info, err := s.service.GetSession(r.Context(), gameID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	if err := s.service.DeleteSession(r.Context(), gameID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"game_id": gameID,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := s.metrics.Snapshot()
	if sessions, err := s.service.ListSessions(r.Context()); err == nil {
		snapshot["active_sessions"] = len(sessions)
	}
	respondJSON(w, http.StatusOK, snapshot)
}
