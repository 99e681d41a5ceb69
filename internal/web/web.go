package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workoutcal/internal/config"
	appLog "workoutcal/internal/log"
	"workoutcal/internal/observability"
	"workoutcal/internal/store"
	"workoutcal/internal/view"
)

// Server exposes a workout store as a JSON API.
//
// The store is not safe for concurrent use, so every handler that touches it
// holds storeMu for the whole read-modify-respond sequence.
type Server struct {
	cfg     *config.Config
	mux     *http.ServeMux
	loc     *time.Location
	now     func() time.Time
	palette view.Palette
	heights view.HeightScale

	storeMu sync.Mutex
	store   *store.Store

	// In-memory cache for /api/month responses keyed by month and layout.
	// Every store mutation and the day rollover flush it; gen guards against
	// storing a response computed before a flush.
	viewsMu sync.RWMutex
	views   map[viewKey]monthResponse
	gen     uint64
}

type viewKey struct {
	month  string
	layout string
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer constructs a new Server around st.
func NewServer(cfg *config.Config, st *store.Store, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		loc:     cfg.Location(),
		now:     time.Now,
		palette: view.NewPalette(st.Roster(), cfg.FallbackColor),
		heights: cfg.HeightScale(),
		store:   st,
		views:   make(map[viewKey]monthResponse),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// InvalidateViews drops every cached month response.
func (s *Server) InvalidateViews(reason string) {
	s.viewsMu.Lock()
	n := len(s.views)
	s.views = make(map[viewKey]monthResponse)
	s.gen++
	s.viewsMu.Unlock()

	observability.RecordViewCacheEviction(reason)
	appLog.Debug("month view cache flushed", "reason", reason, "entries", n)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="workoutcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /api/calendars", s.handleCalendars)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/month", s.handleMonth)

	s.mux.HandleFunc("POST /api/workouts", s.handleCreateWorkout)
	s.mux.HandleFunc("PUT /api/workouts/{id}", s.handleUpdateWorkout)
	s.mux.HandleFunc("DELETE /api/workouts/{id}", s.handleDeleteWorkout)

	s.mux.HandleFunc("POST /api/view/combined", s.handleToggleCombined)
	s.mux.HandleFunc("POST /api/calendars/{id}/toggle", s.handleToggleCalendar)
	s.mux.HandleFunc("POST /api/calendars/{id}/select", s.handleSelectCalendar)

	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Type       string `json:"type"`
	Detail     string `json:"detail"`
	Field      string `json:"field,omitempty"`
	ConflictID string `json:"conflictId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, typ, detail string) {
	writeJSON(w, status, errorResponse{Type: typ, Detail: detail})
}
