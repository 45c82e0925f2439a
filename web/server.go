// ABOUTME: HTTP API server for calendar sync and follow-up notes
// ABOUTME: Routes session-authenticated requests to the sync services and maps error kinds to status codes
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync"
)

// Store is the persistence the server needs; db.Store satisfies it.
type Store interface {
	sync.CredentialStore
	sync.NoteStore
	ListFollowUps(ctx context.Context, userID string, limit int) ([]models.FollowUp, error)
}

// Server wires the sync services to HTTP routes.
type Server struct {
	store       Store
	sessions    *Sessions
	connections *sync.Connections
	calendar    *sync.CalendarClient
	reconciler  *sync.LinkReconciler
	followUps   *sync.FollowUps
	logger      *log.Logger

	// SecureCookies marks the OAuth state cookie Secure. Off for plain-http localhost.
	SecureCookies bool
}

// NewServer builds the services over store. Client options are passed to the
// calendar client (endpoint overrides in tests).
func NewServer(store Store, oauthCfg *oauth2.Config, sessions *Sessions, opts ...sync.ClientOption) *Server {
	refresher := sync.NewTokenRefresher(store, oauthCfg)
	calendar := sync.NewCalendarClient(refresher, opts...)

	return &Server{
		store:       store,
		sessions:    sessions,
		connections: sync.NewConnections(store, oauthCfg),
		calendar:    calendar,
		reconciler:  sync.NewLinkReconciler(calendar, store),
		followUps:   sync.NewFollowUps(store, calendar),
		logger:      config.Logger().WithPrefix("web"),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/google", s.handleGoogleAuth)
	mux.HandleFunc("GET /api/auth/google/callback", s.handleGoogleCallback)

	mux.HandleFunc("GET /api/calendar/status", s.handleStatus)
	mux.HandleFunc("DELETE /api/calendar/disconnect", s.authed(s.handleDisconnect))
	mux.HandleFunc("GET /api/calendar/events", s.authed(s.handleListEvents))
	mux.HandleFunc("POST /api/calendar/events", s.authed(s.handleCreateEvent))
	mux.HandleFunc("PUT /api/calendar/events/{eventId}", s.authed(s.handleUpdateEvent))
	mux.HandleFunc("DELETE /api/calendar/events/{eventId}", s.authed(s.handleDeleteEvent))

	mux.HandleFunc("GET /api/follow-ups", s.authed(s.handleFollowUps))
	mux.HandleFunc("POST /api/notes", s.authed(s.handleCreateNote))
	mux.HandleFunc("PUT /api/notes/{id}", s.authed(s.handleUpdateNote))
	mux.HandleFunc("DELETE /api/notes/{id}", s.authed(s.handleDeleteNote))

	return s.logRequests(mux)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// authed rejects requests without a session with 401.
func (s *Server) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.sessions.CurrentUserID(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sync.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, sync.ErrNoConnection):
		return http.StatusConflict
	case errors.Is(err, sync.ErrNotFound), errors.Is(err, db.ErrNoteNotFound), errors.Is(err, db.ErrLeadNotFound):
		return http.StatusNotFound
	case errors.Is(err, sync.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(what+" failed", "err", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
