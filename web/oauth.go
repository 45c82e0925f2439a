// ABOUTME: Google authorization handshake routes
// ABOUTME: Redirects to consent with a ULID state cookie and stores the credential on callback
package web

import (
	"net/http"

	"github.com/oklog/ulid/v2"
)

const stateCookie = "oauth_state"

// Redirect targets of the handshake.
const (
	redirectDenied    = "/settings?google_error=access_denied"
	redirectBadState  = "/settings?google_error=invalid_state"
	redirectFailed    = "/settings?google_error=exchange_failed"
	redirectLogin     = "/login"
	redirectConnected = "/settings?tab=integrations&connected=true"
)

func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	state := ulid.Make().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.connections.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	if q.Get("error") != "" || code == "" {
		http.Redirect(w, r, redirectDenied, http.StatusFound)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	// The state is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/api/auth/google", MaxAge: -1})
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		http.Redirect(w, r, redirectBadState, http.StatusFound)
		return
	}

	userID, err := s.sessions.CurrentUserID(r)
	if err != nil {
		http.Redirect(w, r, redirectLogin, http.StatusFound)
		return
	}

	if err := s.connections.Connect(r.Context(), userID, code); err != nil {
		s.logger.Error("calendar connect failed", "user", userID, "err", err)
		http.Redirect(w, r, redirectFailed, http.StatusFound)
		return
	}

	s.logger.Info("calendar connected", "user", userID)
	http.Redirect(w, r, redirectConnected, http.StatusFound)
}
