// ABOUTME: Session identity for the HTTP API
// ABOUTME: HS256 JWTs carried as a Bearer token or a session cookie resolve the current user
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie name browsers carry the session JWT in.
const SessionCookie = "session"

// DefaultSessionTTL is the lifetime of tokens minted by the CLI.
const DefaultSessionTTL = 30 * 24 * time.Hour

// ErrUnauthenticated means the request carries no valid session.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionClaims are the JWT claims of a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Sessions issues and verifies session tokens.
type Sessions struct {
	secret []byte
	now    func() time.Time
}

// NewSessions creates a session verifier. The secret must not be empty.
func NewSessions(secret string) (*Sessions, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is not configured. Set LEADFLOW_SESSION_SECRET")
	}
	return &Sessions{secret: []byte(secret), now: time.Now}, nil
}

// Issue mints a token for userID valid for ttl.
func (s *Sessions) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// CurrentUserID resolves the user from the Authorization header or the
// session cookie, in that order.
func (s *Sessions) CurrentUserID(r *http.Request) (string, error) {
	raw := bearerToken(r)
	if raw == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return "", ErrUnauthenticated
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrUnauthenticated
	}
	return claims.UserID, nil
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
