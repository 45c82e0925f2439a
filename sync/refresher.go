// ABOUTME: Token refresher that hands out a currently valid calendar credential
// ABOUTME: Refreshes through the OAuth token endpoint and persists the new access token
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/models"
)

// ExpiryMargin is how close to expiry a token is treated as already expired.
const ExpiryMargin = 60 * time.Second

// CredentialSource yields a credential that is safe to use right now.
type CredentialSource interface {
	ValidCredential(ctx context.Context, userID string) (*models.Credential, error)
}

// TokenRefresher reads a user's credential and refreshes it when stale.
type TokenRefresher struct {
	store  CredentialStore
	oauth  *oauth2.Config
	now    func() time.Time
	logger *log.Logger
}

// RefresherOption configures a TokenRefresher.
type RefresherOption func(*TokenRefresher)

// WithRefresherClock overrides time.Now.
func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(r *TokenRefresher) { r.now = now }
}

// NewTokenRefresher creates a refresher over a credential store.
func NewTokenRefresher(store CredentialStore, oauthCfg *oauth2.Config, opts ...RefresherOption) *TokenRefresher {
	r := &TokenRefresher{
		store:  store,
		oauth:  oauthCfg,
		now:    time.Now,
		logger: config.Logger().WithPrefix("refresher"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NeedsRefresh reports whether cred is expired or inside the safety margin.
// A credential without an expiry is always stale.
func (r *TokenRefresher) NeedsRefresh(cred *models.Credential) bool {
	if cred.ExpiresAt == nil {
		return true
	}
	return cred.ExpiresAt.Sub(r.now()) <= ExpiryMargin
}

// ValidCredential returns the user's credential, refreshing and persisting it
// first when stale. Without a refresh token a stale credential is returned
// as-is and the remote call is left to fail.
func (r *TokenRefresher) ValidCredential(ctx context.Context, userID string) (*models.Credential, error) {
	cred, err := r.store.GetCredential(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if cred == nil {
		return nil, noConnection("credential")
	}

	if !r.NeedsRefresh(cred) {
		return cred, nil
	}

	if cred.RefreshToken == "" {
		r.logger.Warn("credential is stale and has no refresh token", "user", userID)
		return cred, nil
	}

	// An empty access token forces the token source to hit the token endpoint.
	tok, err := r.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, &Error{Op: "refresh", Kind: ErrUpstream, Err: err}
	}

	refreshed := *cred
	refreshed.AccessToken = tok.AccessToken
	refreshed.ExpiresAt = tokenExpiry(tok)

	// The refresh token is not rewritten; Google reuses it.
	err = r.store.UpsertCredential(ctx, userID, models.CredentialFields{
		AccessToken: refreshed.AccessToken,
		ExpiresAt:   refreshed.ExpiresAt,
	})
	if err != nil {
		// The new token is still good for this call; the next call refreshes again.
		r.logger.Warn("failed to persist refreshed credential", "user", userID, "err", err)
	} else {
		r.logger.Debug("refreshed credential", "user", userID)
	}

	return &refreshed, nil
}
