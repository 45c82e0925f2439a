// ABOUTME: OAuth configuration for the Google Calendar connection
// ABOUTME: Builds the consent URL and exchanges authorization codes for tokens
package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/models"
)

// CalendarEventsScope grants read/write access to calendar events.
const CalendarEventsScope = "https://www.googleapis.com/auth/calendar.events"

// NewOAuthConfig creates the OAuth2 config for Google Calendar from app config.
func NewOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	if !cfg.GoogleConfigured() {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}

	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// AuthCodeURL returns the consent URL: offline access with a forced consent
// prompt so Google always issues a refresh token.
func AuthCodeURL(oauthCfg *oauth2.Config, state string) string {
	return oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// credentialFields converts an oauth2 token into a store write. A missing
// refresh token is stored as NULL.
func credentialFields(tok *oauth2.Token) models.CredentialFields {
	refresh := tok.RefreshToken
	return models.CredentialFields{
		AccessToken:  tok.AccessToken,
		RefreshToken: &refresh,
		ExpiresAt:    tokenExpiry(tok),
	}
}

func tokenExpiry(tok *oauth2.Token) *time.Time {
	if tok.Expiry.IsZero() {
		return nil
	}
	t := tok.Expiry.UTC()
	return &t
}

// exchangeCode trades an authorization code for a token.
func exchangeCode(ctx context.Context, oauthCfg *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, &Error{Op: "exchange", Kind: ErrUpstream, Err: err}
	}
	return tok, nil
}
