// ABOUTME: Calendar connection lifecycle per user
// ABOUTME: Connect via authorization code, report connection status, and disconnect
package sync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Connections manages whether a user has a stored calendar credential.
type Connections struct {
	store CredentialStore
	oauth *oauth2.Config
}

// NewConnections creates the connection service.
func NewConnections(store CredentialStore, oauthCfg *oauth2.Config) *Connections {
	return &Connections{store: store, oauth: oauthCfg}
}

// AuthCodeURL returns the consent URL for the given anti-forgery state.
func (c *Connections) AuthCodeURL(state string) string {
	return AuthCodeURL(c.oauth, state)
}

// Connect exchanges an authorization code and stores the resulting credential.
func (c *Connections) Connect(ctx context.Context, userID, code string) error {
	if code == "" {
		return validationError("connect", "authorization code is required")
	}

	tok, err := exchangeCode(ctx, c.oauth, code)
	if err != nil {
		return err
	}

	if err := c.store.UpsertCredential(ctx, userID, credentialFields(tok)); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// IsConnected reports whether a credential exists. Expiry is not inspected.
func (c *Connections) IsConnected(ctx context.Context, userID string) (bool, error) {
	cred, err := c.store.GetCredential(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check connection: %w", err)
	}
	return cred != nil, nil
}

// Disconnect deletes the user's credential. Disconnecting twice is not an error.
func (c *Connections) Disconnect(ctx context.Context, userID string) error {
	if err := c.store.DeleteCredential(ctx, userID); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}
