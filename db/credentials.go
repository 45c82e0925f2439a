// ABOUTME: Database operations for the google_tokens table
// ABOUTME: One OAuth credential row per user with upsert-by-user-id semantics
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/leadflow/models"
)

// GetCredential returns the stored credential for a user, or nil when the user
// has never connected.
func (s *Store) GetCredential(ctx context.Context, userID string) (*models.Credential, error) {
	var cred models.Credential
	var refreshToken sql.NullString
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT user_id, access_token, refresh_token, expires_at, created_at, updated_at
		FROM google_tokens
		WHERE user_id = ?
	`), userID).Scan(
		&cred.UserID,
		&cred.AccessToken,
		&refreshToken,
		&expiresAt,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	if cred.AccessToken, err = s.sealer.Open(cred.AccessToken); err != nil {
		return nil, err
	}
	if refreshToken.Valid {
		if cred.RefreshToken, err = s.sealer.Open(refreshToken.String); err != nil {
			return nil, err
		}
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		cred.ExpiresAt = &t
	}

	return &cred, nil
}

// UpsertCredential inserts or merges the credential row for a user. The refresh
// token column is only written when fields.RefreshToken is non-nil.
func (s *Store) UpsertCredential(ctx context.Context, userID string, fields models.CredentialFields) error {
	accessToken, err := s.sealer.Seal(fields.AccessToken)
	if err != nil {
		return err
	}

	var refreshToken sql.NullString
	if fields.RefreshToken != nil {
		sealed, err := s.sealer.Seal(*fields.RefreshToken)
		if err != nil {
			return err
		}
		refreshToken = nullString(sealed)
	}

	var expiresAt sql.NullTime
	if fields.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: fields.ExpiresAt.UTC(), Valid: true}
	}

	refreshClause := ""
	if fields.RefreshToken != nil {
		refreshClause = "refresh_token = excluded.refresh_token,"
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO google_tokens (user_id, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			`+refreshClause+`
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`), userID, accessToken, refreshToken, expiresAt, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// DeleteCredential removes a user's credential. Deleting a missing row is not an error.
func (s *Store) DeleteCredential(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM google_tokens WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
