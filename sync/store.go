// ABOUTME: Persistence interfaces consumed by the calendar sync layer
// ABOUTME: Implemented by db.Store; faked in tests
package sync

import (
	"context"

	"github.com/harperreed/leadflow/models"
)

// CredentialStore persists one OAuth credential per user.
type CredentialStore interface {
	// GetCredential returns nil, nil when the user has no credential.
	GetCredential(ctx context.Context, userID string) (*models.Credential, error)
	UpsertCredential(ctx context.Context, userID string, fields models.CredentialFields) error
	DeleteCredential(ctx context.Context, userID string) error
}

// EventLinker writes the remote event id onto a follow-up note.
type EventLinker interface {
	SetRemoteEventID(ctx context.Context, noteID, eventID string) error
}

// NoteStore is the note persistence used by the follow-up lifecycle hooks.
type NoteStore interface {
	EventLinker
	CreateNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id string) error
	GetLead(ctx context.Context, id string) (*models.Lead, error)
}
