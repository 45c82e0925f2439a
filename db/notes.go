// ABOUTME: Database operations for lead notes and follow-ups
// ABOUTME: Handles note CRUD, the follow-up listing, and the calendar event link field
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/leadflow/models"
)

const noteColumns = `id, lead_id, content, follow_up_date, google_calendar_event_id, created_at, updated_at`

// CreateNote inserts a note. An empty follow-up date is stored as NULL.
func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`),
		note.ID.String(),
		note.LeadID.String(),
		note.Content,
		optionalString(note.FollowUpDate),
		optionalString(note.GoogleCalendarEventID),
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetNote returns a note by id or ErrNoteNotFound.
func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+noteColumns+` FROM notes WHERE id = ?`), id)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// UpdateNote rewrites content and follow-up date. The event link is untouched.
func (s *Store) UpdateNote(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE notes
		SET content = ?, follow_up_date = ?, updated_at = ?
		WHERE id = ?
	`), note.Content, optionalString(note.FollowUpDate), note.UpdatedAt, note.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return expectOneRow(result, ErrNoteNotFound)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM notes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return expectOneRow(result, ErrNoteNotFound)
}

// SetRemoteEventID stores the calendar event id on a note. An empty eventID clears it.
func (s *Store) SetRemoteEventID(ctx context.Context, noteID, eventID string) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE notes SET google_calendar_event_id = ? WHERE id = ?
	`), nullString(eventID), noteID)
	if err != nil {
		return fmt.Errorf("failed to set calendar event id: %w", err)
	}
	return expectOneRow(result, ErrNoteNotFound)
}

// ListFollowUps returns the user's notes with a follow-up date joined to their
// lead, soonest first.
func (s *Store) ListFollowUps(ctx context.Context, userID string, limit int) ([]models.FollowUp, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT n.id, n.lead_id, n.content, n.follow_up_date, n.google_calendar_event_id,
		       n.created_at, n.updated_at, l.name, l.company
		FROM notes n
		INNER JOIN leads l ON l.id = n.lead_id
		WHERE l.user_id = ? AND n.follow_up_date IS NOT NULL
		ORDER BY n.follow_up_date ASC
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var followUps []models.FollowUp
	for rows.Next() {
		var f models.FollowUp
		var company sql.NullString
		note, err := scanNote(rows, &f.LeadName, &company)
		if err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		f.Note = *note
		f.LeadCompany = company.String
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

func scanNote(row scanner, extra ...any) (*models.Note, error) {
	var note models.Note
	var idStr, leadIDStr string
	var followUpDate, eventID sql.NullString

	dest := append([]any{
		&idStr, &leadIDStr, &note.Content, &followUpDate, &eventID, &note.CreatedAt, &note.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if note.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse note ID: %w", err)
	}
	if note.LeadID, err = uuid.Parse(leadIDStr); err != nil {
		return nil, fmt.Errorf("failed to parse lead ID: %w", err)
	}
	if followUpDate.Valid {
		note.FollowUpDate = &followUpDate.String
	}
	if eventID.Valid {
		note.GoogleCalendarEventID = &eventID.String
	}
	return &note, nil
}

func optionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func expectOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
