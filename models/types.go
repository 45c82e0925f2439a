// ABOUTME: Data models for leads, follow-up notes, and calendar credentials
// ABOUTME: Defines Lead, Note, FollowUp, Credential, and calendar event input structs
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrNoteNotFound = errors.New("note not found")
)

// Lead is owned by one user; notes belong to the user through their lead.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a free-text note on a lead. A note with a FollowUpDate is a follow-up
// and may be mirrored to the owner's calendar.
type Note struct {
	ID                    uuid.UUID `json:"id"`
	LeadID                uuid.UUID `json:"lead_id"`
	Content               string    `json:"content"`
	FollowUpDate          *string   `json:"follow_up_date,omitempty"` // YYYY-MM-DD
	GoogleCalendarEventID *string   `json:"google_calendar_event_id,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// HasFollowUp reports whether the note carries a follow-up date.
func (n *Note) HasFollowUp() bool {
	return n.FollowUpDate != nil && *n.FollowUpDate != ""
}

// RemoteEventID returns the linked calendar event id, or "" when unlinked.
func (n *Note) RemoteEventID() string {
	if n.GoogleCalendarEventID == nil {
		return ""
	}
	return *n.GoogleCalendarEventID
}

// FollowUp combines a Note with the lead it belongs to for follow-up views.
type FollowUp struct {
	Note
	LeadName    string `json:"lead_name"`
	LeadCompany string `json:"lead_company,omitempty"`
}

// Credential is the stored OAuth token record for one user's calendar connection.
type Credential struct {
	UserID       string     `json:"user_id"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"` // empty when the provider did not grant one
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CredentialFields is the write set for an upsert. AccessToken and ExpiresAt are
// always written (a nil ExpiresAt stores NULL); RefreshToken is left untouched
// when nil.
type CredentialFields struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}

// EventInput describes an all-day calendar event to create.
type EventInput struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD
	Description string `json:"description,omitempty"`
	LeadID      string `json:"leadId,omitempty"`
	NoteID      string `json:"noteId,omitempty"`
}

// EventPatch holds the fields to change on an existing event. Nil fields are
// not sent.
type EventPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil
}

// CalendarEvent is the trimmed view of a remote event used by the agenda and tools.
type CalendarEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"` // date or RFC3339 date-time
	AllDay      bool   `json:"all_day"`
	HTMLLink    string `json:"html_link,omitempty"`
	LeadID      string `json:"lead_id,omitempty"`
}
