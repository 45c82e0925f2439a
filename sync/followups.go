// ABOUTME: Follow-up note lifecycle with best-effort calendar mirroring
// ABOUTME: Local note writes always win; calendar failures come back as warnings
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"

	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/models"
)

// EventService is the calendar surface used by the note hooks.
type EventService interface {
	EventCreator
	UpdateEvent(ctx context.Context, userID, eventID string, patch models.EventPatch) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}

// Calendar outcome of a note operation.
const (
	CalendarSkipped      = "skipped"
	CalendarSynced       = "synced"
	CalendarRemoved      = "removed"
	CalendarNotConnected = "not_connected"
	CalendarFailed       = "failed"
)

// NoteResult is the outcome of a note write. Warning is set when the local
// write succeeded but the calendar side did not.
type NoteResult struct {
	Note     *models.Note    `json:"note"`
	Event    *calendar.Event `json:"event,omitempty"`
	Calendar string          `json:"calendar"`
	Warning  string          `json:"warning,omitempty"`
}

// FollowUps wraps note persistence with calendar mirroring.
type FollowUps struct {
	notes      NoteStore
	events     EventService
	reconciler *LinkReconciler
	logger     *log.Logger
}

// NewFollowUps creates the note lifecycle service.
func NewFollowUps(notes NoteStore, events EventService) *FollowUps {
	return &FollowUps{
		notes:      notes,
		events:     events,
		reconciler: NewLinkReconciler(events, notes),
		logger:     config.Logger().WithPrefix("followups"),
	}
}

// CreateNote saves a note and, when it has a follow-up date, creates its event.
func (f *FollowUps) CreateNote(ctx context.Context, userID string, note *models.Note) (*NoteResult, error) {
	note.FollowUpDate = normalizeDate(note.FollowUpDate)
	if err := f.validate(ctx, userID, note); err != nil {
		return nil, err
	}

	if err := f.notes.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	result := &NoteResult{Note: note, Calendar: CalendarSkipped}
	if note.HasFollowUp() {
		f.createEvent(ctx, userID, note, result)
	}
	return result, nil
}

// UpdateNote rewrites content and follow-up date, then moves, creates, or
// removes the linked event to match.
func (f *FollowUps) UpdateNote(ctx context.Context, userID, noteID, content string, followUpDate *string) (*NoteResult, error) {
	note, err := f.Note(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	note.Content = content
	note.FollowUpDate = normalizeDate(followUpDate)
	if err := f.validate(ctx, userID, note); err != nil {
		return nil, err
	}

	if err := f.notes.UpdateNote(ctx, note); err != nil {
		return nil, err
	}

	result := &NoteResult{Note: note, Calendar: CalendarSkipped}
	linked := note.RemoteEventID() != ""

	switch {
	case note.HasFollowUp() && linked:
		f.patchEvent(ctx, userID, note, result)
	case note.HasFollowUp():
		f.createEvent(ctx, userID, note, result)
	case linked:
		f.removeEvent(ctx, userID, note, result, true)
	}
	return result, nil
}

// DeleteNote deletes the note and then its linked event, if any.
func (f *FollowUps) DeleteNote(ctx context.Context, userID, noteID string) (*NoteResult, error) {
	note, err := f.Note(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if err := f.notes.DeleteNote(ctx, noteID); err != nil {
		return nil, err
	}

	result := &NoteResult{Note: note, Calendar: CalendarSkipped}
	if note.RemoteEventID() != "" {
		f.removeEvent(ctx, userID, note, result, false)
	}
	return result, nil
}

// Note loads a note whose lead belongs to userID. Missing notes and notes on
// another user's lead are both ErrNotFound.
func (f *FollowUps) Note(ctx context.Context, userID, noteID string) (*models.Note, error) {
	const op = "load note"
	note, err := f.notes.GetNote(ctx, noteID)
	if errors.Is(err, models.ErrNoteNotFound) {
		return nil, &Error{Op: op, Kind: ErrNotFound, Err: err}
	}
	if err != nil {
		return nil, err
	}

	lead, err := f.notes.GetLead(ctx, note.LeadID.String())
	if errors.Is(err, models.ErrLeadNotFound) || (err == nil && lead.UserID != userID) {
		return nil, &Error{Op: op, Kind: ErrNotFound, Err: models.ErrNoteNotFound}
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (f *FollowUps) validate(ctx context.Context, userID string, note *models.Note) error {
	if strings.TrimSpace(note.Content) == "" {
		return validationError("save note", "note content is required")
	}
	if note.LeadID == uuid.Nil {
		return validationError("save note", "lead id is required")
	}
	if note.HasFollowUp() {
		if err := validateDate(*note.FollowUpDate); err != nil {
			return validationError("save note", "%v", err)
		}
	}
	lead, err := f.notes.GetLead(ctx, note.LeadID.String())
	if errors.Is(err, models.ErrLeadNotFound) || (err == nil && lead.UserID != userID) {
		return validationError("save note", "unknown lead %s", note.LeadID)
	}
	if err != nil {
		return fmt.Errorf("failed to load lead: %w", err)
	}
	return nil
}

func (f *FollowUps) record(ctx context.Context, note *models.Note) FollowUpRecord {
	leadName := ""
	if lead, err := f.notes.GetLead(ctx, note.LeadID.String()); err == nil {
		leadName = lead.Name
	}
	return FollowUpRecord{
		NoteID:      note.ID.String(),
		LeadID:      note.LeadID.String(),
		Title:       FollowUpTitle(leadName),
		Date:        *note.FollowUpDate,
		Description: note.Content,
	}
}

func (f *FollowUps) createEvent(ctx context.Context, userID string, note *models.Note, result *NoteResult) {
	event, err := f.reconciler.SyncFollowUp(ctx, userID, f.record(ctx, note))
	if event != nil && err == nil {
		id := event.Id
		note.GoogleCalendarEventID = &id
	}
	result.Event = event
	f.settle(result, CalendarSynced, "saved", "sync", err)
}

func (f *FollowUps) patchEvent(ctx context.Context, userID string, note *models.Note, result *NoteResult) {
	rec := f.record(ctx, note)
	description := BuildDescription(rec.Description, rec.LeadID, rec.NoteID)

	event, err := f.events.UpdateEvent(ctx, userID, note.RemoteEventID(), models.EventPatch{
		Title:       &rec.Title,
		Description: &description,
		Date:        &rec.Date,
	})
	if errors.Is(err, ErrNotFound) {
		// The event was removed on the calendar side; mirror the note again.
		f.logger.Info("linked event missing, recreating", "note", rec.NoteID)
		f.createEvent(ctx, userID, note, result)
		return
	}
	result.Event = event
	f.settle(result, CalendarSynced, "saved", "sync", err)
}

func (f *FollowUps) removeEvent(ctx context.Context, userID string, note *models.Note, result *NoteResult, clearLink bool) {
	err := f.events.DeleteEvent(ctx, userID, note.RemoteEventID())
	if IsBenignDelete(err) {
		err = nil
		if clearLink {
			if linkErr := f.notes.SetRemoteEventID(ctx, note.ID.String(), ""); linkErr != nil {
				err = fmt.Errorf("failed to clear calendar link: %w", linkErr)
			} else {
				note.GoogleCalendarEventID = nil
			}
		}
	}
	local := "deleted"
	if clearLink {
		local = "saved"
	}
	f.settle(result, CalendarRemoved, local, "removal", err)
}

// settle records the calendar outcome. No connection is not a failure.
func (f *FollowUps) settle(result *NoteResult, ok, local, what string, err error) {
	switch {
	case err == nil:
		result.Calendar = ok
	case errors.Is(err, ErrNoConnection):
		result.Calendar = CalendarNotConnected
	default:
		result.Calendar = CalendarFailed
		result.Warning = fmt.Sprintf("note %s, but calendar %s failed: %v", local, what, err)
		f.logger.Warn("calendar "+what+" failed", "note", result.Note.ID, "err", err)
	}
}

func normalizeDate(date *string) *string {
	if date == nil || strings.TrimSpace(*date) == "" {
		return nil
	}
	d := strings.TrimSpace(*date)
	return &d
}
