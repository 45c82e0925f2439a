// ABOUTME: Link reconciler between follow-up notes and calendar events
// ABOUTME: Creates the remote event and records its id on the originating note
package sync

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"

	"github.com/harperreed/leadflow/models"
)

// EventCreator is the part of CalendarClient the reconciler needs.
type EventCreator interface {
	CreateEvent(ctx context.Context, userID string, input models.EventInput) (*calendar.Event, error)
}

// FollowUpRecord is the local follow-up being mirrored to the calendar.
type FollowUpRecord struct {
	NoteID      string
	LeadID      string
	Title       string
	Date        string
	Description string
}

// LinkReconciler mirrors follow-ups as calendar events and links them back.
type LinkReconciler struct {
	events EventCreator
	links  EventLinker
}

// NewLinkReconciler creates a reconciler.
func NewLinkReconciler(events EventCreator, links EventLinker) *LinkReconciler {
	return &LinkReconciler{events: events, links: links}
}

// SyncFollowUp creates the remote event for rec and stores the returned id on
// the note. If the local write fails after a successful create, the event is
// returned together with the error: the remote event then has no local
// pointer and is not cleaned up.
func (r *LinkReconciler) SyncFollowUp(ctx context.Context, userID string, rec FollowUpRecord) (*calendar.Event, error) {
	event, err := r.events.CreateEvent(ctx, userID, models.EventInput{
		Title:       rec.Title,
		Date:        rec.Date,
		Description: rec.Description,
		LeadID:      rec.LeadID,
		NoteID:      rec.NoteID,
	})
	if err != nil {
		return nil, err
	}

	if rec.NoteID == "" || event.Id == "" {
		return event, nil
	}

	if err := r.links.SetRemoteEventID(ctx, rec.NoteID, event.Id); err != nil {
		return event, fmt.Errorf("calendar event %s created but not linked to note %s: %w", event.Id, rec.NoteID, err)
	}
	return event, nil
}

// FollowUpTitle is the event title used for a lead's follow-ups.
func FollowUpTitle(leadName string) string {
	if leadName == "" {
		return "Follow-up"
	}
	return "Follow-up: " + leadName
}
