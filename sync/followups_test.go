package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync/googletest"
)

type followUpFixture struct {
	google *googletest.Server
	creds  *fakeCredentialStore
	notes  *fakeNoteStore
	lead   models.Lead
	svc    *FollowUps
}

func newFollowUpFixture(t *testing.T, connected bool) *followUpFixture {
	t.Helper()
	f := &followUpFixture{
		google: newFakeGoogle(t),
		creds:  newFakeCredentialStore(),
		notes:  newFakeNoteStore(),
	}
	if connected {
		f.creds.put(freshCredential("u1"))
	}
	f.lead = f.notes.addLead("Ana")
	f.svc = NewFollowUps(f.notes, newTestClient(t, f.google, f.creds))
	return f
}

func (f *followUpFixture) create(t *testing.T, date string) *NoteResult {
	t.Helper()
	note := &models.Note{LeadID: f.lead.ID, Content: "Send pricing"}
	if date != "" {
		note.FollowUpDate = strPtr(date)
	}
	result, err := f.svc.CreateNote(context.Background(), "u1", note)
	require.NoError(t, err)
	return result
}

func TestCreateNoteWithoutFollowUpSkipsCalendar(t *testing.T) {
	f := newFollowUpFixture(t, true)

	result := f.create(t, "")
	assert.Equal(t, CalendarSkipped, result.Calendar)
	assert.Empty(t, f.google.Requests())
	assert.Contains(t, f.notes.notes, result.Note.ID.String())
}

func TestCreateNoteWithFollowUpCreatesLinkedEvent(t *testing.T) {
	f := newFollowUpFixture(t, true)

	result := f.create(t, " 2024-03-20 ")
	assert.Equal(t, CalendarSynced, result.Calendar)
	assert.Empty(t, result.Warning)
	require.NotNil(t, result.Event)

	stored := f.notes.notes[result.Note.ID.String()]
	assert.Equal(t, "2024-03-20", *stored.FollowUpDate)
	assert.Equal(t, result.Event.Id, stored.RemoteEventID())
	assert.Equal(t, result.Event.Id, result.Note.RemoteEventID())

	remote := f.google.Event(result.Event.Id)
	assert.Equal(t, "Follow-up: Ana", remote.Summary)
	assert.Equal(t, "2024-03-20", remote.Start.Date)
	assert.Equal(t, f.lead.ID.String(), ExtractLeadID(remote.Description))
	assert.Equal(t, result.Note.ID.String(), ExtractNoteID(remote.Description))
}

func TestCreateNoteNotConnectedStillSaves(t *testing.T) {
	f := newFollowUpFixture(t, false)

	result := f.create(t, "2024-03-20")
	assert.Equal(t, CalendarNotConnected, result.Calendar)
	assert.Empty(t, result.Warning)
	assert.Nil(t, result.Event)

	stored := f.notes.notes[result.Note.ID.String()]
	assert.Empty(t, stored.RemoteEventID())
	assert.Empty(t, f.google.Requests())
}

func TestCreateNoteCalendarFailureIsWarning(t *testing.T) {
	f := newFollowUpFixture(t, true)
	f.google.FailCalendar(http.StatusInternalServerError)

	result := f.create(t, "2024-03-20")
	assert.Equal(t, CalendarFailed, result.Calendar)
	assert.Contains(t, result.Warning, "note saved, but calendar sync failed")
	assert.Contains(t, f.notes.notes, result.Note.ID.String())
}

func TestCreateNoteValidation(t *testing.T) {
	f := newFollowUpFixture(t, true)
	ctx := context.Background()

	bad := []*models.Note{
		{LeadID: f.lead.ID, Content: "  "},
		{Content: "x"},
		{LeadID: uuid.New(), Content: "x"},
		{LeadID: f.lead.ID, Content: "x", FollowUpDate: strPtr("next week")},
	}
	for _, note := range bad {
		_, err := f.svc.CreateNote(ctx, "u1", note)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, f.notes.notes)
	assert.Empty(t, f.google.Requests())
}

func TestCreateNoteOnAnotherUsersLead(t *testing.T) {
	f := newFollowUpFixture(t, true)
	other := f.notes.addOwnedLead("u2", "Bea")

	_, err := f.svc.CreateNote(context.Background(), "u1", &models.Note{LeadID: other.ID, Content: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.notes.notes)
}

func TestCreateNoteLeadLookupFailureIsNotValidation(t *testing.T) {
	f := newFollowUpFixture(t, true)
	f.notes.leadErr = errors.New("connection reset")

	_, err := f.svc.CreateNote(context.Background(), "u1", &models.Note{LeadID: f.lead.ID, Content: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, f.notes.leadErr)
	assert.Empty(t, f.notes.notes)
}

func TestNoteScopedToLeadOwner(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")
	noteID := created.Note.ID.String()
	ctx := context.Background()

	got, err := f.svc.Note(ctx, "u1", noteID)
	require.NoError(t, err)
	assert.Equal(t, created.Note.ID, got.ID)

	_, err = f.svc.Note(ctx, "u2", noteID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Note(ctx, "u1", uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOtherUserCannotChangeNote(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")
	noteID := created.Note.ID.String()
	ctx := context.Background()

	_, err := f.svc.UpdateNote(ctx, "u2", noteID, "hijacked", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.DeleteNote(ctx, "u2", noteID)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, ok := f.notes.notes[noteID]
	require.True(t, ok)
	assert.Equal(t, "Send pricing", stored.Content)
	assert.Equal(t, created.Event.Id, stored.RemoteEventID())
	assert.NotNil(t, f.google.Event(created.Event.Id))
	assert.Len(t, f.google.Requests(), 1)
}

func TestUpdateNoteMovesLinkedEvent(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")
	eventID := created.Event.Id

	result, err := f.svc.UpdateNote(context.Background(), "u1", created.Note.ID.String(), "Send revised pricing", strPtr("2024-03-27"))
	require.NoError(t, err)
	assert.Equal(t, CalendarSynced, result.Calendar)

	reqs := f.google.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPatch, reqs[1].Method)

	remote := f.google.Event(eventID)
	assert.Equal(t, "2024-03-27", remote.Start.Date)
	assert.Contains(t, remote.Description, "Send revised pricing")
	assert.Equal(t, created.Note.ID.String(), ExtractNoteID(remote.Description))
}

func TestUpdateNoteRecreatesMissingEvent(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")
	noteID := created.Note.ID.String()

	// Removed from the calendar side.
	f.google.Remove(created.Event.Id)

	result, err := f.svc.UpdateNote(context.Background(), "u1", noteID, "again", strPtr("2024-03-22"))
	require.NoError(t, err)
	assert.Equal(t, CalendarSynced, result.Calendar)
	require.NotNil(t, result.Event)
	assert.NotEqual(t, created.Event.Id, result.Event.Id)
	stored := f.notes.notes[noteID]
	assert.Equal(t, result.Event.Id, stored.RemoteEventID())
}

func TestUpdateNoteAddsFollowUp(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "")

	result, err := f.svc.UpdateNote(context.Background(), "u1", created.Note.ID.String(), "now dated", strPtr("2024-04-01"))
	require.NoError(t, err)
	assert.Equal(t, CalendarSynced, result.Calendar)
	stored := f.notes.notes[created.Note.ID.String()]
	assert.NotEmpty(t, stored.RemoteEventID())
}

func TestUpdateNoteClearingDateRemovesEvent(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")
	noteID := created.Note.ID.String()

	result, err := f.svc.UpdateNote(context.Background(), "u1", noteID, "no longer needed", nil)
	require.NoError(t, err)
	assert.Equal(t, CalendarRemoved, result.Calendar)

	assert.Nil(t, f.google.Event(created.Event.Id))
	stored := f.notes.notes[noteID]
	assert.Nil(t, stored.FollowUpDate)
	assert.Empty(t, stored.RemoteEventID())
}

func TestDeleteNoteRemovesEvent(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")

	result, err := f.svc.DeleteNote(context.Background(), "u1", created.Note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, CalendarRemoved, result.Calendar)
	assert.NotContains(t, f.notes.notes, created.Note.ID.String())
	assert.Nil(t, f.google.Event(created.Event.Id))
}

func TestDeleteNoteAlreadyRemovedRemotely(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")

	f.google.Remove(created.Event.Id)

	result, err := f.svc.DeleteNote(context.Background(), "u1", created.Note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, CalendarRemoved, result.Calendar)
	assert.Empty(t, result.Warning)
}

func TestDeleteNoteCalendarFailureIsWarning(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "2024-03-20")
	f.google.FailCalendar(http.StatusBadGateway)

	result, err := f.svc.DeleteNote(context.Background(), "u1", created.Note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, CalendarFailed, result.Calendar)
	assert.Contains(t, result.Warning, "note deleted, but calendar removal failed")
	assert.NotContains(t, f.notes.notes, created.Note.ID.String())
}

func TestDeleteNoteWithoutLinkSkipsCalendar(t *testing.T) {
	f := newFollowUpFixture(t, true)
	created := f.create(t, "")

	result, err := f.svc.DeleteNote(context.Background(), "u1", created.Note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, CalendarSkipped, result.Calendar)
	assert.Empty(t, f.google.Requests())
}

