// ABOUTME: Tests for leads, notes, and follow-up queries
// ABOUTME: Covers CRUD, the event link field, and follow-up ordering
package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/leadflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leadOwner = "owner-1"

func createTestLead(t *testing.T, store *Store, name string) *models.Lead {
	t.Helper()
	return createOwnedLead(t, store, leadOwner, name)
}

func createOwnedLead(t *testing.T, store *Store, owner, name string) *models.Lead {
	t.Helper()
	lead := &models.Lead{UserID: owner, Name: name, Company: name + " Inc"}
	require.NoError(t, store.CreateLead(context.Background(), lead))
	return lead
}

func TestLeadCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	lead := createTestLead(t, store, "Acme")
	assert.NotEqual(t, uuid.Nil, lead.ID)

	got, err := store.GetLead(ctx, lead.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "Acme Inc", got.Company)
	assert.Equal(t, leadOwner, got.UserID)

	_, err = store.GetLead(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrLeadNotFound)

	leads, err := store.ListLeads(ctx, leadOwner, 10)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestListsAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	mine := createTestLead(t, store, "Acme")
	theirs := createOwnedLead(t, store, "owner-2", "Globex")

	require.NoError(t, store.CreateNote(ctx, &models.Note{LeadID: mine.ID, Content: "mine", FollowUpDate: strPtr("2024-03-01")}))
	require.NoError(t, store.CreateNote(ctx, &models.Note{LeadID: theirs.ID, Content: "theirs", FollowUpDate: strPtr("2024-03-02")}))

	leads, err := store.ListLeads(ctx, leadOwner, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Acme", leads[0].Name)

	followUps, err := store.ListFollowUps(ctx, leadOwner, 10)
	require.NoError(t, err)
	require.Len(t, followUps, 1)
	assert.Equal(t, "mine", followUps[0].Content)

	followUps, err = store.ListFollowUps(ctx, "owner-3", 10)
	require.NoError(t, err)
	assert.Empty(t, followUps)
}

func TestNoteCRUD(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	lead := createTestLead(t, store, "Acme")

	note := &models.Note{LeadID: lead.ID, Content: "Call back", FollowUpDate: strPtr("2024-03-15")}
	require.NoError(t, store.CreateNote(ctx, note))

	got, err := store.GetNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Call back", got.Content)
	require.NotNil(t, got.FollowUpDate)
	assert.Equal(t, "2024-03-15", *got.FollowUpDate)
	assert.Nil(t, got.GoogleCalendarEventID)

	got.Content = "Call back Tuesday"
	got.FollowUpDate = nil
	require.NoError(t, store.UpdateNote(ctx, got))

	got, err = store.GetNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Call back Tuesday", got.Content)
	assert.Nil(t, got.FollowUpDate)

	require.NoError(t, store.DeleteNote(ctx, note.ID.String()))
	_, err = store.GetNote(ctx, note.ID.String())
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.ErrorIs(t, store.DeleteNote(ctx, note.ID.String()), ErrNoteNotFound)
}

func TestSetRemoteEventID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	lead := createTestLead(t, store, "Acme")

	note := &models.Note{LeadID: lead.ID, Content: "Demo"}
	require.NoError(t, store.CreateNote(ctx, note))

	require.NoError(t, store.SetRemoteEventID(ctx, note.ID.String(), "evt-1"))
	got, err := store.GetNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", got.RemoteEventID())

	// Content updates leave the link alone.
	got.Content = "Demo v2"
	require.NoError(t, store.UpdateNote(ctx, got))
	got, err = store.GetNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", got.RemoteEventID())

	require.NoError(t, store.SetRemoteEventID(ctx, note.ID.String(), ""))
	got, err = store.GetNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got.GoogleCalendarEventID)

	err = store.SetRemoteEventID(ctx, uuid.NewString(), "evt-2")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestListFollowUpsOrdering(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	acme := createTestLead(t, store, "Acme")
	globex := createTestLead(t, store, "Globex")

	require.NoError(t, store.CreateNote(ctx, &models.Note{LeadID: acme.ID, Content: "later", FollowUpDate: strPtr("2024-05-01")}))
	require.NoError(t, store.CreateNote(ctx, &models.Note{LeadID: globex.ID, Content: "sooner", FollowUpDate: strPtr("2024-03-01")}))
	require.NoError(t, store.CreateNote(ctx, &models.Note{LeadID: acme.ID, Content: "no date"}))

	followUps, err := store.ListFollowUps(ctx, leadOwner, 10)
	require.NoError(t, err)
	require.Len(t, followUps, 2)

	assert.Equal(t, "sooner", followUps[0].Content)
	assert.Equal(t, "Globex", followUps[0].LeadName)
	assert.Equal(t, "Globex Inc", followUps[0].LeadCompany)
	assert.Equal(t, "later", followUps[1].Content)
}

func TestDeleteLeadCascadesNotes(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	lead := createTestLead(t, store, "Acme")
	require.NoError(t, store.CreateNote(ctx, &models.Note{LeadID: lead.ID, Content: "x"}))

	_, err := store.DB().Exec("DELETE FROM leads WHERE id = ?", lead.ID.String())
	require.NoError(t, err)

	var count int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM notes").Scan(&count))
	assert.Equal(t, 0, count)
}
