// ABOUTME: Test doubles for the sync layer
// ABOUTME: In-memory credential and note stores plus the fake Google client wiring
package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync/googletest"
)

var testNow = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeCredentialStore struct {
	mu        gosync.Mutex
	creds     map[string]models.Credential
	upserts   []models.CredentialFields
	deletes   int
	upsertErr error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{creds: map[string]models.Credential{}}
}

func (s *fakeCredentialStore) put(cred models.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.UserID] = cred
}

func (s *fakeCredentialStore) GetCredential(_ context.Context, userID string) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *fakeCredentialStore) UpsertCredential(_ context.Context, userID string, fields models.CredentialFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, fields)
	if s.upsertErr != nil {
		return s.upsertErr
	}
	c := s.creds[userID]
	c.UserID = userID
	c.AccessToken = fields.AccessToken
	c.ExpiresAt = fields.ExpiresAt
	if fields.RefreshToken != nil {
		c.RefreshToken = *fields.RefreshToken
	}
	s.creds[userID] = c
	return nil
}

func (s *fakeCredentialStore) DeleteCredential(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.creds, userID)
	return nil
}

type fakeNoteStore struct {
	notes   map[string]models.Note
	leads   map[string]models.Lead
	linkErr error
	leadErr error
	links   []string
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: map[string]models.Note{}, leads: map[string]models.Lead{}}
}

func (s *fakeNoteStore) addLead(name string) models.Lead {
	return s.addOwnedLead("u1", name)
}

func (s *fakeNoteStore) addOwnedLead(owner, name string) models.Lead {
	lead := models.Lead{ID: uuid.New(), UserID: owner, Name: name}
	s.leads[lead.ID.String()] = lead
	return lead
}

func (s *fakeNoteStore) CreateNote(_ context.Context, note *models.Note) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	s.notes[note.ID.String()] = *note
	return nil
}

func (s *fakeNoteStore) GetNote(_ context.Context, id string) (*models.Note, error) {
	n, ok := s.notes[id]
	if !ok {
		return nil, models.ErrNoteNotFound
	}
	return &n, nil
}

func (s *fakeNoteStore) UpdateNote(_ context.Context, note *models.Note) error {
	existing, ok := s.notes[note.ID.String()]
	if !ok {
		return models.ErrNoteNotFound
	}
	existing.Content = note.Content
	existing.FollowUpDate = note.FollowUpDate
	s.notes[note.ID.String()] = existing
	return nil
}

func (s *fakeNoteStore) DeleteNote(_ context.Context, id string) error {
	if _, ok := s.notes[id]; !ok {
		return models.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *fakeNoteStore) GetLead(_ context.Context, id string) (*models.Lead, error) {
	if s.leadErr != nil {
		return nil, s.leadErr
	}
	l, ok := s.leads[id]
	if !ok {
		return nil, models.ErrLeadNotFound
	}
	return &l, nil
}

func (s *fakeNoteStore) SetRemoteEventID(_ context.Context, noteID, eventID string) error {
	s.links = append(s.links, noteID+"="+eventID)
	if s.linkErr != nil {
		return s.linkErr
	}
	n, ok := s.notes[noteID]
	if !ok {
		return models.ErrNoteNotFound
	}
	if eventID == "" {
		n.GoogleCalendarEventID = nil
	} else {
		n.GoogleCalendarEventID = &eventID
	}
	s.notes[noteID] = n
	return nil
}

// freshCredential expires well outside the refresh margin.
func freshCredential(userID string) models.Credential {
	exp := testNow.Add(time.Hour)
	return models.Credential{UserID: userID, AccessToken: "stored-access", RefreshToken: "stored-refresh", ExpiresAt: &exp}
}

func newFakeGoogle(t *testing.T) *googletest.Server {
	return googletest.New(t)
}

func newTestClient(t *testing.T, g *googletest.Server, store CredentialStore) *CalendarClient {
	t.Helper()
	refresher := NewTokenRefresher(store, g.OAuthConfig(CalendarEventsScope), WithRefresherClock(fixedClock))
	return NewCalendarClient(refresher, WithServiceOptions(g.Endpoint()), WithClientClock(fixedClock))
}

