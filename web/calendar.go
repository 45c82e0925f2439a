// ABOUTME: Calendar routes: connection status, disconnect, and event CRUD
// ABOUTME: Thin JSON adapters over the sync calendar client and link reconciler
package web

import (
	"net/http"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync"
)

// handleStatus never fails; any error reads as not connected.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	connected := false
	if userID, err := s.sessions.CurrentUserID(r); err == nil {
		ok, err := s.connections.IsConnected(r.Context(), userID)
		connected = err == nil && ok
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.connections.Disconnect(r.Context(), userID); err != nil {
		s.fail(w, "disconnect", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request, userID string) {
	events, err := s.calendar.ListUpcoming(r.Context(), userID, sync.DefaultWindowDays)
	if err != nil {
		s.fail(w, "list events", err)
		return
	}

	out := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		out = append(out, sync.ToCalendarEvent(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request, userID string) {
	var input models.EventInput
	if err := decodeBody(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.NoteID != "" {
		if _, err := s.followUps.Note(r.Context(), userID, input.NoteID); err != nil {
			s.fail(w, "create event", err)
			return
		}
	}

	event, err := s.reconciler.SyncFollowUp(r.Context(), userID, sync.FollowUpRecord{
		NoteID:      input.NoteID,
		LeadID:      input.LeadID,
		Title:       input.Title,
		Date:        input.Date,
		Description: input.Description,
	})
	if err != nil && event == nil {
		s.fail(w, "create event", err)
		return
	}

	resp := map[string]any{"event": event}
	if err != nil {
		// Created remotely but the note link was not written.
		s.logger.Warn("event created without note link", "event", event.Id, "note", input.NoteID, "err", err)
		resp["warning"] = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request, userID string) {
	var patch models.EventPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	event, err := s.calendar.UpdateEvent(r.Context(), userID, r.PathValue("eventId"), patch)
	if err != nil {
		s.fail(w, "update event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": event})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.calendar.DeleteEvent(r.Context(), userID, r.PathValue("eventId"))
	if !sync.IsBenignDelete(err) {
		s.fail(w, "delete event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
