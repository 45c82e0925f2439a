// ABOUTME: Follow-up list and note routes
// ABOUTME: Note writes go through the follow-up hooks so calendar events track the note
package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/harperreed/leadflow/models"
)

const followUpLimit = 200

type noteBody struct {
	LeadID       string  `json:"lead_id"`
	Content      string  `json:"content"`
	FollowUpDate *string `json:"follow_up_date"`
}

func (s *Server) handleFollowUps(w http.ResponseWriter, r *http.Request, userID string) {
	notes, err := s.store.ListFollowUps(r.Context(), userID, followUpLimit)
	if err != nil {
		s.fail(w, "list follow-ups", err)
		return
	}
	if notes == nil {
		notes = []models.FollowUp{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request, userID string) {
	var body noteBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note := &models.Note{Content: body.Content, FollowUpDate: body.FollowUpDate}
	if body.LeadID != "" {
		id, err := uuid.Parse(body.LeadID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lead_id")
			return
		}
		note.LeadID = id
	}

	result, err := s.followUps.CreateNote(r.Context(), userID, note)
	if err != nil {
		s.fail(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request, userID string) {
	var body noteBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.followUps.UpdateNote(r.Context(), userID, r.PathValue("id"), body.Content, body.FollowUpDate)
	if err != nil {
		s.fail(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request, userID string) {
	result, err := s.followUps.DeleteNote(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "calendar": result.Calendar, "warning": result.Warning})
}
