// ABOUTME: Calendar MCP tool handlers
// ABOUTME: Implements calendar_status, event CRUD, list_upcoming_events, and sync_followup tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync"
)

// Store is the persistence the MCP handlers read; db.Store satisfies it.
type Store interface {
	sync.NoteStore
	ListFollowUps(ctx context.Context, userID string, limit int) ([]models.FollowUp, error)
	ListLeads(ctx context.Context, userID string, limit int) ([]models.Lead, error)
}

// CalendarHandlers acts on behalf of the single local user the MCP server runs as.
type CalendarHandlers struct {
	userID      string
	store       Store
	connections *sync.Connections
	calendar    *sync.CalendarClient
	reconciler  *sync.LinkReconciler
	followUps   *sync.FollowUps
}

func NewCalendarHandlers(userID string, store Store, connections *sync.Connections, calendar *sync.CalendarClient) *CalendarHandlers {
	return &CalendarHandlers{
		userID:      userID,
		store:       store,
		connections: connections,
		calendar:    calendar,
		reconciler:  sync.NewLinkReconciler(calendar, store),
		followUps:   sync.NewFollowUps(store, calendar),
	}
}

type CalendarStatusInput struct{}

type CalendarStatusOutput struct {
	Connected bool `json:"connected"`
}

func (h *CalendarHandlers) CalendarStatus(ctx context.Context, _ *mcp.CallToolRequest, _ CalendarStatusInput) (*mcp.CallToolResult, CalendarStatusOutput, error) {
	connected, err := h.connections.IsConnected(ctx, h.userID)
	if err != nil {
		return nil, CalendarStatusOutput{}, err
	}
	return nil, CalendarStatusOutput{Connected: connected}, nil
}

type ListUpcomingEventsInput struct {
	Days int `json:"days,omitempty" jsonschema:"Window in days starting now (default 30)"`
}

type EventOutput struct {
	ID          string `json:"id"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"`
	AllDay      bool   `json:"all_day"`
	HTMLLink    string `json:"html_link,omitempty"`
	LeadID      string `json:"lead_id,omitempty"`
	LeadName    string `json:"lead_name,omitempty"`
}

func eventToOutput(e models.CalendarEvent) EventOutput {
	return EventOutput{
		ID:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		Start:       e.Start,
		AllDay:      e.AllDay,
		HTMLLink:    e.HTMLLink,
		LeadID:      e.LeadID,
	}
}

type ListUpcomingEventsOutput struct {
	Events []EventOutput `json:"events"`
}

func (h *CalendarHandlers) ListUpcomingEvents(ctx context.Context, _ *mcp.CallToolRequest, input ListUpcomingEventsInput) (*mcp.CallToolResult, ListUpcomingEventsOutput, error) {
	days := input.Days
	if days == 0 {
		days = sync.DefaultWindowDays
	}

	events, err := h.calendar.ListUpcoming(ctx, h.userID, days)
	if err != nil {
		return nil, ListUpcomingEventsOutput{}, err
	}

	out := ListUpcomingEventsOutput{Events: make([]EventOutput, 0, len(events))}
	names := map[string]string{}
	for _, e := range events {
		view := eventToOutput(sync.ToCalendarEvent(e))
		if id := view.LeadID; id != "" {
			if _, seen := names[id]; !seen {
				names[id] = ""
				if lead, err := h.store.GetLead(ctx, id); err == nil && lead.UserID == h.userID {
					names[id] = lead.Name
				}
			}
			view.LeadName = names[id]
		}
		out.Events = append(out.Events, view)
	}
	return nil, out, nil
}

type CreateCalendarEventInput struct {
	Title       string `json:"title" jsonschema:"Event title (required)"`
	Date        string `json:"date" jsonschema:"All-day event date as YYYY-MM-DD (required)"`
	Description string `json:"description,omitempty" jsonschema:"Event description"`
	LeadID      string `json:"lead_id,omitempty" jsonschema:"Lead the event belongs to"`
	NoteID      string `json:"note_id,omitempty" jsonschema:"Note to link the created event to"`
}

type CalendarEventOutput struct {
	Event   EventOutput `json:"event"`
	Warning string      `json:"warning,omitempty"`
}

func (h *CalendarHandlers) CreateCalendarEvent(ctx context.Context, _ *mcp.CallToolRequest, input CreateCalendarEventInput) (*mcp.CallToolResult, CalendarEventOutput, error) {
	if input.NoteID != "" {
		if _, err := h.followUps.Note(ctx, h.userID, input.NoteID); err != nil {
			return nil, CalendarEventOutput{}, err
		}
	}

	event, err := h.reconciler.SyncFollowUp(ctx, h.userID, sync.FollowUpRecord{
		NoteID:      input.NoteID,
		LeadID:      input.LeadID,
		Title:       input.Title,
		Date:        input.Date,
		Description: input.Description,
	})
	if event == nil {
		return nil, CalendarEventOutput{}, err
	}

	out := CalendarEventOutput{Event: eventToOutput(sync.ToCalendarEvent(event))}
	if err != nil {
		out.Warning = err.Error()
	}
	return nil, out, nil
}

type UpdateCalendarEventInput struct {
	EventID     string  `json:"event_id" jsonschema:"Calendar event ID (required)"`
	Title       *string `json:"title,omitempty" jsonschema:"New title"`
	Description *string `json:"description,omitempty" jsonschema:"New description; empty clears it"`
	Date        *string `json:"date,omitempty" jsonschema:"New date as YYYY-MM-DD"`
}

func (h *CalendarHandlers) UpdateCalendarEvent(ctx context.Context, _ *mcp.CallToolRequest, input UpdateCalendarEventInput) (*mcp.CallToolResult, CalendarEventOutput, error) {
	event, err := h.calendar.UpdateEvent(ctx, h.userID, input.EventID, models.EventPatch{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
	})
	if err != nil {
		return nil, CalendarEventOutput{}, err
	}
	return nil, CalendarEventOutput{Event: eventToOutput(sync.ToCalendarEvent(event))}, nil
}

type DeleteCalendarEventInput struct {
	EventID string `json:"event_id" jsonschema:"Calendar event ID (required)"`
}

type DeleteCalendarEventOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

func (h *CalendarHandlers) DeleteCalendarEvent(ctx context.Context, _ *mcp.CallToolRequest, input DeleteCalendarEventInput) (*mcp.CallToolResult, DeleteCalendarEventOutput, error) {
	err := h.calendar.DeleteEvent(ctx, h.userID, input.EventID)
	if !sync.IsBenignDelete(err) {
		return nil, DeleteCalendarEventOutput{}, err
	}

	msg := "event deleted"
	if err != nil {
		msg = "event was already gone"
	}
	return nil, DeleteCalendarEventOutput{Deleted: true, Message: msg}, nil
}

type SyncFollowupInput struct {
	NoteID string `json:"note_id" jsonschema:"Note with a follow-up date to mirror to the calendar (required)"`
}

func (h *CalendarHandlers) SyncFollowup(ctx context.Context, _ *mcp.CallToolRequest, input SyncFollowupInput) (*mcp.CallToolResult, CalendarEventOutput, error) {
	if input.NoteID == "" {
		return nil, CalendarEventOutput{}, fmt.Errorf("note_id is required")
	}

	note, err := h.followUps.Note(ctx, h.userID, input.NoteID)
	if err != nil {
		return nil, CalendarEventOutput{}, fmt.Errorf("failed to load note: %w", err)
	}
	if !note.HasFollowUp() {
		return nil, CalendarEventOutput{}, fmt.Errorf("note %s has no follow-up date", input.NoteID)
	}
	if id := note.RemoteEventID(); id != "" {
		return nil, CalendarEventOutput{}, fmt.Errorf("note %s is already linked to event %s; use update_calendar_event", input.NoteID, id)
	}

	leadName := ""
	if lead, err := h.store.GetLead(ctx, note.LeadID.String()); err == nil {
		leadName = lead.Name
	}

	return h.CreateCalendarEvent(ctx, nil, CreateCalendarEventInput{
		Title:       sync.FollowUpTitle(leadName),
		Date:        *note.FollowUpDate,
		Description: note.Content,
		LeadID:      note.LeadID.String(),
		NoteID:      note.ID.String(),
	})
}

// Register adds the calendar tools to server.
func (h *CalendarHandlers) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "calendar_status",
		Description: "Report whether Google Calendar is connected",
	}, h.CalendarStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_upcoming_events",
		Description: "List upcoming Google Calendar events with their linked leads",
	}, h.ListUpcomingEvents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_calendar_event",
		Description: "Create an all-day Google Calendar event, optionally linked to a lead and note",
	}, h.CreateCalendarEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_calendar_event",
		Description: "Change the title, description, or date of a calendar event",
	}, h.UpdateCalendarEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_calendar_event",
		Description: "Delete a calendar event; deleting a missing event succeeds",
	}, h.DeleteCalendarEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_followup",
		Description: "Mirror a note's follow-up date to Google Calendar and link the event to the note",
	}, h.SyncFollowup)
}
