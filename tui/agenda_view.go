// ABOUTME: Calendar tab of the agenda
// ABOUTME: Resolves each event's lead tag to a lead name and renders the event table
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	"google.golang.org/api/calendar/v3"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync"
)

// LeadLookup resolves a lead id; db.Store satisfies it.
type LeadLookup interface {
	GetLead(ctx context.Context, id string) (*models.Lead, error)
}

// ResolveEvents converts remote events for display, naming the lead each
// event's LeadID tag points at. Unknown leads keep an empty name.
func ResolveEvents(ctx context.Context, events []*calendar.Event, leads LeadLookup) []AgendaEvent {
	names := map[string]string{}
	out := make([]AgendaEvent, 0, len(events))
	for _, e := range events {
		view := AgendaEvent{CalendarEvent: sync.ToCalendarEvent(e)}
		if id := view.LeadID; id != "" {
			name, seen := names[id]
			if !seen {
				if lead, err := leads.GetLead(ctx, id); err == nil {
					name = lead.Name
				}
				names[id] = name
			}
			view.LeadName = name
		}
		out = append(out, view)
	}
	return out
}

func (m Model) eventColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Time", Width: 7},
		{Title: "Event", Width: 36},
		{Title: "Lead", Width: 24},
	}
}

func (m Model) eventRows() []table.Row {
	rows := make([]table.Row, 0, len(m.agenda.Events))
	for _, e := range m.agenda.Events {
		date, clock := splitStart(e.Start, e.AllDay)
		lead := e.LeadName
		if lead == "" && e.LeadID != "" {
			lead = "(unknown lead)"
		}
		rows = append(rows, table.Row{date, clock, e.Summary, lead})
	}
	return rows
}

// splitStart separates an RFC3339 start into date and HH:MM.
func splitStart(start string, allDay bool) (string, string) {
	if allDay || len(start) < 16 {
		return start, "all day"
	}
	return start[:10], start[11:16]
}
