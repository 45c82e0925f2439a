// ABOUTME: Follow-ups tab of the agenda
// ABOUTME: Lists notes with follow-up dates, flagging overdue ones and those not on the calendar
package tui

import (
	"github.com/charmbracelet/bubbles/table"
)

func (m Model) followUpColumns() []table.Column {
	return []table.Column{
		{Title: "Status", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Lead", Width: 22},
		{Title: "Note", Width: 36},
		{Title: "Cal", Width: 4},
	}
}

func (m Model) followUpRows() []table.Row {
	rows := make([]table.Row, 0, len(m.agenda.FollowUps))
	for _, f := range m.agenda.FollowUps {
		date := *f.FollowUpDate

		indicator := "🟢"
		switch {
		case date < m.today:
			indicator = "🔴"
		case date == m.today:
			indicator = "🟡"
		}

		onCalendar := ""
		if f.RemoteEventID() != "" {
			onCalendar = "✓"
		}

		rows = append(rows, table.Row{indicator, date, f.LeadName, truncate(f.Content, 36), onCalendar})
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
