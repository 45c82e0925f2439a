// ABOUTME: Terminal agenda using the bubbletea framework
// ABOUTME: Full-screen tabs for upcoming calendar events and scheduled follow-ups
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/leadflow/models"
)

// Tab is the active agenda tab.
type Tab int

const (
	TabEvents Tab = iota
	TabFollowUps
)

var tabNames = []string{"Calendar", "Follow-ups"}

// AgendaEvent is a calendar event with its lead resolved for display.
type AgendaEvent struct {
	models.CalendarEvent
	LeadName string
}

// Agenda is one load of everything the screen shows. A calendar error does
// not hide the local follow-ups.
type Agenda struct {
	Events      []AgendaEvent
	FollowUps   []models.FollowUp
	CalendarErr error
}

// Loader fetches a fresh agenda.
type Loader func(ctx context.Context) (Agenda, error)

type agendaLoadedMsg struct {
	agenda Agenda
	err    error
}

// Model is the main bubbletea model
type Model struct {
	load    Loader
	tab     Tab
	agenda  Agenda
	loading bool
	err     error
	today   string

	table table.Model

	width  int
	height int
}

// NewModel creates an agenda model. today is YYYY-MM-DD, used to flag overdue follow-ups.
func NewModel(load Loader, today string) Model {
	m := Model{
		load:    load,
		loading: true,
		today:   today,
		width:   100,
		height:  24,
	}
	m.table = m.buildTable()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		agenda, err := load(context.Background())
		return agendaLoadedMsg{agenda: agenda, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case agendaLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.agenda = msg.agenda
		m.table = m.buildTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTable()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			m.table = m.buildTable()
			return m, nil
		case "shift+tab", "left", "h":
			m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
			m.table = m.buildTable()
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LEADFLOW AGENDA"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString(messageStyle.Render("Loading..."))
	case m.err != nil:
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	default:
		if m.tab == TabEvents && m.agenda.CalendarErr != nil {
			s.WriteString(errorStyle.Render("Calendar: " + m.agenda.CalendarErr.Error()))
			s.WriteString("\n\n")
		}
		if len(m.table.Rows()) == 0 {
			s.WriteString(messageStyle.Render(m.emptyMessage()))
		} else {
			s.WriteString(m.table.View())
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("tab: switch view • ↑/↓: navigate • r: reload • q: quit"))
	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) emptyMessage() string {
	if m.tab == TabEvents {
		return "No upcoming calendar events."
	}
	return "No follow-ups scheduled."
}

func (m Model) buildTable() table.Model {
	var columns []table.Column
	var rows []table.Row
	switch m.tab {
	case TabEvents:
		columns, rows = m.eventColumns(), m.eventRows()
	case TabFollowUps:
		columns, rows = m.followUpColumns(), m.followUpRows()
	}

	height := m.height - 10
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("39"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	return t
}

// Run starts the full-screen agenda.
func Run(load Loader, today string) error {
	_, err := tea.NewProgram(NewModel(load, today), tea.WithAltScreen()).Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
