// Package tui provides the terminal surfaces of the generator: an
// interactive browser for stored runs and events, a live run monitor,
// and SSH serving of the browser via Wish.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MaximVirta/trento/internal/storage"
)

// Browser layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show run list sidebar
	sidebarWidth       = 26  // Width of run list sidebar
	maxRuns            = 50  // Max runs to load
	maxEvents          = 500 // Max events to load per run
)

// BrowserKeyMap defines the key bindings for the event browser.
type BrowserKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextRun key.Binding
	PrevRun key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextRun, k.PrevRun, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextRun, k.PrevRun},
		{k.Quit},
	}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextRun: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next run"),
		),
		PrevRun: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowserModel is the Bubble Tea model for browsing stored events.
type BrowserModel struct {
	runs        []storage.RunEntry
	runCursor   int
	store       *storage.Store
	events      []storage.EventEntry
	stats       *storage.RunStats
	table       table.Model
	help        help.Model
	keys        BrowserKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewBrowserModel creates a browser over the most recent runs.
func NewBrowserModel(store *storage.Store, width, height int) BrowserModel {
	runs, err := store.RecentRuns(maxRuns)
	if err != nil {
		runs = nil
	}

	keys := DefaultBrowserKeyMap()
	h := help.New()
	h.ShowAll = false

	m := BrowserModel{
		runs:        runs,
		runCursor:   0,
		store:       store,
		keys:        keys,
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	m.table = m.createTable()

	if len(m.runs) > 0 {
		m.loadEvents(m.runs[0].ID)
	}

	return m
}

// createTable creates a new table with the event columns.
func (m *BrowserModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Event", Width: 7},
		{Title: "b [fm]", Width: 8},
		{Title: "Npart", Width: 6},
		{Title: "Ncoll", Width: 6},
		{Title: "Mult", Width: 10},
		{Title: "e2", Width: 8},
		{Title: "e3", Width: 8},
	}

	tableHeight := m.height - 9 // Leave room for header, stats, help
	if tableHeight < 1 {
		tableHeight = 1
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadEvents loads events and stats for the given run.
func (m *BrowserModel) loadEvents(runID int64) {
	events, err := m.store.EventsForRun(runID, maxEvents)
	if err != nil {
		m.events = nil
	} else {
		m.events = events
	}

	stats, err := m.store.Stats(runID)
	if err != nil {
		m.stats = nil
	} else {
		m.stats = stats
	}

	m.updateTableRows()
}

// updateTableRows updates the table with the current run's events.
func (m *BrowserModel) updateTableRows() {
	rows := make([]table.Row, len(m.events))
	for i, e := range m.events {
		rows[i] = table.Row{
			fmt.Sprintf("%d", e.N),
			fmt.Sprintf("%.3f", e.B),
			fmt.Sprintf("%d", e.Npart),
			fmt.Sprintf("%d", e.Ncoll),
			fmt.Sprintf("%.4g", e.Mult),
			fmt.Sprintf("%.4f", e.Ecc2),
			fmt.Sprintf("%.4f", e.Ecc3),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the browser model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextRun):
			if len(m.runs) > 0 {
				m.runCursor = (m.runCursor + 1) % len(m.runs)
				m.loadEvents(m.runs[m.runCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevRun):
			if len(m.runs) > 0 {
				m.runCursor--
				if m.runCursor < 0 {
					m.runCursor = len(m.runs) - 1
				}
				m.loadEvents(m.runs[m.runCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "STORED EVENTS"
	if len(m.runs) > 0 {
		r := m.runs[m.runCursor]
		title = fmt.Sprintf("STORED EVENTS - run %d: %s+%s", r.ID, r.ProjectileA, r.ProjectileB)
	}

	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.table.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStats())

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the browser with a run-list sidebar.
func (m BrowserModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Runs\n")
	for i, r := range m.runs {
		line := fmt.Sprintf("%d: %s+%s (%d ev)", r.ID, r.ProjectileA, r.ProjectileB, r.NEvents)
		if i == m.runCursor {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Render(line)
		}
		sidebar.WriteString(line)
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		" ",
		m.table.View(),
	)
}

// renderStats renders the selected run's aggregate line.
func (m BrowserModel) renderStats() string {
	if m.stats == nil || m.stats.NEvents == 0 {
		return "No events recorded for this run."
	}
	return fmt.Sprintf("events: %d   <b>: %.3f fm   <Npart>: %.1f   <mult>: %.4g",
		m.stats.NEvents, m.stats.MeanB, m.stats.MeanNpart, m.stats.MeanMult)
}

// centerText pads text to be horizontally centered in the given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	pad := (width - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}

// RunBrowser runs the event browser as a standalone program.
func RunBrowser(store *storage.Store, width, height int) error {
	m := NewBrowserModel(store, width, height)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: browser failed: %w", err)
	}
	return nil
}
