package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MaximVirta/trento/internal/collider"
	"github.com/MaximVirta/trento/internal/event"
)

// EventMsg carries one finished event from the run goroutine.
type EventMsg struct {
	N     int
	Res   collider.Result
	Npart int
	Mult  float64
	Ecc2  float64
}

// DoneMsg signals the end of the run, with its error if any.
type DoneMsg struct {
	Err error
}

// MonitorModel renders live aggregate statistics while events are being
// generated. The sampling itself runs in a separate goroutine and feeds
// the model through program messages.
type MonitorModel struct {
	total int
	count int

	last     EventMsg
	sumB     float64
	sumNpart float64
	sumMult  float64

	start time.Time
	done  bool
	err   error
	width int
}

// NewMonitorModel creates a monitor for a run of the given event count.
func NewMonitorModel(total int) MonitorModel {
	return MonitorModel{
		total: total,
		start: time.Now(),
		width: 80,
	}
}

// Init implements tea.Model.
func (m MonitorModel) Init() tea.Cmd {
	return nil
}

// Update handles progress messages and quit keys.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.count++
		m.last = msg
		m.sumB += msg.Res.B
		m.sumNpart += float64(msg.Npart)
		m.sumMult += msg.Mult
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the live statistics panel.
func (m MonitorModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render("GENERATING EVENTS"))
	b.WriteString("\n\n")

	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")

	if m.done && m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errStyle.Render(fmt.Sprintf("  run failed: %v", m.err)))
		b.WriteString("\n\n")
	}

	if m.count > 0 {
		n := float64(m.count)
		b.WriteString(fmt.Sprintf("  last event:  b = %.3f fm, Npart = %d, mult = %.4g, e2 = %.4f\n",
			m.last.Res.B, m.last.Npart, m.last.Mult, m.last.Ecc2))
		b.WriteString(fmt.Sprintf("  averages:    <b> = %.3f fm, <Npart> = %.1f, <mult> = %.4g\n",
			m.sumB/n, m.sumNpart/n, m.sumMult/n))

		elapsed := time.Since(m.start).Seconds()
		if elapsed > 0 {
			b.WriteString(fmt.Sprintf("  rate:        %.1f events/s\n", n/elapsed))
		}
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q to stop watching (the run continues)"))
	b.WriteString("\n")

	return b.String()
}

// renderProgress draws a simple bar sized to the terminal width.
func (m MonitorModel) renderProgress() string {
	barWidth := m.width - 20
	if barWidth < 10 {
		barWidth = 10
	}

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.count) / float64(m.total)
	}
	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("  %s %d/%d", bar, m.count, m.total)
}

// ProgramSink adapts a running Bubble Tea program to the collider's sink
// contract so the monitor receives every event as it finishes.
type ProgramSink struct {
	p *tea.Program
}

// NewProgramSink wraps a program for use as an event sink.
func NewProgramSink(p *tea.Program) *ProgramSink {
	return &ProgramSink{p: p}
}

// Write implements collider.Sink. Sending never fails.
func (s *ProgramSink) Write(n int, res collider.Result, ev *event.Event) error {
	msg := EventMsg{N: n, Res: res}
	if ev != nil {
		msg.Npart = ev.Npart
		msg.Mult = ev.Mult
		msg.Ecc2 = ev.Ecc[2]
	}
	s.p.Send(msg)
	return nil
}

// Ensure ProgramSink implements the sink contract
var _ collider.Sink = (*ProgramSink)(nil)
