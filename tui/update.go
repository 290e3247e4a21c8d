package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	headerHeight = 1
	statusHeight = 1
)

// Update applies incoming Bubble Tea messages to the viewer state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.content, cmd = m.content.Update(msg)
			return m, cmd
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.handleClick(msg.X, msg.Y)
		}
		return m, nil
	case repaintMsg:
		if m.ready {
			m.content.SetContent(m.renderLines())
		}
		return m, nil
	case statusMsg:
		m.status = msg.text
		m.statusWarn = msg.warn
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := max(1, msg.Height-headerHeight-statusHeight)
	if !m.ready {
		m.content = viewport.New(msg.Width, contentHeight)
		m.ready = true
	} else {
		m.content.Width = msg.Width
		m.content.Height = contentHeight
	}
	m.content.SetContent(m.renderLines())
	return m, nil
}

// handleClick maps a terminal cell to a buffer line and, when the click
// lands inside the gutter, forwards it to the delegated gutter listener.
func (m Model) handleClick(x, y int) {
	if !m.ready {
		return
	}
	g := m.host.gutter(m.gutterName)
	if g == nil {
		return
	}
	width, _, _ := g.cells()
	if width == 0 || x >= width {
		return
	}
	line := y - headerHeight + m.content.YOffset
	if line < 0 || line >= len(m.lines) {
		return
	}
	g.emitClick(line)
}
