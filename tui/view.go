package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View composes the header, the gutter+content viewport, and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(m.path)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.content.View(), m.renderStatusBar())
}

// renderLines joins the gutter column with the file content line by line.
func (m Model) renderLines() string {
	g := m.host.gutter(m.gutterName)
	if g == nil {
		return strings.Join(m.lines, "\n")
	}
	width, _, labels := g.cells()

	var b strings.Builder
	for i, line := range m.lines {
		if width > 0 {
			cell := strings.Repeat(" ", width)
			style := gutterStyle
			if props, ok := labels[i]; ok {
				cell = fmt.Sprintf("%-*s", width, props.Label)
				if props.Interactive {
					style = gutterInteractiveStyle
				}
			}
			b.WriteString(style.Render(cell))
			b.WriteString(gutterDividerStyle.Render("│"))
		}
		b.WriteString(line)
		if i < len(m.lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	g := m.host.gutter(m.gutterName)
	left := "q to quit"
	if g != nil {
		if _, loading, _ := g.cells(); loading {
			left = m.spinner.View() + " fetching blame..."
		} else if m.status != "" {
			if m.statusWarn {
				left = warningStyle.Render(m.status)
			} else {
				left = m.status
			}
		}
	}
	return statusStyle.Width(max(0, m.width)).Render(left)
}
