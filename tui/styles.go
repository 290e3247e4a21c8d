package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorDim     = lipgloss.Color("241")
	colorAccent  = lipgloss.Color("39")
	colorWarning = lipgloss.Color("220")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	gutterStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	gutterInteractiveStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Underline(true)

	gutterDividerStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)
)
