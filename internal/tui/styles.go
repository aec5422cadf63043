package tui

import "github.com/charmbracelet/lipgloss"

// Plotter palette: paper-white trail on a dark workspace.
var (
	colorInk     = lipgloss.Color("#E8E8D8")
	colorRobot   = lipgloss.Color("#00FF41")
	colorGrid    = lipgloss.Color("#2A2A3A")
	colorAccent  = lipgloss.Color("#00CC33")
	colorWarning = lipgloss.Color("#FFAA00")
	colorError   = lipgloss.Color("#FF3300")

	styleTrail = lipgloss.NewStyle().Foreground(colorInk)
	styleRobot = lipgloss.NewStyle().Foreground(colorRobot).Bold(true)
	styleGrid  = lipgloss.NewStyle().Foreground(colorGrid)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent)

	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(colorAccent).
			Padding(0, 1)

	styleStatusBusy = lipgloss.NewStyle().
			Foreground(colorRobot).
			Bold(true)

	styleStatusIdle = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleStatusWarn = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleHelpKey = lipgloss.NewStyle().
			Foreground(colorRobot).
			Bold(true)

	styleHelpLabel = lipgloss.NewStyle().
			Foreground(colorAccent)
)
