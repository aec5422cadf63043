package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/terrapen/go-terrapen/pkg/protocol"
)

// renderMenuBar renders the top bar with the key help.
func renderMenuBar(width int, watch bool) string {
	title := styleHelpKey.Render(" terrapen ")

	var menu string
	if watch {
		menu = styleHelpLabel.Render("  watching remote engine") +
			"  " + styleHelpKey.Render("[Q]") + styleHelpLabel.Render("uit")
	} else {
		keys := []struct{ key, label string }{
			{"↑↓←→", " drive"},
			{"P", "en"},
			{"S", "quare"},
			{"T", "riangle"},
			{"C", "ircle"},
			{"I", " spiral"},
			{"W", " text"},
			{"G", " home"},
			{"R", "eset"},
			{"Q", "uit"},
		}
		var sb strings.Builder
		for _, k := range keys {
			sb.WriteString("  " + styleHelpKey.Render("["+k.key+"]") + styleHelpLabel.Render(k.label))
		}
		menu = sb.String()
	}

	bar := title + menu
	gap := width - lipgloss.Width(bar)
	if gap > 0 {
		bar += strings.Repeat(" ", gap)
	}
	return styleStatusBar.Width(width).Render(bar)
}

// renderStatusBar renders pose, pen, and queue state at the bottom.
func renderStatusBar(width int, state protocol.StateData, note string) string {
	pen := "pen up"
	if state.PenDown {
		pen = "pen DOWN"
	}

	var activity string
	if state.Busy {
		activity = styleStatusBusy.Render(fmt.Sprintf("DRAWING %3.0f%%", state.Progress*100))
	} else {
		activity = styleStatusIdle.Render("IDLE")
	}

	left := fmt.Sprintf("x %7.1f  y %7.1f  θ %6.1f°  %s  ",
		state.X, state.Y, headingDegrees(state.Heading), pen)
	left += activity
	if state.QueueLength > 0 {
		left += styleStatusIdle.Render(
			fmt.Sprintf("  queue %d (%.1fs)", state.QueueLength, state.QueueRemaining))
	}

	right := ""
	if note != "" {
		right = styleStatusWarn.Render(note) + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return styleStatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
