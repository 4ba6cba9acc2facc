package monitop

import (
	"github.com/charmbracelet/lipgloss"
)

// Horizontal renders panes side by side
func Horizontal(panes ...Pane) string {
	if len(panes) == 0 {
		return ""
	}

	views := make([]string, len(panes))
	for i, pane := range panes {
		views[i] = pane.Render()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// Vertical stacks already rendered blocks
func Vertical(blocks ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// dashboardLayout holds the outer pane sizes for a terminal of the given size
type dashboardLayout struct {
	countsWidth int
	tableWidth  int
	fullWidth   int
	rowHeight   int
}

// newDashboardLayout splits the screen into two chart rows above a status and help line
func newDashboardLayout(width, height int) dashboardLayout {
	// status bar and help line
	available := max(height-2, 8)

	tableWidth := 0
	if width >= 60 {
		tableWidth = 26
	}
	return dashboardLayout{
		countsWidth: width - tableWidth,
		tableWidth:  tableWidth,
		fullWidth:   width,
		rowHeight:   available / 2,
	}
}
