package monitop

import (
	"github.com/charmbracelet/lipgloss"
)

// TargetTabs tracks which throughput target is selected
type TargetTabs struct {
	targets  []string
	selected int
}

// NewTargetTabs creates tabs for targets with selected active.
// An unknown selection falls back to the first target.
func NewTargetTabs(targets []string, selected string) *TargetTabs {
	ts := &TargetTabs{targets: targets}
	for i, t := range targets {
		if t == selected {
			ts.selected = i
		}
	}
	return ts
}

// NextTab moves to the next target (wraps around)
func (ts *TargetTabs) NextTab() *TargetTabs {
	if len(ts.targets) > 0 {
		ts.selected = (ts.selected + 1) % len(ts.targets)
	}
	return ts
}

// PrevTab moves to the previous target (wraps around)
func (ts *TargetTabs) PrevTab() *TargetTabs {
	if len(ts.targets) > 0 {
		ts.selected = (ts.selected - 1 + len(ts.targets)) % len(ts.targets)
	}
	return ts
}

// Selected returns the selected target name
func (ts *TargetTabs) Selected() string {
	if len(ts.targets) == 0 {
		return ""
	}
	return ts.targets[ts.selected]
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Bold(true).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)
)

// Render draws the tab strip on a single line
func (ts *TargetTabs) Render() string {
	rendered := make([]string, 0, len(ts.targets)+1)
	rendered = append(rendered, paneTitleStyle.Render("Throughput "))
	for i, t := range ts.targets {
		if i == ts.selected {
			rendered = append(rendered, activeTabStyle.Render(t))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(t))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
