package monitop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pane is a bordered region with a header line, a body and an optional footer.
//
//	pane := NewPane("Counts", 60, 12).
//	    SetContent(chart).
//	    SetFooter("Latest sample: 2025-01-01 10:00:00")
//	fmt.Println(pane.Render())
type Pane struct {
	title   string
	content string
	footer  string
	width   int
	height  int
	focused bool
}

var (
	paneBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	paneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)
	paneFooterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// NewPane creates a pane whose outer size, borders included, is width x height
func NewPane(title string, width, height int) Pane {
	return Pane{title: title, width: width, height: height}
}

func (p Pane) SetTitle(title string) Pane {
	p.title = title
	return p
}

func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

func (p Pane) SetFooter(footer string) Pane {
	p.footer = footer
	return p
}

func (p Pane) SetFocused(focused bool) Pane {
	p.focused = focused
	return p
}

// Inner returns the body size left after borders, title and footer
func (p Pane) Inner() (width, height int) {
	width = p.width - 2
	height = p.height - 2
	if p.title != "" {
		height--
	}
	if p.footer != "" {
		height--
	}
	return max(width, 0), max(height, 0)
}

// Render draws the pane. The body is clipped or padded to fill the pane.
func (p Pane) Render() string {
	innerW, innerH := p.Inner()

	var b strings.Builder
	if p.title != "" {
		b.WriteString(lipgloss.NewStyle().MaxWidth(innerW).Render(p.title) + "\n")
	}

	lines := strings.Split(p.content, "\n")
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}
	b.WriteString(strings.Join(lines, "\n"))

	if p.footer != "" {
		b.WriteString("\n" + paneFooterStyle.MaxWidth(innerW).Render(p.footer))
	}

	border := paneBorderStyle
	if p.focused {
		border = border.BorderForeground(lipgloss.Color("170"))
	}
	return border.
		Width(innerW).
		Height(p.height - 2).
		MaxHeight(p.height).
		Render(b.String())
}

// String is a convenience method that calls Render
func (p Pane) String() string {
	return p.Render()
}
