package monitop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	RefreshCounts     key.Binding
	RefreshThroughput key.Binding
	NextTarget        key.Binding
	PrevTarget        key.Binding
	Help              key.Binding
	Quit              key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RefreshCounts, k.RefreshThroughput, k.NextTarget, k.PrevTarget, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.RefreshCounts, k.RefreshThroughput},
		{k.NextTarget, k.PrevTarget},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	RefreshCounts: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh counts"),
	),
	RefreshThroughput: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "refresh throughput"),
	),
	NextTarget: key.NewBinding(
		key.WithKeys("l", "right", "tab"),
		key.WithHelp("→/l/tab", "next target"),
	),
	PrevTarget: key.NewBinding(
		key.WithKeys("h", "left", "shift+tab"),
		key.WithHelp("←/h", "prev target"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Triggers are the manual actions the dashboard can start
type Triggers interface {
	RefreshCounts()
	RefreshThroughput()
	SelectTarget(target string)
}

// refreshedMsg tells the program a text region or chart changed
type refreshedMsg struct{}

type dashboardModel struct {
	panel    *Panel
	swapper  *Swapper
	triggers Triggers
	tabs     *TargetTabs
	help     help.Model
	backend  string
	width    int
	height   int
	ready    bool
}

// NewDashboard builds the bubbletea model over an already wired panel
func NewDashboard(panel *Panel, swapper *Swapper, triggers Triggers, targets []string, selected, backend string) dashboardModel {
	return dashboardModel{
		panel:    panel,
		swapper:  swapper,
		triggers: triggers,
		tabs:     NewTargetTabs(targets, selected),
		help:     help.New(),
		backend:  backend,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.SetWindowTitle("monitop " + m.backend)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.RefreshCounts):
			m.triggers.RefreshCounts()
		case key.Matches(msg, keys.RefreshThroughput):
			m.triggers.RefreshThroughput()
		case key.Matches(msg, keys.NextTarget):
			m.triggers.SelectTarget(m.tabs.NextTab().Selected())
		case key.Matches(msg, keys.PrevTarget):
			m.triggers.SelectTarget(m.tabs.PrevTab().Selected())
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case refreshedMsg:
		// the next View picks up the new charts and text
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	text := m.panel.Text()
	layout := newDashboardLayout(m.width, m.height)

	counts := NewPane("Counts", layout.countsWidth, layout.rowHeight).SetFooter(text.Meta)
	w, h := counts.Inner()
	counts = counts.SetContent(m.chartOrPlaceholder(SlotCounts, w, h))

	countsRow := counts.Render()
	if layout.tableWidth > 0 {
		latest := NewPane("Latest", layout.tableWidth, layout.rowHeight)
		_, th := latest.Inner()
		latest = latest.SetContent(LatestTable(text.Latest, th))
		countsRow = Horizontal(counts, latest)
	}

	footer := text.Model
	if text.Trend != "" {
		footer += "  " + text.Trend
	}
	tpu := NewPane(m.tabs.Render(), layout.fullWidth, layout.rowHeight).
		SetFooter(footer).
		SetFocused(true)
	w, h = tpu.Inner()
	tpu = tpu.SetContent(m.chartOrPlaceholder(SlotTPU, w, h))

	status := text.Status
	if status == "" {
		status = "Status: —"
	}
	statusBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("235")).
		Width(m.width).
		MaxWidth(m.width).
		Render(fmt.Sprintf("%s  [%s]", status, m.backend))

	return Vertical(countsRow, tpu.Render(), statusBar, m.help.View(keys))
}

func (m dashboardModel) chartOrPlaceholder(slot Slot, width, height int) string {
	if view := m.swapper.View(slot, width, height); view != "" {
		return view
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Padding(1, 2).
		Render("Waiting for data...")
}

// Dashboard runs the terminal UI and the poller until the user quits
func Dashboard(ctx context.Context, panel *Panel, swapper *Swapper, poller *Poller, targets []string, backend string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewDashboard(panel, swapper, poller, targets, poller.Target(), backend)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	panel.OnChange(func() { p.Send(refreshedMsg{}) })

	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	_, err := p.Run()
	cancel()
	if pollErr := <-done; pollErr != nil {
		log.Printf("Poller exited with error: %v", pollErr)
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running bubbletea program: %w", err)
	}
	return nil
}
