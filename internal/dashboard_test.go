package monitop

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeTriggers struct {
	counts   int
	tpu      int
	selected []string
}

func (f *fakeTriggers) RefreshCounts()             { f.counts++ }
func (f *fakeTriggers) RefreshThroughput()         { f.tpu++ }
func (f *fakeTriggers) SelectTarget(target string) { f.selected = append(f.selected, target) }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashboardKeysDriveTriggers(t *testing.T) {
	t.Parallel()

	panel, _, _, swapper := newTestPanel(t)
	triggers := &fakeTriggers{}
	var m tea.Model = NewDashboard(panel, swapper, triggers, Targets, "chunks", "http://monitor.lan:8000")

	m, _ = m.Update(runes("r"))
	m, _ = m.Update(runes("t"))
	m, _ = m.Update(runes("l"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("h"))
	_, cmd := m.Update(runes("q"))

	if triggers.counts != 1 || triggers.tpu != 1 {
		t.Fatalf("counts=%d tpu=%d, want 1 and 1", triggers.counts, triggers.tpu)
	}
	want := []string{"candidates", "clones", "candidates"}
	if strings.Join(triggers.selected, ",") != strings.Join(want, ",") {
		t.Fatalf("selected = %v, want %v", triggers.selected, want)
	}
	if cmd == nil {
		t.Fatalf("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should quit")
	}
}

func TestDashboardViewShowsRegions(t *testing.T) {
	t.Parallel()

	panel, _, _, swapper := newTestPanel(t)
	var m tea.Model = NewDashboard(panel, swapper, &fakeTriggers{}, Targets, "files", "http://monitor.lan:8000")
	if got := m.View(); got != "Initializing..." {
		t.Fatalf("view before size = %q", got)
	}

	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	for _, want := range []string{"Loading…", "Status: —", "model: —", "Waiting for data...", "monitor.lan:8000"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	ctx := context.Background()
	if err := panel.RefreshCounts(ctx); err != nil {
		t.Fatalf("RefreshCounts: %v", err)
	}
	if err := panel.RefreshStatus(ctx); err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	m, _ = m.Update(refreshedMsg{})
	view = m.View()
	for _, want := range []string{"Latest sample: y", "Status: indexing", "Counts"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
