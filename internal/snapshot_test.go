package monitop

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRendererWritesPNG(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, err := NewSnapshotRenderer(dir)
	if err != nil {
		t.Fatalf("NewSnapshotRenderer: %v", err)
	}

	spec := BuildCounts([]Sample{
		{TS: ptr("a"), Files: ptr(1.0), Chunks: ptr(4.0)},
		{TS: ptr("b"), Files: ptr(2.0)},
		{TS: ptr("c"), Files: ptr(3.0), Chunks: ptr(6.0)},
	}).Spec()

	h, err := r.Render(SlotCounts, spec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	path := filepath.Join(dir, "counts.png")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Fatalf("snapshot is not a PNG")
	}
	if got := h.View(10, 10); got != "snapshot: "+path {
		t.Fatalf("view = %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSnapshotRendererScatterSinglePoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, _ := NewSnapshotRenderer(dir)
	frame := BuildThroughput("files", []ThroughputPoint{{N: 5, TPU: 0.3}}, FitModel{})
	if _, err := r.Render(SlotTPU, frame.Spec()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tpu.png")); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
}

func TestSnapshotRendererEmptySpec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, _ := NewSnapshotRenderer(dir)
	h, err := r.Render(SlotTPU, ChartSpec{Kind: ScatterChart})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if h.View(10, 10) != "" {
		t.Fatalf("empty spec should have no snapshot")
	}
	if _, err := os.Stat(filepath.Join(dir, "tpu.png")); !os.IsNotExist(err) {
		t.Fatalf("no file expected for empty spec")
	}
}

func TestSnapshotRendererEmptySpecRemovesPreviousFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r, _ := NewSnapshotRenderer(dir)
	frame := BuildThroughput("files", []ThroughputPoint{{N: 5, TPU: 0.3}, {N: 9, TPU: 0.2}}, FitModel{})
	if _, err := r.Render(SlotTPU, frame.Spec()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	path := filepath.Join(dir, "tpu.png")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	if _, err := r.Render(SlotTPU, BuildThroughput("chunks", nil, FitModel{}).Spec()); err != nil {
		t.Fatalf("Render empty: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale snapshot left on disk: %v", err)
	}
}

func TestLineSeriesSplitsOnGaps(t *testing.T) {
	t.Parallel()

	spec := ChartSpec{
		Kind:   LineChart,
		Labels: []string{"a", "b", "c", "d"},
		Series: []NamedSeries{{Name: "files", Values: []float64{1, Missing, 3, 4}}},
	}
	if got := len(lineSeries(spec)); got != 2 {
		t.Fatalf("broken series produced %d runs, want 2", got)
	}
	spec.SpanGaps = true
	if got := len(lineSeries(spec)); got != 1 {
		t.Fatalf("spanned series produced %d runs, want 1", got)
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(Slot, ChartSpec) (Handle, error) {
	return nil, errors.New("disk full")
}

func TestTeeRendererReleasesPrimaryOnFailure(t *testing.T) {
	t.Parallel()

	primary := newFakeRenderer()
	tee := TeeRenderer{Primary: primary, Secondary: failingRenderer{}}
	if _, err := tee.Render(SlotCounts, ChartSpec{}); err == nil {
		t.Fatalf("expected error")
	}
	if primary.liveCount(SlotCounts) != 0 {
		t.Fatalf("primary handle leaked")
	}

	ok := TeeRenderer{Primary: primary, Secondary: newFakeRenderer()}
	h, err := ok.Render(SlotCounts, ChartSpec{Title: "both"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if h.View(1, 1) != "both" {
		t.Fatalf("tee view should come from the primary")
	}
	if err := h.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if primary.liveCount(SlotCounts) != 0 {
		t.Fatalf("primary not released")
	}
}
