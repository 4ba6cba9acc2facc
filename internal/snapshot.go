package monitop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	SNAPSHOT_WIDTH  = 1024
	SNAPSHOT_HEIGHT = 400
)

var snapshotColors = []drawing.Color{chart.ColorBlue, chart.ColorOrange, chart.ColorRed, chart.ColorGreen}

// SnapshotRenderer writes every chart it constructs to <dir>/<slot>.png
type SnapshotRenderer struct {
	dir string
}

// NewSnapshotRenderer creates dir if needed and returns a PNG renderer writing into it
func NewSnapshotRenderer(dir string) (*SnapshotRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &SnapshotRenderer{dir: dir}, nil
}

// Render draws spec with go-chart. An empty spec removes the slot's previous file.
func (r *SnapshotRenderer) Render(slot Slot, spec ChartSpec) (Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	h := &snapshotHandle{}
	path := filepath.Join(r.dir, string(slot)+".png")
	if spec.Empty() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale snapshot: %w", err)
		}
		return h, nil
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      SNAPSHOT_WIDTH,
		Height:     SNAPSHOT_HEIGHT,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: spec.XTitle},
		YAxis:      chart.YAxis{Name: spec.YTitle},
	}
	lo, hi, _ := spec.yRange()
	ch.YAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}

	switch spec.Kind {
	case LineChart:
		ch.Series = lineSeries(spec)
		ch.XAxis.Ticks = labelTicks(spec.Labels)
	case ScatterChart:
		xs := make([]float64, len(spec.Points))
		ys := make([]float64, len(spec.Points))
		for i, p := range spec.Points {
			xs[i], ys[i] = p.X, p.Y
		}
		xs, ys = padSingle(xs, ys)
		ch.Series = []chart.Series{chart.ContinuousSeries{
			Name:    spec.Title,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    snapshotColors[0],
			},
		}}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	tmp, err := os.CreateTemp(r.dir, "."+string(slot)+"-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := ch.Render(chart.PNG, tmp); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to render snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to publish snapshot: %w", err)
	}
	h.path = path
	return h, nil
}

// lineSeries splits each named series into continuous runs of present values.
// With SpanGaps the missing points are dropped and the run continues across them.
func lineSeries(spec ChartSpec) []chart.Series {
	var out []chart.Series
	for si, series := range spec.Series {
		style := chart.Style{StrokeColor: snapshotColors[si%len(snapshotColors)], StrokeWidth: 2}
		var xs, ys []float64
		name := series.Name
		emit := func() {
			if len(xs) == 0 {
				return
			}
			px, py := padSingle(xs, ys)
			out = append(out, chart.ContinuousSeries{Name: name, XValues: px, YValues: py, Style: style})
			// only the first run of a series gets a legend entry
			name = ""
			xs, ys = nil, nil
		}
		for i, v := range series.Values {
			if IsMissing(v) {
				if !spec.SpanGaps {
					emit()
				}
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
		emit()
	}
	return out
}

// padSingle widens a single point so go-chart has a non-zero x range
func padSingle(xs, ys []float64) ([]float64, []float64) {
	if len(xs) != 1 {
		return xs, ys
	}
	return []float64{xs[0], xs[0] + 1}, []float64{ys[0], ys[0]}
}

func labelTicks(labels []string) []chart.Tick {
	if len(labels) < 2 {
		return nil
	}
	last := len(labels) - 1
	return []chart.Tick{
		{Value: 0, Label: labels[0]},
		{Value: float64(last) / 2, Label: labels[last/2]},
		{Value: float64(last), Label: labels[last]},
	}
}

type snapshotHandle struct {
	path     string
	released bool
}

func (h *snapshotHandle) View(width, height int) string {
	if h.released || h.path == "" {
		return ""
	}
	return "snapshot: " + h.path
}

func (h *snapshotHandle) Release() error {
	if h.released {
		return errors.New("snapshot released twice")
	}
	h.released = true
	return nil
}

// TeeRenderer constructs a handle with both renderers. The primary handle provides the view.
type TeeRenderer struct {
	Primary   Renderer
	Secondary Renderer
}

func (t TeeRenderer) Render(slot Slot, spec ChartSpec) (Handle, error) {
	primary, err := t.Primary.Render(slot, spec)
	if err != nil {
		return nil, err
	}
	secondary, err := t.Secondary.Render(slot, spec)
	if err != nil {
		return nil, errors.Join(err, primary.Release())
	}
	return teeHandle{primary: primary, secondary: secondary}, nil
}

type teeHandle struct {
	primary, secondary Handle
}

func (h teeHandle) View(width, height int) string {
	return h.primary.View(width, height)
}

func (h teeHandle) Release() error {
	return errors.Join(h.primary.Release(), h.secondary.Release())
}
