package monitop

import (
	"fmt"
	"math"
)

// Slot names a rendering destination that holds at most one live chart
type Slot string

const (
	SlotCounts Slot = "counts"
	SlotTPU    Slot = "tpu"
)

// ChartKind selects how a ChartSpec is drawn
type ChartKind int

const (
	LineChart ChartKind = iota
	ScatterChart
)

// Missing marks an absent value in a series. It is NaN so it can never be mistaken for zero.
var Missing = math.NaN()

// IsMissing reports whether v is the missing marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// NamedSeries is one line of a line chart, aligned with ChartSpec.Labels
type NamedSeries struct {
	Name   string
	Values []float64
}

// XY is one scatter point
type XY struct {
	X, Y float64
}

// ChartSpec is the declarative description a Renderer turns into a Handle
type ChartSpec struct {
	Kind   ChartKind
	Title  string
	XTitle string
	YTitle string

	// Line charts
	Labels   []string
	Series   []NamedSeries
	SpanGaps bool

	// Scatter charts
	Points []XY

	BeginAtZero bool
}

// Validate checks the spec is internally consistent
func (s ChartSpec) Validate() error {
	switch s.Kind {
	case LineChart:
		for _, series := range s.Series {
			if len(series.Values) != len(s.Labels) {
				return fmt.Errorf("series %q has %d values for %d labels", series.Name, len(series.Values), len(s.Labels))
			}
		}
	case ScatterChart:
		for i, p := range s.Points {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				return fmt.Errorf("scatter point %d is not a number", i)
			}
		}
	default:
		return fmt.Errorf("unknown chart kind %d", s.Kind)
	}
	return nil
}

// Empty reports whether the spec has nothing to plot
func (s ChartSpec) Empty() bool {
	if s.Kind == ScatterChart {
		return len(s.Points) == 0
	}
	for _, series := range s.Series {
		for _, v := range series.Values {
			if !IsMissing(v) {
				return false
			}
		}
	}
	return true
}

// Handle is a rendered chart bound to one slot
type Handle interface {
	// View draws the chart into a width x height block of terminal text
	View(width, height int) string
	// Release frees the handle; it must not be used afterwards
	Release() error
}

// Renderer constructs chart handles from specs
type Renderer interface {
	Render(slot Slot, spec ChartSpec) (Handle, error)
}

// yRange returns the value range over all present values
func (s ChartSpec) yRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	visit := func(v float64) {
		if IsMissing(v) {
			return
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if s.Kind == ScatterChart {
		for _, p := range s.Points {
			visit(p.Y)
		}
	} else {
		for _, series := range s.Series {
			for _, v := range series.Values {
				visit(v)
			}
		}
	}
	if !ok {
		return 0, 1, false
	}
	if s.BeginAtZero && lo > 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi, true
}

// xRange returns the scatter x range
func (s ChartSpec) xRange() (lo, hi float64) {
	if len(s.Points) == 0 {
		return 0, 1
	}
	lo, hi = s.Points[0].X, s.Points[0].X
	for _, p := range s.Points[1:] {
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X)
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}
