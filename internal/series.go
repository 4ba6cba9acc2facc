package monitop

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LABEL_LAYOUT is how sample timestamps are shown, in the local zone
const LABEL_LAYOUT = "2006-01-02 15:04:05"

// CountsFrame is one renderable frame of the counts view
type CountsFrame struct {
	Labels []string
	Series []NamedSeries
}

// BuildCounts turns samples into aligned labels and the four counter series.
// Absent counters become Missing, never zero.
func BuildCounts(samples []Sample) CountsFrame {
	frame := CountsFrame{
		Labels: make([]string, len(samples)),
		Series: []NamedSeries{
			{Name: "files", Values: make([]float64, len(samples))},
			{Name: "chunks", Values: make([]float64, len(samples))},
			{Name: "candidates", Values: make([]float64, len(samples))},
			{Name: "clones", Values: make([]float64, len(samples))},
		},
	}
	for i, s := range samples {
		frame.Labels[i] = LocalLabel(s.TS)
		frame.Series[0].Values[i] = valueOrMissing(s.Files)
		frame.Series[1].Values[i] = valueOrMissing(s.Chunks)
		frame.Series[2].Values[i] = valueOrMissing(s.Candidates)
		frame.Series[3].Values[i] = valueOrMissing(s.Clones)
	}
	return frame
}

// Meta is the text shown under the counts chart
func (f CountsFrame) Meta() string {
	if len(f.Labels) == 0 {
		return "No samples yet."
	}
	return "Latest sample: " + f.Labels[len(f.Labels)-1]
}

// Latest returns the last present value of each series, or Missing
func (f CountsFrame) Latest() []NamedSeries {
	out := make([]NamedSeries, len(f.Series))
	for i, series := range f.Series {
		v := Missing
		for j := len(series.Values) - 1; j >= 0; j-- {
			if !IsMissing(series.Values[j]) {
				v = series.Values[j]
				break
			}
		}
		out[i] = NamedSeries{Name: series.Name, Values: []float64{v}}
	}
	return out
}

// Spec describes the counts line chart. Gaps are spanned.
func (f CountsFrame) Spec() ChartSpec {
	return ChartSpec{
		Kind:        LineChart,
		Title:       "Counts",
		Labels:      f.Labels,
		Series:      f.Series,
		SpanGaps:    true,
		BeginAtZero: true,
	}
}

// ThroughputFrame is one renderable frame of the throughput view
type ThroughputFrame struct {
	Target  string
	Points  []XY
	Summary string
	Trend   string
}

// BuildThroughput turns the points and model for target into a scatter frame
func BuildThroughput(target string, points []ThroughputPoint, model FitModel) ThroughputFrame {
	xy := make([]XY, len(points))
	for i, p := range points {
		xy[i] = XY{X: p.N, Y: p.TPU}
	}
	frame := ThroughputFrame{
		Target:  target,
		Points:  xy,
		Summary: ModelSummary(model),
	}
	if model.Trend != nil && model.Trend.SlopeLastK != nil {
		frame.Trend = fmt.Sprintf("trend: slope(last k)=%.4g", *model.Trend.SlopeLastK)
	}
	return frame
}

// Spec describes the throughput scatter plot
func (f ThroughputFrame) Spec() ChartSpec {
	return ChartSpec{
		Kind:        ScatterChart,
		Title:       f.Target + " — tpu (s/unit)",
		XTitle:      "Total processed (N)",
		YTitle:      "time per unit (seconds)",
		Points:      f.Points,
		BeginAtZero: true,
	}
}

// ModelSummary renders a fit model as a single status line
func ModelSummary(model FitModel) string {
	if model.Preferred == nil || *model.Preferred == "" {
		return "model: —"
	}
	n := "—"
	if model.NPoints != nil {
		n = strconv.Itoa(*model.NPoints)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "model: %s | n=%s | ", *model.Preferred, n)
	fmt.Fprintf(&b, "lin R²=%.3f| exp R²=%.3f", r2(model.Linear), r2(model.Exponential))
	return b.String()
}

// LocalLabel formats a backend timestamp in local time. Nil or empty yields "".
func LocalLabel(ts *string) string {
	if ts == nil || *ts == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "Mon, 02 Jan 2006 15:04:05 MST"} {
		if t, err := time.Parse(layout, *ts); err == nil {
			return t.Local().Format(LABEL_LAYOUT)
		}
	}
	return *ts
}

func r2(stats *FitStats) float64 {
	if stats == nil || stats.R2 == nil {
		return Missing
	}
	return *stats.R2
}

func valueOrMissing(v *float64) float64 {
	if v == nil {
		return Missing
	}
	return *v
}
