package monitop

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
)

// SeriesColors are assigned to line series in order
var SeriesColors = []ui.Color{ui.ColorCyan, ui.ColorYellow, ui.ColorMagenta, ui.ColorGreen, ui.ColorRed, ui.ColorBlue}

// BrailleRenderer draws charts with termui's braille canvas
type BrailleRenderer struct{}

// NewBrailleRenderer creates a terminal chart renderer
func NewBrailleRenderer() *BrailleRenderer {
	return &BrailleRenderer{}
}

// Render validates spec and returns a handle that draws it on demand
func (r *BrailleRenderer) Render(slot Slot, spec ChartSpec) (Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &brailleHandle{slot: slot, spec: spec}, nil
}

type brailleHandle struct {
	slot Slot
	spec ChartSpec

	mu       sync.Mutex
	released bool
	width    int
	height   int
	view     string
}

func (h *brailleHandle) View(width, height int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released || width < 12 || height < 4 {
		return ""
	}
	if h.view != "" && h.width == width && h.height == height {
		return h.view
	}
	h.width, h.height = width, height
	h.view = bufferString(h.draw(width, height))
	return h.view
}

func (h *brailleHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return fmt.Errorf("%s chart released twice", h.slot)
	}
	h.released = true
	h.view = ""
	return nil
}

// draw lays out a title row, the plot area with y labels on its left, and an x label row
func (h *brailleHandle) draw(width, height int) *ui.Buffer {
	spec := h.spec
	buf := ui.NewBuffer(image.Rect(0, 0, width, height))
	axisStyle := ui.NewStyle(ui.ColorWhite)

	h.drawTitle(buf)

	lo, hi, _ := spec.yRange()
	top, bottom := formatTick(hi), formatTick(lo)
	labelWidth := max(len(top), len(bottom))
	buf.SetString(fmt.Sprintf("%*s", labelWidth, top), axisStyle, image.Pt(0, 1))
	buf.SetString(fmt.Sprintf("%*s", labelWidth, bottom), axisStyle, image.Pt(0, height-2))

	plot := image.Rect(labelWidth+1, 1, width, height-1)
	c := ui.NewCanvas()
	c.SetRect(plot.Min.X, plot.Min.Y, plot.Max.X, plot.Max.Y)

	// braille sub-pixel bounds of the plot area
	x0, x1 := plot.Min.X*2, plot.Max.X*2-1
	y0, y1 := plot.Min.Y*4, plot.Max.Y*4-1
	toY := func(v float64) int {
		return y1 - int(math.Round((v-lo)/(hi-lo)*float64(y1-y0)))
	}

	switch spec.Kind {
	case LineChart:
		n := len(spec.Labels)
		toX := func(i int) int {
			if n == 1 {
				return (x0 + x1) / 2
			}
			return x0 + int(math.Round(float64(i)*float64(x1-x0)/float64(n-1)))
		}
		for si, series := range spec.Series {
			color := SeriesColors[si%len(SeriesColors)]
			var prev image.Point
			havePrev := false
			for i, v := range series.Values {
				if IsMissing(v) {
					if !spec.SpanGaps {
						havePrev = false
					}
					continue
				}
				p := image.Pt(toX(i), toY(v))
				if havePrev {
					c.SetLine(prev, p, color)
				} else {
					c.SetPoint(p, color)
				}
				prev, havePrev = p, true
			}
		}
		if n > 0 {
			buf.SetString(spec.Labels[0], axisStyle, image.Pt(plot.Min.X, height-1))
			last := spec.Labels[n-1]
			if n > 1 && plot.Max.X-len(last) > plot.Min.X+len(spec.Labels[0]) {
				buf.SetString(last, axisStyle, image.Pt(plot.Max.X-len(last), height-1))
			}
		}
	case ScatterChart:
		xlo, xhi := spec.xRange()
		for _, p := range spec.Points {
			px := x0 + int(math.Round((p.X-xlo)/(xhi-xlo)*float64(x1-x0)))
			c.SetPoint(image.Pt(px, toY(p.Y)), SeriesColors[0])
		}
		left, right := formatTick(xlo), formatTick(xhi)
		buf.SetString(left, axisStyle, image.Pt(plot.Min.X, height-1))
		buf.SetString(right, axisStyle, image.Pt(plot.Max.X-len(right), height-1))
		if mid := plot.Min.X + (plot.Dx()-len(spec.XTitle))/2; spec.XTitle != "" && mid > plot.Min.X+len(left) {
			buf.SetString(spec.XTitle, ui.NewStyle(ui.ColorClear), image.Pt(mid, height-1))
		}
	}

	c.Draw(buf)
	return buf
}

func (h *brailleHandle) drawTitle(buf *ui.Buffer) {
	spec := h.spec
	if spec.Kind == ScatterChart {
		title := spec.Title
		if spec.YTitle != "" {
			title += "  [y: " + spec.YTitle + "]"
		}
		buf.SetString(title, ui.NewStyle(SeriesColors[0]), image.Pt(0, 0))
		return
	}
	x := 0
	for si, series := range spec.Series {
		item := "■ " + series.Name + "  "
		buf.SetString(item, ui.NewStyle(SeriesColors[si%len(SeriesColors)]), image.Pt(x, 0))
		x += len([]rune(item))
	}
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// bufferString converts a termui buffer into lipgloss-styled text, one line per row
func bufferString(buf *ui.Buffer) string {
	rect := buf.Rectangle
	lines := make([]string, 0, rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		var line, run strings.Builder
		runColor := ui.ColorClear
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == ui.ColorClear {
				line.WriteString(run.String())
			} else {
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(int(runColor))))
				line.WriteString(style.Render(run.String()))
			}
			run.Reset()
		}
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cell := buf.GetCell(image.Pt(x, y))
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			if cell.Style.Fg != runColor {
				flush()
				runColor = cell.Style.Fg
			}
			run.WriteRune(r)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
