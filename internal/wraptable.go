package monitop

import (
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable renders rows as lipgloss tables placed side by side when they
// would not fit in maxHeight lines
type WrapTable struct {
	headers   []string
	rows      [][]string
	maxHeight int
}

func NewWrapTable() *WrapTable {
	return &WrapTable{}
}

func (wt *WrapTable) Headers(headers ...string) *WrapTable {
	wt.headers = headers
	return wt
}

func (wt *WrapTable) Rows(rows ...[]string) *WrapTable {
	wt.rows = rows
	return wt
}

func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return ""
	}

	// header line plus top, bottom and header separator borders
	rowsPerTable := max(wt.maxHeight-4, 1)

	var tables []string
	for i := 0; i < len(wt.rows); i += rowsPerTable {
		end := min(i+rowsPerTable, len(wt.rows))
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			Headers(wt.headers...).
			Rows(wt.rows[i:end]...)
		tables = append(tables, t.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

// LatestTable shows the most recent present value of each counter
func LatestTable(latest []NamedSeries, maxHeight int) string {
	if len(latest) == 0 {
		return "Waiting for data..."
	}
	rows := make([][]string, 0, len(latest))
	for _, series := range latest {
		value := "—"
		if len(series.Values) > 0 && !IsMissing(series.Values[0]) {
			value = formatCount(series.Values[0])
		}
		rows = append(rows, []string{series.Name, value})
	}
	return NewWrapTable().
		Headers("Counter", "Latest").
		MaxHeight(maxHeight).
		Rows(rows...).
		Render()
}

func formatCount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
