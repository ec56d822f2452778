package grid

import "math"

// Metrics maps the grid's pixel geometry onto terminal cells. All layout
// math (widths, scroll offsets, row heights) happens in pixels; rendering
// quantizes to whole cells at the last moment.
type Metrics struct {
	CellPx float64 // horizontal advance of one cell
	RowPx  float64 // height of one text line
	EmPx   float64 // pixel value of 1em/1rem in width specs
}

// DefaultMetrics matches a typical monospace setup.
func DefaultMetrics() Metrics {
	return Metrics{CellPx: 8, RowPx: 21, EmPx: 16}
}

func (m Metrics) valid() bool {
	return m.CellPx > 0 && m.RowPx > 0 && m.EmPx > 0 &&
		!math.IsInf(m.CellPx, 0) && !math.IsInf(m.RowPx, 0)
}

// Cells converts a horizontal pixel extent to whole cells, never negative.
func (m Metrics) Cells(px float64) int {
	if px <= 0 || math.IsNaN(px) {
		return 0
	}
	return int(math.Round(px / m.CellPx))
}

// Px converts a horizontal cell count to pixels.
func (m Metrics) Px(cells int) float64 {
	return float64(cells) * m.CellPx
}

// Lines converts a vertical pixel extent to whole lines, never negative.
func (m Metrics) Lines(px float64) int {
	if px <= 0 || math.IsNaN(px) {
		return 0
	}
	return int(math.Round(px / m.RowPx))
}

// LinePx converts a line count to pixels.
func (m Metrics) LinePx(lines int) float64 {
	return float64(lines) * m.RowPx
}
