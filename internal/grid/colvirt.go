package grid

// Column virtualization: cumulative pixel offsets plus windowing against
// the horizontal scroll range, with sticky leading/trailing columns that
// are always mounted.

// colSpan is one column's horizontal extent.
type colSpan struct {
	startPx, endPx float64
}

// ColumnWindow names the mounted column range. Sticky columns outside
// [StartIndex, EndIndex) are mounted as well.
type ColumnWindow struct {
	StartIndex, EndIndex int
}

type colVirtualizer struct {
	enabled     bool
	stickyStart int // leading columns always mounted
	stickyEnd   int // trailing columns always mounted
	overscan    int
}

func newColVirtualizer(enabled bool, stickyStart, stickyEnd, overscan int) *colVirtualizer {
	if stickyStart < 0 {
		stickyStart = 0
	}
	if stickyEnd < 0 {
		stickyEnd = 0
	}
	if overscan < 0 {
		overscan = 0
	}
	return &colVirtualizer{enabled: enabled, stickyStart: stickyStart, stickyEnd: stickyEnd, overscan: overscan}
}

// spans computes cumulative start/end offsets from current widths.
func (v *colVirtualizer) spans(cols []Column, widthOf func(string) float64) []colSpan {
	out := make([]colSpan, len(cols))
	x := 0.0
	for i, c := range cols {
		w := widthOf(c.Key)
		out[i] = colSpan{startPx: x, endPx: x + w}
		x += w
	}
	return out
}

// window intersects the scroll range with each column's extent and
// expands by the overscan. With windowing disabled the full range is
// always visible.
func (v *colVirtualizer) window(scrollLeftPx, viewportPx float64, spans []colSpan) ColumnWindow {
	n := len(spans)
	if !v.enabled || n == 0 {
		return ColumnWindow{StartIndex: 0, EndIndex: n}
	}
	lo, hi := scrollLeftPx, scrollLeftPx+viewportPx
	start, end := n, 0
	for i, s := range spans {
		if s.endPx > lo && s.startPx < hi {
			if i < start {
				start = i
			}
			if i+1 > end {
				end = i + 1
			}
		}
	}
	if start > end { // nothing intersects
		start, end = 0, 0
	}
	start -= v.overscan
	end += v.overscan
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	return ColumnWindow{StartIndex: start, EndIndex: end}
}

// mounted returns the mounted column indices in display order: sticky
// leading, the window, sticky trailing.
func (v *colVirtualizer) mounted(w ColumnWindow, n int) []int {
	if !v.enabled {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	lead := v.stickyStart
	if lead > n {
		lead = n
	}
	trailFrom := n - v.stickyEnd
	if trailFrom < lead {
		trailFrom = lead
	}
	out := make([]int, 0, n)
	for i := 0; i < lead; i++ {
		out = append(out, i)
	}
	for i := w.StartIndex; i < w.EndIndex; i++ {
		if i < lead || i >= trailFrom {
			continue
		}
		out = append(out, i)
	}
	for i := trailFrom; i < n; i++ {
		out = append(out, i)
	}
	return out
}
