package grid

import (
	"math"

	"github.com/go-logr/logr"
)

// RowWindow is the half-open range of rows currently mounted.
type RowWindow struct {
	Start, End int
}

func (w RowWindow) Contains(i int) bool { return i >= w.Start && i < w.End }
func (w RowWindow) Len() int            { return w.End - w.Start }

// rowVirtualizer computes the mounted row window from the scroll offset,
// an adaptively measured row height and the configured overscan. Small
// tables below the activation threshold never pay virtualization cost.
type rowVirtualizer struct {
	threshold   int
	overscan    int
	estimatedPx float64
	measuredPx  float64            // 0 until the first mounted row reports
	heights     map[string]float64 // per-row-key measured heights

	disabled bool // bad configuration degrades to full rendering
	warned   bool
	log      logr.Logger
}

func newRowVirtualizer(threshold, overscan int, estimatedPx float64, log logr.Logger) *rowVirtualizer {
	v := &rowVirtualizer{
		threshold:   threshold,
		overscan:    overscan,
		estimatedPx: estimatedPx,
		heights:     make(map[string]float64),
		log:         log,
	}
	if estimatedPx <= 0 || math.IsNaN(estimatedPx) || math.IsInf(estimatedPx, 0) {
		// Misconfiguration is a degradation, not a failure: render the
		// full list instead.
		v.disabled = true
		v.warnOnce("disabling row virtualization: estimated row height is not a positive finite number", "estimatedPx", estimatedPx)
	}
	if threshold <= 0 {
		v.warnOnce("row virtualization threshold is not positive; using 1", "threshold", threshold)
		v.threshold = 1
	}
	if v.overscan < 0 {
		v.overscan = 0
	}
	return v
}

func (v *rowVirtualizer) warnOnce(msg string, kv ...any) {
	if v.warned {
		return
	}
	v.warned = true
	v.log.V(1).Info(msg, kv...)
}

// active reports whether windowing applies for the given row count.
func (v *rowVirtualizer) active(rowCount int) bool {
	return !v.disabled && rowCount >= v.threshold
}

// rowPx is the working row height: the measured height once known,
// otherwise the configured estimate.
func (v *rowVirtualizer) rowPx() float64 {
	if v.measuredPx > 0 {
		return v.measuredPx
	}
	return v.estimatedPx
}

// observe records a real measured height for a row key. The first
// observation corrects the seeded estimate; already-seen keys are not
// re-measured by callers thanks to the cache.
func (v *rowVirtualizer) observe(key string, px float64) {
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return
	}
	if _, seen := v.heights[key]; seen {
		return
	}
	v.heights[key] = px
	if v.measuredPx == 0 {
		v.measuredPx = px
	}
}

func (v *rowVirtualizer) measured(key string) (float64, bool) {
	px, ok := v.heights[key]
	return px, ok
}

// window computes the mounted range for a scroll offset and viewport
// height, expanded by overscan on both sides and clamped to the data.
func (v *rowVirtualizer) window(scrollTopPx, viewportPx float64, rowCount int) RowWindow {
	if rowCount <= 0 {
		return RowWindow{}
	}
	if !v.active(rowCount) {
		return RowWindow{Start: 0, End: rowCount}
	}
	rh := v.rowPx()
	start := int(math.Floor(scrollTopPx/rh)) - v.overscan
	visible := int(math.Ceil(viewportPx / rh))
	end := start + visible + 2*v.overscan
	if start < 0 {
		start = 0
	}
	if end > rowCount {
		end = rowCount
	}
	if start > end {
		start = end
	}
	return RowWindow{Start: start, End: end}
}

// totalPx is the full scroll height.
func (v *rowVirtualizer) totalPx(rowCount int) float64 {
	return v.rowPx() * float64(rowCount)
}

// offsetPx is the translation of the mounted window.
func (v *rowVirtualizer) offsetPx(start int) float64 {
	return v.rowPx() * float64(start)
}

// maxScroll clamps scrollTop so the viewport never runs past the data.
func (v *rowVirtualizer) maxScroll(viewportPx float64, rowCount int) float64 {
	m := v.totalPx(rowCount) - viewportPx
	if m < 0 {
		return 0
	}
	return m
}

// reset drops adaptive state; used when the backing data set is replaced.
func (v *rowVirtualizer) reset() {
	v.heights = make(map[string]float64)
	v.measuredPx = 0
}
