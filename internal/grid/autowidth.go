package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Auto-width measurement: per auto-sized column a cheap signature of the
// visible rendered content decides whether an off-screen re-measurement
// is worth doing at all. Measurement is debounced and rate limited, and a
// flush that races virtualization (cells not mounted yet) retries shortly
// instead of giving up.

const (
	autoWidthDebounce    = 280 * time.Millisecond
	autoWidthMinInterval = 200 * time.Millisecond
	autoWidthRetryDelay  = 50 * time.Millisecond

	// measureSampleMax bounds how many rows the probe looks at; larger
	// data sets are sampled with an even stride.
	measureSampleMax = 400

	// probePaddingPx approximates the horizontal padding the rendered
	// cell carries around its content.
	probePaddingPx = 16
	// badgeExtraPx is the additional padding and border of the badge
	// probe used for kind/type columns.
	badgeExtraPx = 12
)

type autoWidthQueue struct {
	debounce    time.Duration
	minInterval time.Duration
	retryDelay  time.Duration

	dirty       map[string]struct{}
	sigs        map[string]string // last successfully measured signature
	allowShrink map[string]struct{}
	lastFlush   time.Time
	now         func() time.Time
}

func newAutoWidthQueue(now func() time.Time) *autoWidthQueue {
	if now == nil {
		now = time.Now
	}
	return &autoWidthQueue{
		debounce:    autoWidthDebounce,
		minInterval: autoWidthMinInterval,
		retryDelay:  autoWidthRetryDelay,
		dirty:       make(map[string]struct{}),
		sigs:        make(map[string]string),
		allowShrink: make(map[string]struct{}),
		now:         now,
	}
}

// markDirty queues columns for re-measurement. Columns under a manual
// resize flag are never queued.
func (q *autoWidthQueue) markDirty(wm *widthModel, keys ...string) {
	for _, k := range keys {
		if wm.isManual(k) {
			continue
		}
		q.dirty[k] = struct{}{}
	}
}

// markAllowShrink permits the next applied measurement for key to shrink
// the column. Set right after an explicit auto-size or reset; consumed by
// the flush that uses it.
func (q *autoWidthQueue) markAllowShrink(key string) {
	q.allowShrink[key] = struct{}{}
}

func (q *autoWidthQueue) hasDirty() bool { return len(q.dirty) > 0 }

// flushDelay is how long a newly scheduled flush should wait: the
// debounce, stretched so flushes never run more often than minInterval.
func (q *autoWidthQueue) flushDelay() time.Duration {
	d := q.debounce
	if since := q.now().Sub(q.lastFlush); since < q.minInterval {
		if wait := q.minInterval - since; wait > d {
			d = wait
		}
	}
	return d
}

// prune forgets per-column state for columns that left the visible set.
func (q *autoWidthQueue) prune(visible map[string]struct{}) {
	for k := range q.sigs {
		if _, ok := visible[k]; !ok {
			delete(q.sigs, k)
		}
	}
	for k := range q.dirty {
		if _, ok := visible[k]; !ok {
			delete(q.dirty, k)
		}
	}
	for k := range q.allowShrink {
		if _, ok := visible[k]; !ok {
			delete(q.allowShrink, k)
		}
	}
}

type flushInput struct {
	cols        []Column // visible columns in order
	mountedRows []Row    // rows mounted by the current window
	mountedCols map[string]struct{}
	list        List
	wm          *widthModel
	metrics     Metrics
	viewportPx  float64
}

type flushResult struct {
	updates map[string]float64
	retry   bool // some column's cells were not mounted yet
}

// flush processes the dirty set. Unchanged signatures are skipped without
// any measurement; not-yet-mounted columns stay dirty and ask for a
// retry; everything else is measured off-screen, clamped and — unless the
// column was explicitly allowed to shrink — applied only if it grows.
func (q *autoWidthQueue) flush(in flushInput) flushResult {
	res := flushResult{updates: make(map[string]float64)}
	q.lastFlush = q.now()
	for key := range q.dirty {
		i := columnIndex(in.cols, key)
		if i < 0 {
			delete(q.dirty, key)
			continue
		}
		c := in.cols[i]
		if !c.AutoWidth || in.wm.isManual(key) {
			delete(q.dirty, key)
			continue
		}
		if _, mounted := in.mountedCols[key]; !mounted || len(in.mountedRows) == 0 {
			// Virtualization race: the window has not mounted this
			// column's cells yet.
			res.retry = true
			continue
		}
		sig := contentSignature(c, in.mountedRows, in.metrics)
		if sig == q.sigs[key] {
			delete(q.dirty, key)
			continue
		}
		natural := measureColumn(c, in.list, in.metrics)
		px := c.clampPx(in.metrics, in.viewportPx, natural)
		cur := in.wm.widthOf(key)
		_, shrinkOK := q.allowShrink[key]
		if px > cur || shrinkOK {
			res.updates[key] = px
			delete(q.allowShrink, key)
		}
		q.sigs[key] = sig
		in.wm.setNatural(key, natural)
		delete(q.dirty, key)
	}
	return res
}

// contentSignature summarizes a column's mounted cells: count plus each
// cell's pixel width and text. Cheap to build, cheap to compare.
func contentSignature(c Column, rows []Row, m Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", len(rows))
	for _, r := range rows {
		text := c.cell(r)
		fmt.Fprintf(&b, "|%.0f:%s", cellPx(text, m), text)
	}
	return b.String()
}

// cellPx is the natural pixel width of one cell's plain text.
func cellPx(text string, m Metrics) float64 {
	return float64(runewidth.StringWidth(text)) * m.CellPx
}

// measureColumn renders the header plus a bounded, evenly strided sample
// of rows through an off-screen probe and returns the maximum natural
// width observed. Badge columns are measured through the badge probe so
// their padding and border count.
func measureColumn(c Column, list List, m Metrics) float64 {
	pad := float64(probePaddingPx)
	if c.Badge {
		pad += badgeExtraPx
	}
	maxPx := cellPx(c.Title, m) + probePaddingPx
	n := list.Len()
	stride := 1
	if n > measureSampleMax {
		stride = (n + measureSampleMax - 1) / measureSampleMax
	}
	for i := 0; i < n; i += stride {
		rows := list.Lines(i, 1)
		if len(rows) == 0 {
			continue
		}
		if px := cellPx(c.cell(rows[0]), m) + pad; px > maxPx {
			maxPx = px
		}
	}
	return maxPx
}
