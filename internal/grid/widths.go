package grid

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// WidthSource records which authority produced a column's current width.
// At most one authoritative width exists per column at a time; user
// resizes and controlled widths outrank auto measurement until reset.
type WidthSource int

const (
	SourceColumnDefault WidthSource = iota
	SourceTableProvided
	SourceAutoMeasured
	SourceUserResized
)

func (s WidthSource) String() string {
	switch s {
	case SourceTableProvided:
		return "table-provided"
	case SourceAutoMeasured:
		return "auto-measured"
	case SourceUserResized:
		return "user-resized"
	default:
		return "column-default"
	}
}

// ColumnWidth is the authoritative width state for one column.
type ColumnWidth struct {
	Px        float64
	Unit      Unit
	Source    WidthSource
	UpdatedAt time.Time
}

// widthEpsilonPx suppresses re-render storms from floating-point noise:
// a commit only counts as a change when some visible column moves by more
// than this.
const widthEpsilonPx = 0.1

// widthModel owns per-column pixel widths. It is mutated by the resize
// controller, the auto-width queue and external reconciliation, and read
// by everything that lays out columns.
type widthModel struct {
	metrics Metrics
	now     func() time.Time

	widths  map[string]ColumnWidth
	manual  map[string]struct{} // user-resized flags
	natural map[string]float64  // last successful auto measurement
	seeded  map[string]struct{} // keys already seeded for this column set
}

func newWidthModel(m Metrics, now func() time.Time) *widthModel {
	if now == nil {
		now = time.Now
	}
	return &widthModel{
		metrics: m,
		now:     now,
		widths:  make(map[string]ColumnWidth),
		manual:  make(map[string]struct{}),
		natural: make(map[string]float64),
		seeded:  make(map[string]struct{}),
	}
}

// seed assigns one width per not-yet-seeded column from the priority
// chain: controlled external width, caller-supplied initial override, the
// column's own default, then the built-in fallback by role.
func (w *widthModel) seed(cols []Column, controlled, initial map[string]float64, viewportPx float64) {
	for _, c := range cols {
		if _, done := w.seeded[c.Key]; done {
			continue
		}
		w.seeded[c.Key] = struct{}{}
		px, unit, src := 0.0, UnitPx, SourceColumnDefault
		switch {
		case controlled != nil && has(controlled, c.Key):
			px, src = controlled[c.Key], SourceTableProvided
		case initial != nil && has(initial, c.Key):
			px, src = initial[c.Key], SourceTableProvided
		default:
			if v, ok := c.Width.Resolve(w.metrics, viewportPx); ok {
				px, unit = v, c.Width.Unit
			} else {
				px = fallbackWidth(c.Role)
			}
		}
		w.widths[c.Key] = ColumnWidth{Px: px, Unit: unit, Source: src, UpdatedAt: w.now()}
	}
}

func has(m map[string]float64, k string) bool { _, ok := m[k]; return ok }

// widthOf returns the current width for key, or 0 when unknown.
func (w *widthModel) widthOf(key string) float64 {
	return w.widths[key].Px
}

func (w *widthModel) state(key string) (ColumnWidth, bool) {
	cw, ok := w.widths[key]
	return cw, ok
}

// apply commits a batch of width updates with a common source. It mutates
// nothing unless at least one visible column moves by more than the
// epsilon, and reports whether a change was committed.
func (w *widthModel) apply(updates map[string]float64, src WidthSource, visible map[string]struct{}) bool {
	changed := false
	for key, px := range updates {
		if _, vis := visible[key]; !vis {
			continue
		}
		if math.Abs(px-w.widths[key].Px) > widthEpsilonPx {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}
	for key, px := range updates {
		prev := w.widths[key]
		w.widths[key] = ColumnWidth{Px: px, Unit: prev.Unit, Source: src, UpdatedAt: w.now()}
	}
	return true
}

// setOne commits a single width regardless of batch semantics, still
// honoring the epsilon. Used by the resize controller's frame commits.
func (w *widthModel) setOne(key string, px float64, src WidthSource) bool {
	prev := w.widths[key]
	if math.Abs(px-prev.Px) <= widthEpsilonPx && prev.Source == src {
		return false
	}
	w.widths[key] = ColumnWidth{Px: px, Unit: prev.Unit, Source: src, UpdatedAt: w.now()}
	return true
}

func (w *widthModel) markManual(key string)             { w.manual[key] = struct{}{} }
func (w *widthModel) clearManual(key string)            { delete(w.manual, key) }
func (w *widthModel) isManual(key string) bool          { _, ok := w.manual[key]; return ok }
func (w *widthModel) setNatural(key string, px float64) { w.natural[key] = px }
func (w *widthModel) naturalOf(key string) (float64, bool) {
	px, ok := w.natural[key]
	return px, ok
}

// prune drops manual flags and natural-width cache entries for columns no
// longer in the visible set, so a column that later reappears starts
// clean instead of inheriting stale widths.
func (w *widthModel) prune(visible map[string]struct{}) {
	for key := range w.manual {
		if _, ok := visible[key]; !ok {
			delete(w.manual, key)
		}
	}
	for key := range w.natural {
		if _, ok := visible[key]; !ok {
			delete(w.natural, key)
		}
	}
}

// snapshot returns a copy of the current widths in pixels.
func (w *widthModel) snapshot() map[string]float64 {
	out := make(map[string]float64, len(w.widths))
	for k, v := range w.widths {
		out[k] = v.Px
	}
	return out
}

// signature serializes widths for change detection on the notification
// sink. Quantized to the epsilon so float noise cannot fire callbacks.
func widthsSignature(widths map[string]float64) string {
	keys := make([]string, 0, len(widths))
	for k := range widths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%.1f;", k, widths[k])
	}
	return b.String()
}

// visibilitySignature serializes visibility overrides the same way.
func visibilitySignature(vis map[string]bool) string {
	keys := make([]string, 0, len(vis))
	for k := range vis {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%t;", k, vis[k])
	}
	return b.String()
}
