package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit qualifies a width value.
type Unit int

const (
	UnitPx Unit = iota
	UnitEm
	UnitRem
	UnitPercent
	UnitAuto
)

func (u Unit) String() string {
	switch u {
	case UnitEm:
		return "em"
	case UnitRem:
		return "rem"
	case UnitPercent:
		return "%"
	case UnitAuto:
		return "auto"
	default:
		return "px"
	}
}

// WidthSpec is a width constraint as declared on a column: a number with a
// unit, "auto", or nothing at all (Set == false).
type WidthSpec struct {
	Value float64
	Unit  Unit
	Set   bool
}

// Px builds a pixel width spec.
func Px(v float64) WidthSpec { return WidthSpec{Value: v, Unit: UnitPx, Set: true} }

// Auto builds the auto width spec.
func Auto() WidthSpec { return WidthSpec{Unit: UnitAuto, Set: true} }

// ParseWidth accepts "120", "120px", "7em", "1.5rem", "30%" and "auto".
func ParseWidth(s string) (WidthSpec, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return WidthSpec{}, nil
	}
	if s == "auto" {
		return Auto(), nil
	}
	unit := UnitPx
	num := s
	switch {
	case strings.HasSuffix(s, "px"):
		num = s[:len(s)-2]
	case strings.HasSuffix(s, "rem"):
		unit, num = UnitRem, s[:len(s)-3]
	case strings.HasSuffix(s, "em"):
		unit, num = UnitEm, s[:len(s)-2]
	case strings.HasSuffix(s, "%"):
		unit, num = UnitPercent, s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return WidthSpec{}, fmt.Errorf("grid: bad width %q: %w", s, err)
	}
	return WidthSpec{Value: v, Unit: unit, Set: true}, nil
}

// Resolve turns the spec into pixels against the given metrics and
// viewport. Auto and unset specs resolve to (0, false).
func (w WidthSpec) Resolve(m Metrics, viewportPx float64) (float64, bool) {
	if !w.Set || w.Unit == UnitAuto {
		return 0, false
	}
	switch w.Unit {
	case UnitEm, UnitRem:
		return w.Value * m.EmPx, true
	case UnitPercent:
		return w.Value / 100 * viewportPx, true
	default:
		return w.Value, true
	}
}

// Role drives built-in width fallbacks and measurement probe selection.
type Role int

const (
	RoleOther Role = iota
	RoleName       // primary name column
	RoleKind       // identity/type column, rendered as a badge
)

// Built-in fallback widths by role, used at the end of the seeding chain.
const (
	fallbackNamePx  = 250
	fallbackKindPx  = 100
	fallbackOtherPx = 150

	// defaultMinPx bounds how far any column can shrink when no explicit
	// MinWidth is declared.
	defaultMinPx = 40
)

func fallbackWidth(r Role) float64 {
	switch r {
	case RoleName:
		return fallbackNamePx
	case RoleKind:
		return fallbackKindPx
	default:
		return fallbackOtherPx
	}
}

// Column describes one column for a render pass. Values are treated as
// immutable once handed to the grid.
type Column struct {
	Key      string
	Title    string
	Render   func(Row) string
	Sortable bool

	Width    WidthSpec
	MinWidth WidthSpec
	MaxWidth WidthSpec

	// AutoWidth opts the column into content measurement.
	AutoWidth bool
	// Fixed marks an identity column that is never windowed away and never
	// part of a resize gesture.
	Fixed bool
	Role  Role
	// Badge routes measurement through the badge probe so its padding and
	// border are included.
	Badge bool
}

func (c Column) cell(r Row) string {
	if c.Render == nil {
		return ""
	}
	return c.Render(r)
}

// minPx resolves the lower bound for this column in pixels.
func (c Column) minPx(m Metrics, viewportPx float64) float64 {
	if v, ok := c.MinWidth.Resolve(m, viewportPx); ok && v > 0 {
		return v
	}
	return defaultMinPx
}

// maxPx resolves the upper bound, +Inf when unset.
func (c Column) maxPx(m Metrics, viewportPx float64) float64 {
	if v, ok := c.MaxWidth.Resolve(m, viewportPx); ok && v > 0 {
		return v
	}
	return math.Inf(1)
}

// clampPx forces px into the column's bounds.
func (c Column) clampPx(m Metrics, viewportPx, px float64) float64 {
	lo, hi := c.minPx(m, viewportPx), c.maxPx(m, viewportPx)
	if px < lo {
		return lo
	}
	if px > hi {
		return hi
	}
	return px
}

func columnIndex(cols []Column, key string) int {
	for i := range cols {
		if cols[i].Key == key {
			return i
		}
	}
	return -1
}
