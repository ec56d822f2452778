package grid

import tea "github.com/charmbracelet/bubbletea/v2"

// Context menu targeting: disambiguates cell vs header vs empty-area
// interactions from pointer or keyboard, and computes the menu anchor.
// The menu itself is rendered by the embedding shell; the grid only
// produces requests.

// MenuSource tells where a menu request originated.
type MenuSource int

const (
	MenuCell MenuSource = iota
	MenuHeader
	MenuEmpty
)

// MenuItem is one entry of a context menu.
type MenuItem struct {
	Title    string
	Disabled bool
	Do       func() tea.Cmd
}

// MenuRequest asks the shell to open a context menu at an anchor given in
// grid-local cell coordinates.
type MenuRequest struct {
	X, Y      int
	Source    MenuSource
	ColumnKey string
	Row       Row // nil for header and empty-area menus
	Items     []MenuItem
}

// colHit describes what a horizontal cell coordinate lands on.
type colHit struct {
	index int    // index into cols
	key   string // column under x

	// sep is set within one cell of a boundary between two resizable
	// neighbors; leftKey/rightKey name the pair.
	sep               bool
	leftKey, rightKey string
	// boundaryPx is the pixel position of the separator, used as the
	// drag start reference.
	boundaryPx float64
}

// hitColumns resolves x against the mounted columns. widths are the
// rendered cell widths aligned with mountedIdx.
func hitColumns(cols []Column, mountedIdx []int, widths []int, m Metrics, x int) (colHit, bool) {
	edge := 0
	for i, ci := range mountedIdx {
		next := edge + widths[i]
		if x >= edge && x < next {
			h := colHit{index: ci, key: cols[ci].Key}
			// Within one cell of the right boundary and a right neighbor
			// exists: this is the resize handle between the pair.
			if i+1 < len(mountedIdx) && x >= next-1 {
				h.sep = true
				h.leftKey = cols[ci].Key
				h.rightKey = cols[mountedIdx[i+1]].Key
				h.boundaryPx = m.Px(next)
			}
			return h, true
		}
		edge = next
	}
	return colHit{}, false
}

// cellMenu decides whether a cell interaction opens a menu: only when the
// caller supplied custom items for the row, or the column is sortable and
// a sort callback exists. Otherwise the interaction passes through.
func cellMenu(row Row, col Column, custom []MenuItem, canSort bool, x, y int) (MenuRequest, bool) {
	if len(custom) == 0 && !(col.Sortable && canSort) {
		return MenuRequest{}, false
	}
	return MenuRequest{
		X:         x,
		Y:         y,
		Source:    MenuCell,
		ColumnKey: col.Key,
		Row:       row,
		Items:     custom,
	}, true
}

// headerMenu opens on a header cell when sorting is available there.
func headerMenu(col Column, canSort bool, x, y int) (MenuRequest, bool) {
	if !col.Sortable || !canSort {
		return MenuRequest{}, false
	}
	return MenuRequest{X: x, Y: y, Source: MenuHeader, ColumnKey: col.Key}, true
}

// emptyMenu opens on the grid background only when the caller supplies at
// least one empty-area item.
func emptyMenu(items []MenuItem, x, y int) (MenuRequest, bool) {
	if len(items) == 0 {
		return MenuRequest{}, false
	}
	return MenuRequest{X: x, Y: y, Source: MenuEmpty, Items: items}, true
}

// keyboardAnchor derives the anchor for a keyboard-triggered menu from
// the focused row's mounted position, offset inward rather than using
// pointer coordinates.
func keyboardAnchor(bodyLine int) (x, y int) {
	return 2, bodyLine + 1 // +1 for the header line, nudged into the row
}
