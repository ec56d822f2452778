package grid

// Focus tracking. Identity is held by stable row key only; the index is
// re-derived against the live provider on every use, so virtualization
// re-renders and data churn can never leave a stale index behind.

// NavMethod distinguishes how focus last moved.
type NavMethod int

const (
	NavPointer NavMethod = iota
	NavKeyboard
)

type focusState struct {
	key        string // "" means no row focused
	suppressed bool   // a focus-suppressing target holds input focus
	// pendingPointer marks a pointer-down whose focus event is still in
	// flight; it is consumed by the very next wrapper focus so a click
	// does not also trigger the focus-first-row default.
	pendingPointer bool
	lastNav        NavMethod
}

// index derives the focused row index from the key, -1 when unfocused or
// the key is gone.
func (f *focusState) index(list List) int {
	if f.key == "" {
		return -1
	}
	if i, _, ok := list.Find(f.key); ok {
		return i
	}
	return -1
}

// ensure revalidates the focus against the live data. A key that vanished
// clamps to the last valid index; an empty data set clears focus.
// lastIndex is the index the key held when last seen. Reports whether the
// focused key changed.
func (f *focusState) ensure(list List, lastIndex int) bool {
	if f.key == "" {
		return false
	}
	if _, _, ok := list.Find(f.key); ok {
		return false
	}
	n := list.Len()
	if n == 0 {
		f.key = ""
		return true
	}
	i := lastIndex
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	rows := list.Lines(i, 1)
	if len(rows) == 0 {
		f.key = ""
		return true
	}
	f.key = rows[0].Key()
	return true
}

// focusIndex focuses the row at index i, clamped into the data set.
// Returns whether the focused key changed.
func (f *focusState) focusIndex(list List, i int, nav NavMethod) bool {
	n := list.Len()
	if n == 0 {
		changed := f.key != ""
		f.key = ""
		return changed
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	rows := list.Lines(i, 1)
	if len(rows) == 0 {
		return false
	}
	f.lastNav = nav
	key := rows[0].Key()
	if key == f.key {
		return false
	}
	f.key = key
	return true
}

// move shifts focus by delta rows from the current derived index.
func (f *focusState) move(list List, delta int, nav NavMethod) bool {
	i := f.index(list)
	if i < 0 {
		// No current focus: land on first or last depending on direction.
		if delta >= 0 {
			return f.focusIndex(list, 0, nav)
		}
		return f.focusIndex(list, list.Len()-1, nav)
	}
	return f.focusIndex(list, i+delta, nav)
}

// focusKey focuses a specific row by key if present.
func (f *focusState) focusKey(list List, key string, nav NavMethod) bool {
	if _, _, ok := list.Find(key); !ok {
		return false
	}
	f.lastNav = nav
	if f.key == key {
		return false
	}
	f.key = key
	return true
}

// wrapperFocused handles focus arriving at the grid wrapper. Default is
// the first row, unless a pointer-down is pending (the click handler owns
// focus) or a suppressing target is taking it.
func (f *focusState) wrapperFocused(list List, suppressing bool) bool {
	if f.pendingPointer {
		f.pendingPointer = false
		return false
	}
	if suppressing {
		f.suppressed = true
		changed := f.key != ""
		f.key = ""
		return changed
	}
	f.suppressed = false
	if f.key != "" {
		return false
	}
	return f.focusIndex(list, 0, NavKeyboard)
}

func (f *focusState) clear() {
	f.key = ""
	f.pendingPointer = false
}
