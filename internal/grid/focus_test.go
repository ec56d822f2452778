package grid

import "testing"

func rowList(keys ...string) *SliceList {
	rows := make([]Row, len(keys))
	for i, k := range keys {
		rows[i] = MapRow{ID: k}
	}
	return NewSliceList(rows)
}

func TestFocusIndexDerived(t *testing.T) {
	list := rowList("a", "b", "c")
	var f focusState
	if got := f.index(list); got != -1 {
		t.Fatalf("unfocused index = %d, want -1", got)
	}
	f.focusKey(list, "b", NavPointer)
	if got := f.index(list); got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}

	// Reorder the data; the key still resolves to the new position.
	list.SetRows([]Row{MapRow{ID: "c"}, MapRow{ID: "b"}, MapRow{ID: "a"}})
	if got := f.index(list); got != 1 {
		t.Fatalf("index after reorder = %d, want 1", got)
	}
	list.SetRows([]Row{MapRow{ID: "b"}, MapRow{ID: "a"}})
	if got := f.index(list); got != 0 {
		t.Fatalf("index after removal = %d, want 0", got)
	}
}

func TestFocusEnsureClampsToLastValidIndex(t *testing.T) {
	list := rowList("a", "b", "c", "d")
	var f focusState
	f.focusKey(list, "d", NavKeyboard)
	last := f.index(list)

	// The focused row disappears; focus clamps to the last valid index.
	list.SetRows([]Row{MapRow{ID: "a"}, MapRow{ID: "b"}})
	if !f.ensure(list, last) {
		t.Fatalf("vanished key must change focus")
	}
	if f.key != "b" {
		t.Fatalf("focus = %q, want clamp to last row %q", f.key, "b")
	}

	// Still present: ensure is a no-op.
	if f.ensure(list, f.index(list)) {
		t.Fatalf("present key must not move focus")
	}

	// Empty data clears focus entirely.
	list.SetRows(nil)
	if !f.ensure(list, 0) {
		t.Fatalf("empty list must clear focus")
	}
	if f.key != "" {
		t.Fatalf("focus = %q, want empty", f.key)
	}
}

func TestFocusMove(t *testing.T) {
	list := rowList("a", "b", "c")
	var f focusState
	f.move(list, 1, NavKeyboard)
	if f.key != "a" {
		t.Fatalf("first move down from nothing = %q, want a", f.key)
	}
	f.move(list, 1, NavKeyboard)
	if f.key != "b" {
		t.Fatalf("move down = %q, want b", f.key)
	}
	f.move(list, 10, NavKeyboard)
	if f.key != "c" {
		t.Fatalf("overshoot must clamp to last: %q", f.key)
	}
	f.move(list, -10, NavKeyboard)
	if f.key != "a" {
		t.Fatalf("undershoot must clamp to first: %q", f.key)
	}
	if f.lastNav != NavKeyboard {
		t.Fatalf("lastNav = %v, want keyboard", f.lastNav)
	}
}

func TestWrapperFocusedDefaultsToFirstRow(t *testing.T) {
	list := rowList("a", "b")
	var f focusState
	if !f.wrapperFocused(list, false) {
		t.Fatalf("wrapper focus on unfocused grid must focus a row")
	}
	if f.key != "a" {
		t.Fatalf("default focus = %q, want first row", f.key)
	}
}

func TestWrapperFocusedConsumesPendingPointer(t *testing.T) {
	list := rowList("a", "b")
	f := focusState{pendingPointer: true}
	if f.wrapperFocused(list, false) {
		t.Fatalf("pending pointer must suppress the focus-first default")
	}
	if f.pendingPointer {
		t.Fatalf("pending pointer flag must be consumed")
	}
	if f.key != "" {
		t.Fatalf("focus = %q, want none", f.key)
	}
	// The flag is one-shot: the next wrapper focus behaves normally.
	if !f.wrapperFocused(list, false) {
		t.Fatalf("consumed flag must not suppress the next focus")
	}
}

func TestWrapperFocusedSuppression(t *testing.T) {
	list := rowList("a", "b")
	var f focusState
	f.focusKey(list, "b", NavPointer)
	if !f.wrapperFocused(list, true) {
		t.Fatalf("suppressing target must clear row focus")
	}
	if f.key != "" || !f.suppressed {
		t.Fatalf("focus = %q suppressed = %v, want cleared and suppressed", f.key, f.suppressed)
	}
	if !f.wrapperFocused(list, false) {
		t.Fatalf("focus returning from a suppressor must re-focus a row")
	}
	if f.key != "a" || f.suppressed {
		t.Fatalf("focus = %q suppressed = %v after return", f.key, f.suppressed)
	}
}
