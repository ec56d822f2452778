package grid

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/go-logr/logr"
)

func testColumns() []Column {
	field := func(name string) func(Row) string {
		return func(r Row) string { return r.(MapRow).Field(name) }
	}
	return []Column{
		{Key: "name", Title: "Name", Sortable: true, AutoWidth: true, Render: field("name")},
		{Key: "kind", Title: "Kind", Badge: true, Render: field("kind")},
		{Key: "status", Title: "Status", Render: field("status")},
	}
}

func podRows(names ...string) []Row {
	rows := make([]Row, len(names))
	for i, n := range names {
		rows[i] = MapRow{ID: n, Fields: map[string]string{
			"name":   n,
			"kind":   "Pod",
			"status": "Running",
		}}
	}
	return rows
}

func newTestGrid(rows []Row, mut func(*Config)) *Grid {
	cfg := Config{
		Columns:                 testColumns(),
		List:                    NewSliceList(rows),
		AllowHorizontalOverflow: true,
		InitialWidths:           map[string]float64{"name": 224, "kind": 144, "status": 96},
		Logger:                  logr.Discard(),
		Now:                     fixedNow(),
	}
	if mut != nil {
		mut(&cfg)
	}
	g := New(cfg)
	g.SetSize(80, 11)
	return g
}

// deliver runs a scheduled command and feeds its message back in, the way
// the bubbletea runtime would.
func deliver(t *testing.T, g *Grid, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a scheduled command")
	}
	return g.Update(cmd())
}

func TestGridAutoSize(t *testing.T) {
	var notified []map[string]float64
	long := strings.Repeat("x", 43)
	g := newTestGrid(podRows("web", long), func(c *Config) {
		c.OnColumnWidthsChange = func(w map[string]float64) { notified = append(notified, w) }
	})

	g.AutoSize("name")
	// Longest cell: 43 cells of content at 8px plus 16px padding.
	if got := g.ColumnWidths()["name"]; got != 360 {
		t.Fatalf("auto-sized width = %v, want 360", got)
	}
	if !g.wm.isManual("name") {
		t.Fatalf("auto-sized column must be protected from content shrink")
	}
	if len(notified) != 1 {
		t.Fatalf("width sink fired %d times, want 1", len(notified))
	}

	// Same content, same result: no second notification.
	g.AutoSize("name")
	if len(notified) != 1 {
		t.Fatalf("unchanged widths must not re-notify, got %d calls", len(notified))
	}
}

func TestGridSeparatorDrag(t *testing.T) {
	var notified int
	g := newTestGrid(podRows("a", "b", "c"), func(c *Config) {
		c.OnColumnWidthsChange = func(map[string]float64) { notified++ }
	})

	// 224px at 8px/cell puts the name/kind separator at cell 28; cell 27 is
	// the grab zone.
	g.Update(tea.MouseClickMsg{X: 27, Y: 0, Button: tea.MouseLeft})
	if !g.rsz.active() {
		t.Fatalf("separator press must open a resize session")
	}
	cmd := g.Update(tea.MouseMotionMsg{X: 35, Y: 0})
	if cmd == nil {
		t.Fatalf("drag motion must schedule a frame commit")
	}
	// More motion inside the same frame coalesces into the pending commit.
	if extra := g.Update(tea.MouseMotionMsg{X: 34, Y: 0}); extra != nil {
		t.Fatalf("second motion within the frame must not schedule again")
	}
	g.Update(tea.MouseMotionMsg{X: 35, Y: 0})
	deliver(t, g, cmd)

	if got := g.ColumnWidths()["name"]; got != 280 {
		t.Fatalf("dragged width = %v, want 280", got)
	}
	if got := g.ColumnWidths()["kind"]; got != 144 {
		t.Fatalf("right neighbor width = %v, want untouched 144", got)
	}
	if notified != 1 {
		t.Fatalf("width sink fired %d times, want 1", notified)
	}

	g.Update(tea.MouseReleaseMsg{X: 35, Y: 0, Button: tea.MouseLeft})
	if g.rsz.active() {
		t.Fatalf("release must close the session")
	}
	if notified != 1 {
		t.Fatalf("release with nothing pending must not re-notify, got %d", notified)
	}
}

func TestGridSeparatorDoubleClickAutoSizes(t *testing.T) {
	long := strings.Repeat("y", 30)
	g := newTestGrid(podRows("a", long), nil)

	// Two presses on the same separator within the double-click window.
	g.Update(tea.MouseClickMsg{X: 27, Y: 0, Button: tea.MouseLeft})
	g.Update(tea.MouseClickMsg{X: 27, Y: 0, Button: tea.MouseLeft})

	if g.rsz.active() {
		t.Fatalf("double press must cancel the drag session")
	}
	// 30 cells of content at 8px plus 16px padding.
	if got := g.ColumnWidths()["name"]; got != 256 {
		t.Fatalf("double-click width = %v, want 256", got)
	}
}

func TestGridKeyboardNavigation(t *testing.T) {
	var clicked []string
	var nav []NavMethod
	g := newTestGrid(podRows("a", "b", "c"), func(c *Config) {
		c.OnRowClick = func(r Row, m NavMethod) {
			clicked = append(clicked, r.Key())
			nav = append(nav, m)
		}
	})

	g.Focus(false)
	if g.FocusedKey() != "a" {
		t.Fatalf("wrapper focus must land on the first row, got %q", g.FocusedKey())
	}
	g.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if g.FocusedKey() != "b" {
		t.Fatalf("down = %q, want b", g.FocusedKey())
	}
	g.Update(tea.KeyPressMsg{Code: 'j', Text: "j"})
	if g.FocusedKey() != "c" {
		t.Fatalf("j = %q, want c", g.FocusedKey())
	}
	g.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if g.FocusedKey() != "c" {
		t.Fatalf("down past the end must clamp, got %q", g.FocusedKey())
	}
	g.Update(tea.KeyPressMsg{Code: tea.KeyHome})
	if g.FocusedKey() != "a" {
		t.Fatalf("home = %q, want a", g.FocusedKey())
	}

	g.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(clicked) != 1 || clicked[0] != "a" || nav[0] != NavKeyboard {
		t.Fatalf("enter activation = %v/%v, want a via keyboard", clicked, nav)
	}
}

func TestGridPointerClickFocusesRow(t *testing.T) {
	var clicked []string
	var nav []NavMethod
	g := newTestGrid(podRows("a", "b", "c"), func(c *Config) {
		c.OnRowClick = func(r Row, m NavMethod) {
			clicked = append(clicked, r.Key())
			nav = append(nav, m)
		}
	})

	g.Update(tea.MouseClickMsg{X: 2, Y: 3, Button: tea.MouseLeft})
	if g.FocusedKey() != "c" {
		t.Fatalf("click on body line 2 = %q, want c", g.FocusedKey())
	}
	if len(clicked) != 1 || clicked[0] != "c" || nav[0] != NavPointer {
		t.Fatalf("pointer activation = %v/%v", clicked, nav)
	}

	// The wrapper focus that follows the click must not steal focus back
	// to the first row.
	g.Focus(false)
	if g.FocusedKey() != "c" {
		t.Fatalf("focus after click = %q, want c", g.FocusedKey())
	}
}

func TestGridWheelScrollCoalesced(t *testing.T) {
	names := make([]string, 100)
	for i := range names {
		names[i] = strings.Repeat("r", 3) + string(rune('0'+i%10)) + string(rune('0'+i/10))
	}
	g := newTestGrid(podRows(names...), nil)

	cmd := g.Update(tea.MouseWheelMsg{X: 0, Y: 0, Button: tea.MouseWheelDown})
	if cmd == nil {
		t.Fatalf("first wheel must schedule a frame")
	}
	if extra := g.Update(tea.MouseWheelMsg{X: 0, Y: 0, Button: tea.MouseWheelDown}); extra != nil {
		t.Fatalf("wheel within the frame must coalesce")
	}
	if g.scrollTopPx != 0 {
		t.Fatalf("scroll must not move before the frame commit")
	}
	deliver(t, g, cmd)

	// Two wheel steps of three rows at 21px each.
	if g.scrollTopPx != 126 {
		t.Fatalf("scrollTop = %v, want 126", g.scrollTopPx)
	}
	first := g.firstVisibleRow()
	if !g.rowWin.Contains(first) {
		t.Fatalf("window [%d,%d) must contain the first visible row %d", g.rowWin.Start, g.rowWin.End, first)
	}
	if g.rowWin.End-g.rowWin.Start >= 100 {
		t.Fatalf("large list must be windowed, got full mount")
	}

	// A huge scroll clamps to the end of the data.
	cmd = g.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	for i := 0; i < 200; i++ {
		g.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	}
	deliver(t, g, cmd)
	if max := g.rowsV.maxScroll(g.bodyPx(), 100); g.scrollTopPx != max {
		t.Fatalf("scrollTop = %v, want clamp to %v", g.scrollTopPx, max)
	}
}

func TestGridWheelScrollRightClampsToContent(t *testing.T) {
	g := newTestGrid(podRows("a", "b"), func(c *Config) {
		c.InitialWidths = map[string]float64{"name": 600, "kind": 400, "status": 200}
	})
	g.SetSize(40, 11)

	cmd := g.Update(tea.MouseWheelMsg{Button: tea.MouseWheelRight})
	for i := 0; i < 500; i++ {
		g.Update(tea.MouseWheelMsg{Button: tea.MouseWheelRight})
	}
	deliver(t, g, cmd)

	// 1200px of columns in a 320px viewport leaves 880px of range.
	if g.scrollLeftPx != 880 {
		t.Fatalf("scrollLeft = %v, want clamp to 880", g.scrollLeftPx)
	}
	lines := strings.Split(g.View(), "\n")
	if !strings.Contains(lines[0], "Status") {
		t.Fatalf("header at max scroll lost the trailing column: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Running") {
		t.Fatalf("body at max scroll went blank: %q", lines[1])
	}

	// Widening the viewport shrinks the range; the position follows.
	g.SetSize(80, 11)
	if g.scrollLeftPx != 560 {
		t.Fatalf("scrollLeft after widen = %v, want 560", g.scrollLeftPx)
	}
	cmd = g.Update(tea.MouseWheelMsg{Button: tea.MouseWheelLeft})
	deliver(t, g, cmd)
	if g.scrollLeftPx != 528 {
		t.Fatalf("scrollLeft after wheel left = %v, want 528", g.scrollLeftPx)
	}
}

func TestGridVisibilityToggleAndReset(t *testing.T) {
	var notified []map[string]bool
	g := newTestGrid(podRows("a", "b"), func(c *Config) {
		c.OnColumnVisibilityChange = func(v map[string]bool) { notified = append(notified, v) }
	})

	g.ToggleColumn("status")
	if g.columnVisible("status") {
		t.Fatalf("toggled column must be hidden")
	}
	if len(notified) != 1 || notified[0]["status"] != false {
		t.Fatalf("visibility sink = %v, want one call with status hidden", notified)
	}
	if len(g.visibleColumns()) != 2 {
		t.Fatalf("visible columns = %d, want 2", len(g.visibleColumns()))
	}

	g.ToggleColumn("status")
	if !g.columnVisible("status") {
		t.Fatalf("second toggle must restore visibility")
	}
	if len(notified) != 2 || len(notified[1]) != 0 {
		t.Fatalf("restore must notify with an empty override map: %v", notified)
	}

	g.ToggleColumn("status")
	g.ResetColumnVisibility()
	if len(g.VisibilityOverrides()) != 0 {
		t.Fatalf("reset must drop every override: %v", g.VisibilityOverrides())
	}
	if got := g.ColumnWidths()["name"]; got != 224 {
		t.Fatalf("reset must return widths to their seeds, name = %v", got)
	}
}

func TestGridControlledVisibilityReset(t *testing.T) {
	var notified []map[string]bool
	g := newTestGrid(podRows("a"), func(c *Config) {
		c.ControlledVisibility = map[string]bool{"status": false}
		c.OnColumnVisibilityChange = func(v map[string]bool) { notified = append(notified, v) }
	})

	if g.columnVisible("status") {
		t.Fatalf("controlled override must hide status")
	}
	if cmd := g.ResetColumnVisibility(); cmd != nil {
		t.Fatalf("controlled reset must not schedule work")
	}
	if len(notified) != 1 || len(notified[0]) != 0 {
		t.Fatalf("reset must report an empty override set, got %v", notified)
	}
	if g.columnVisible("status") {
		t.Fatalf("reset must not touch the controlled map")
	}

	// The owner pushes the reconciled map back.
	g.SetColumnVisibility(map[string]bool{})
	if !g.columnVisible("status") {
		t.Fatalf("owner push-back must restore visibility")
	}
}

func TestGridSortCycle(t *testing.T) {
	type sortCall struct {
		key string
		dir SortDirection
	}
	var calls []sortCall
	g := newTestGrid(podRows("a", "b"), func(c *Config) {
		c.OnSort = func(key string, dir SortDirection) { calls = append(calls, sortCall{key, dir}) }
	})

	for i := 0; i < 3; i++ {
		g.Update(tea.MouseClickMsg{X: 5, Y: 0, Button: tea.MouseLeft})
	}
	want := []sortCall{{"name", SortAsc}, {"name", SortDesc}, {"name", SortNone}}
	if len(calls) != len(want) {
		t.Fatalf("sort calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("sort calls = %v, want %v", calls, want)
		}
	}

	// Non-sortable columns pass the click through. Status starts at cell
	// 46 (224px + 144px at 8px/cell).
	g.Update(tea.MouseClickMsg{X: 48, Y: 0, Button: tea.MouseLeft})
	if len(calls) != 3 {
		t.Fatalf("click on a non-sortable header must not sort: %v", calls)
	}
}

func TestGridContextMenus(t *testing.T) {
	g := newTestGrid(podRows("a", "b"), func(c *Config) {
		c.OnSort = func(string, SortDirection) {}
		c.CustomMenuItems = func(r Row, col string) []MenuItem {
			return []MenuItem{{Title: "Describe " + r.Key()}}
		}
		c.EmptyMenuItems = func() []MenuItem {
			return []MenuItem{{Title: "New resource"}}
		}
	})

	g.Update(tea.MouseClickMsg{X: 2, Y: 2, Button: tea.MouseRight})
	req, ok := g.Menu()
	if !ok || req.Source != MenuCell {
		t.Fatalf("cell right-click menu = %+v/%v", req, ok)
	}
	if req.Row == nil || req.Row.Key() != "b" || req.ColumnKey != "name" {
		t.Fatalf("cell menu target = %+v", req)
	}
	if len(req.Items) != 1 || req.Items[0].Title != "Describe b" {
		t.Fatalf("cell menu items = %+v", req.Items)
	}
	if g.FocusedKey() != "b" {
		t.Fatalf("right-click must focus the row, got %q", g.FocusedKey())
	}
	g.CloseMenu()
	if _, open := g.Menu(); open {
		t.Fatalf("menu must close")
	}

	g.Update(tea.MouseClickMsg{X: 5, Y: 0, Button: tea.MouseRight})
	if req, ok = g.Menu(); !ok || req.Source != MenuHeader || req.ColumnKey != "name" {
		t.Fatalf("header menu = %+v/%v", req, ok)
	}
	g.CloseMenu()

	g.Update(tea.MouseClickMsg{X: 5, Y: 8, Button: tea.MouseRight})
	if req, ok = g.Menu(); !ok || req.Source != MenuEmpty {
		t.Fatalf("empty-area menu = %+v/%v", req, ok)
	}
	if req.Row != nil {
		t.Fatalf("empty-area menu must carry no row")
	}
}

func TestGridKeyboardMenuAnchorsAtFocusedRow(t *testing.T) {
	g := newTestGrid(podRows("a", "b", "c"), func(c *Config) {
		c.CustomMenuItems = func(r Row, col string) []MenuItem {
			return []MenuItem{{Title: "Open"}}
		}
	})
	g.Focus(false)
	g.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	g.Update(tea.KeyPressMsg{Code: tea.KeyF10})

	req, ok := g.Menu()
	if !ok || req.Source != MenuCell {
		t.Fatalf("keyboard menu = %+v/%v", req, ok)
	}
	if req.Row == nil || req.Row.Key() != "b" {
		t.Fatalf("keyboard menu row = %+v", req.Row)
	}
	// Anchored inside the focused row's line, below the header.
	if req.X != 2 || req.Y != 2 {
		t.Fatalf("keyboard anchor = (%d,%d), want (2,2)", req.X, req.Y)
	}
}

func TestGridAutoWidthFlushPipeline(t *testing.T) {
	var notified int
	long := strings.Repeat("z", 40)
	g := newTestGrid(podRows("a"), func(c *Config) {
		c.OnColumnWidthsChange = func(map[string]float64) { notified++ }
	})

	// Growing content marks the auto column dirty and schedules a flush.
	list := NewSliceList(podRows("a", long))
	cmd := g.SetList(list)
	if cmd == nil {
		t.Fatalf("data change must schedule an auto-width flush")
	}
	deliver(t, g, cmd)

	// 40 cells of content at 8px plus 16px padding.
	if got := g.ColumnWidths()["name"]; got != 336 {
		t.Fatalf("flushed width = %v, want 336", got)
	}
	if notified != 1 {
		t.Fatalf("width sink fired %d times, want 1", notified)
	}

	// Re-flushing unchanged content must not move or notify.
	cmd = g.RowsChanged("a")
	deliver(t, g, cmd)
	if notified != 1 {
		t.Fatalf("unchanged content re-notified: %d", notified)
	}
	if got := g.ColumnWidths()["name"]; got != 336 {
		t.Fatalf("width drifted to %v", got)
	}
}

func TestGridViewGeometry(t *testing.T) {
	g := newTestGrid(podRows("alpha", "beta"), nil)
	view := g.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 11 {
		t.Fatalf("view has %d lines, want 11", len(lines))
	}
	if !strings.Contains(lines[0], "Name") {
		t.Fatalf("header line missing titles: %q", lines[0])
	}
	if !strings.Contains(lines[1], "alpha") || !strings.Contains(lines[2], "beta") {
		t.Fatalf("body rows not where expected:\n%s", view)
	}
}

func TestGridCloseStopsScheduling(t *testing.T) {
	g := newTestGrid(podRows("a"), nil)
	g.Focus(false)
	cmd := g.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	g.Close()
	if g.FocusedKey() != "" {
		t.Fatalf("closed grid kept focus on %q", g.FocusedKey())
	}
	if cmd != nil {
		if after := g.Update(cmd()); after != nil {
			t.Fatalf("closed grid must not schedule follow-ups")
		}
	}
	if g.Update(tea.KeyPressMsg{Code: tea.KeyDown}) != nil {
		t.Fatalf("closed grid must ignore input")
	}
}
