// Package grid implements a virtualized data grid for terminal UIs: only
// the rows and columns intersecting the viewport (plus overscan) are
// mounted, columns auto-size to content without layout thrash, manual
// resizing coexists with automatic sizing and externally persisted
// widths, and focus, hover and context menus stay keyed by stable row
// identity while the mounted slice changes underneath them.
package grid

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/luxury-yacht/kview/internal/grid/sched"
)

// SortDirection cycles asc, desc, none.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

// Scheduler kinds; one live handle each.
const (
	kindResizeFrame    = "resize-frame"
	kindScrollFrame    = "scroll-frame"
	kindAutoWidthFlush = "autowidth-flush"
	kindAutoWidthRetry = "autowidth-retry"
)

const doubleClickTimeout = 400 * time.Millisecond

// Config wires a grid instance. Zero values get sensible defaults.
type Config struct {
	Columns []Column
	List    List
	Metrics Metrics
	Styles  *Styles
	Logger  logr.Logger
	Now     func() time.Time

	OverscanRows       int     // extra rows mounted on each side (default 6)
	OverscanColumns    int     // extra columns mounted on each side (default 2)
	VirtualizeRowsFrom int     // row count activating virtualization (default 50)
	EstimatedRowPx     float64 // seed for adaptive row height (default Metrics.RowPx)

	// Timing overrides; zero keeps the built-in values.
	AutoWidthDebounce    time.Duration
	AutoWidthMinInterval time.Duration
	DoubleClickTimeout   time.Duration

	ColumnWindowing bool // mount only columns intersecting the viewport
	StickyStart     int  // leading columns excluded from windowing
	StickyEnd       int  // trailing columns excluded from windowing

	AllowHorizontalOverflow bool
	DisableResize           bool

	// ControlledWidths, when non-nil, is authoritative: the grid
	// reconciles against it instead of owning widths itself.
	ControlledWidths map[string]float64
	// ControlledVisibility, when non-nil, is the authoritative set of
	// visibility overrides.
	ControlledVisibility map[string]bool
	// InitialWidths seeds widths below controlled ones in the priority
	// chain.
	InitialWidths map[string]float64

	// Change sinks fire only when the serialized signature of the maps
	// actually changes.
	OnColumnWidthsChange     func(map[string]float64)
	OnColumnVisibilityChange func(map[string]bool)

	OnSort     func(key string, dir SortDirection)
	OnRowClick func(Row, NavMethod)

	CustomMenuItems func(Row, string) []MenuItem
	EmptyMenuItems  func() []MenuItem
}

var gridSeq atomic.Uint64

// Grid is one virtualized table instance. All mutable state is owned here
// and touched only from Update and the exported mutators; nothing is
// shared across instances.
type Grid struct {
	cfg Config
	m   Metrics
	log logr.Logger
	now func() time.Time

	cols        []Column
	visOverride map[string]bool // local visibility overrides (uncontrolled mode)

	list List

	wm    *widthModel
	queue *autoWidthQueue
	rowsV *rowVirtualizer
	colsV *colVirtualizer
	fit   fitState
	rsz   *resizer
	focus focusState
	rdr   *renderer
	sch   *sched.Scheduler

	wCells, hCells int
	scrollTopPx    float64
	scrollLeftPx   float64
	pendingTopPx   float64
	pendingLeftPx  float64
	scrollPending  bool

	// layout products of the last pass
	displayPx  map[string]float64
	visibleSet map[string]struct{}
	rowWin     RowWindow
	colWin     ColumnWindow
	mountedIdx []int
	spans      []colSpan
	leadCells  int
	out        renderOutput
	overflow   bool

	lastFocusIndex int
	hasFocus       bool

	sortKey string
	sortDir SortDirection

	menu *MenuRequest

	lastSepClick     time.Time
	lastSepClickKeys [2]string

	lastWidthsSig string
	lastVisSig    string

	closed bool
}

// New builds a grid. SetSize must be called before the first View.
func New(cfg Config) *Grid {
	m := cfg.Metrics
	if !m.valid() {
		m = DefaultMetrics()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	if cfg.OverscanRows == 0 {
		cfg.OverscanRows = 6
	}
	if cfg.OverscanColumns == 0 {
		cfg.OverscanColumns = 2
	}
	if cfg.VirtualizeRowsFrom == 0 {
		cfg.VirtualizeRowsFrom = 50
	}
	est := cfg.EstimatedRowPx
	if est == 0 {
		est = m.RowPx
	}
	list := cfg.List
	if list == nil {
		list = NewSliceList(nil)
	}
	g := &Grid{
		cfg:         cfg,
		m:           m,
		log:         cfg.Logger,
		now:         now,
		cols:        append([]Column(nil), cfg.Columns...),
		visOverride: make(map[string]bool),
		list:        list,
		wm:          newWidthModel(m, now),
		queue:       newAutoWidthQueue(now),
		rowsV:       newRowVirtualizer(cfg.VirtualizeRowsFrom, cfg.OverscanRows, est, cfg.Logger),
		colsV:       newColVirtualizer(cfg.ColumnWindowing, cfg.StickyStart, cfg.StickyEnd, cfg.OverscanColumns),
		rsz:         newResizer(!cfg.DisableResize),
		rdr:         newRenderer(styles),
		sch:         sched.New(fmt.Sprintf("grid-%d", gridSeq.Add(1))),
		displayPx:   make(map[string]float64),
		visibleSet:  make(map[string]struct{}),
	}
	if cfg.AutoWidthDebounce > 0 {
		g.queue.debounce = cfg.AutoWidthDebounce
	}
	if cfg.AutoWidthMinInterval > 0 {
		g.queue.minInterval = cfg.AutoWidthMinInterval
	}
	if cfg.DoubleClickTimeout == 0 {
		g.cfg.DoubleClickTimeout = doubleClickTimeout
	}
	g.queue.markDirty(g.wm, g.autoColumnKeys()...)
	return g
}

func (g *Grid) Init() tea.Cmd { return g.scheduleFlush() }

// Close cancels every scheduled callback and in-flight gesture; the grid
// must not be used afterwards.
func (g *Grid) Close() {
	g.closed = true
	g.sch.Stop()
	g.rsz.cancel()
	g.menu = nil
	g.focus.clear()
	g.scrollPending = false
}

// SetSize sets the viewport in terminal cells.
func (g *Grid) SetSize(w, h int) {
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}
	g.wCells, g.hCells = w, h
	g.layout()
}

// viewportPx is the horizontal viewport in pixels.
func (g *Grid) viewportPx() float64 { return g.m.Px(g.wCells) }

// bodyLines is the number of body rows the viewport shows.
func (g *Grid) bodyLines() int {
	if g.hCells <= 1 {
		return 0
	}
	return g.hCells - 1
}

func (g *Grid) bodyPx() float64 { return g.m.LinePx(g.bodyLines()) }

// SetList swaps the data provider. A change of data identity or length
// queues every auto column for re-measurement, invalidates the render
// cache and revalidates focus.
func (g *Grid) SetList(list List) tea.Cmd {
	if list == nil {
		list = NewSliceList(nil)
	}
	identityChanged := list != g.list
	lengthChanged := list.Len() != g.list.Len()
	g.list = list
	g.rdr.invalidate()
	if identityChanged {
		g.rowsV.reset()
	}
	g.focus.ensure(g.list, g.lastFocusIndex)
	var cmd tea.Cmd
	if identityChanged || lengthChanged {
		g.queue.markDirty(g.wm, g.autoColumnKeys()...)
		cmd = g.scheduleFlush()
	}
	g.layout()
	return cmd
}

// RowsChanged tells the grid the provider mutated in place (same List
// value). Changed keys invalidate their cached cells.
func (g *Grid) RowsChanged(keys ...string) tea.Cmd {
	for _, k := range keys {
		g.rdr.invalidateRow(k, g.cols)
	}
	g.focus.ensure(g.list, g.lastFocusIndex)
	g.queue.markDirty(g.wm, g.autoColumnKeys()...)
	g.layout()
	return g.scheduleFlush()
}

// SetColumns replaces the column definitions. Widths for new keys are
// seeded on the next layout; state for removed keys is pruned.
func (g *Grid) SetColumns(cols []Column) tea.Cmd {
	g.cols = append([]Column(nil), cols...)
	g.rdr.invalidate()
	g.queue.markDirty(g.wm, g.autoColumnKeys()...)
	g.layout()
	return g.scheduleFlush()
}

// ResetScroll jumps to the top and resets the mounted window; callers
// invoke it on filter-state changes.
func (g *Grid) ResetScroll() {
	g.scrollTopPx = 0
	g.scrollLeftPx = 0
	g.scrollPending = false
	g.sch.Cancel(kindScrollFrame)
	g.layout()
}

// Focus hands input focus to the grid wrapper. The first row gets focused
// by default; a pending pointer gesture or a suppressing target (text
// input and friends) overrides that.
func (g *Grid) Focus(suppressing bool) {
	g.hasFocus = true
	if g.focus.wrapperFocused(g.list, suppressing) {
		g.syncFocus()
	}
	g.layout()
}

// Blur removes input focus; row focus is kept for when focus returns.
func (g *Grid) Blur() {
	g.hasFocus = false
	g.layout()
}

// FocusedRow returns the focused row, if any.
func (g *Grid) FocusedRow() (Row, bool) {
	if g.focus.key == "" {
		return nil, false
	}
	_, r, ok := g.list.Find(g.focus.key)
	return r, ok
}

// FocusedKey returns the focused row key, or "".
func (g *Grid) FocusedKey() string { return g.focus.key }

// Menu returns the open context-menu request, if any; the shell renders
// it.
func (g *Grid) Menu() (MenuRequest, bool) {
	if g.menu == nil {
		return MenuRequest{}, false
	}
	return *g.menu, true
}

// CloseMenu dismisses the menu and returns logical focus to the grid.
func (g *Grid) CloseMenu() {
	g.menu = nil
	g.hasFocus = true
	g.layout()
}

// Sort returns the current sort state.
func (g *Grid) Sort() (string, SortDirection) { return g.sortKey, g.sortDir }

// SetSort sets the sort state directly, bypassing the header-click cycle,
// and notifies the sort sink. SortNone clears the key.
func (g *Grid) SetSort(key string, dir SortDirection) {
	if g.cfg.OnSort == nil {
		return
	}
	if dir == SortNone {
		key = ""
	}
	g.sortKey, g.sortDir = key, dir
	g.cfg.OnSort(key, dir)
	g.layout()
}

// Columns returns the configured columns, including hidden ones.
func (g *Grid) Columns() []Column { return g.cols }

// List returns the current row source.
func (g *Grid) List() List { return g.list }

// ColumnVisible reports whether a column is currently shown.
func (g *Grid) ColumnVisible(key string) bool { return g.columnVisible(key) }

// autoColumnKeys lists the keys of visible auto-width columns.
func (g *Grid) autoColumnKeys() []string {
	var out []string
	for _, c := range g.visibleColumns() {
		if c.AutoWidth {
			out = append(out, c.Key)
		}
	}
	return out
}

// columnVisible resolves effective visibility for a key: controlled map
// when supplied, else local overrides, else visible.
func (g *Grid) columnVisible(key string) bool {
	if g.cfg.ControlledVisibility != nil {
		if v, ok := g.cfg.ControlledVisibility[key]; ok {
			return v
		}
		return true
	}
	if v, ok := g.visOverride[key]; ok {
		return v
	}
	return true
}

func (g *Grid) visibleColumns() []Column {
	out := make([]Column, 0, len(g.cols))
	for _, c := range g.cols {
		if g.columnVisible(c.Key) {
			out = append(out, c)
		}
	}
	return out
}

// SetColumnVisibility applies a controlled visibility override map.
func (g *Grid) SetColumnVisibility(overrides map[string]bool) tea.Cmd {
	g.cfg.ControlledVisibility = overrides
	return g.visibilityMutated()
}

// ToggleColumn flips one column's visibility (uncontrolled mode).
func (g *Grid) ToggleColumn(key string) tea.Cmd {
	if g.cfg.ControlledVisibility != nil {
		return nil
	}
	if v, ok := g.visOverride[key]; ok && !v {
		delete(g.visOverride, key)
	} else {
		g.visOverride[key] = false
	}
	return g.visibilityMutated()
}

// ResetColumnVisibility drops every override and returns widths to their
// seeded defaults. With controlled visibility the owner's map stays
// authoritative: the sink is told about the reset and the reconciled map
// comes back through SetColumnVisibility.
func (g *Grid) ResetColumnVisibility() tea.Cmd {
	if g.cfg.ControlledVisibility != nil {
		if g.cfg.OnColumnVisibilityChange != nil {
			g.cfg.OnColumnVisibilityChange(map[string]bool{})
		}
		return nil
	}
	g.visOverride = make(map[string]bool)
	g.resetWidths()
	return g.visibilityMutated()
}

func (g *Grid) visibilityMutated() tea.Cmd {
	g.rdr.invalidate()
	g.queue.markDirty(g.wm, g.autoColumnKeys()...)
	g.layout()
	g.notifyVisibility()
	g.notifyWidths()
	return g.scheduleFlush()
}

// VisibilityOverrides returns a copy of the effective override map.
func (g *Grid) VisibilityOverrides() map[string]bool {
	src := g.visOverride
	if g.cfg.ControlledVisibility != nil {
		src = g.cfg.ControlledVisibility
	}
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// SetColumnWidths reconciles externally controlled widths; they are
// authoritative and outrank auto measurement until reset.
func (g *Grid) SetColumnWidths(widths map[string]float64) {
	g.cfg.ControlledWidths = widths
	if widths != nil {
		g.wm.apply(widths, SourceTableProvided, g.visibleSet)
	}
	g.layout()
}

// ColumnWidths returns the authoritative width map in pixels.
func (g *Grid) ColumnWidths() map[string]float64 { return g.wm.snapshot() }

// ResetColumnWidth clears a manual-resize flag and allows the next
// measurement to shrink the column back down.
func (g *Grid) ResetColumnWidth(key string) tea.Cmd {
	if columnIndex(g.cols, key) < 0 {
		return nil
	}
	g.wm.clearManual(key)
	g.queue.markAllowShrink(key)
	g.queue.markDirty(g.wm, key)
	return g.scheduleFlush()
}

// resetWidths rebuilds the width model from the seeding chain.
func (g *Grid) resetWidths() {
	g.wm = newWidthModel(g.m, g.now)
	g.queue = newAutoWidthQueue(g.now)
	g.queue.markDirty(g.wm, g.autoColumnKeys()...)
}

// AutoSize measures a column immediately and applies the result, growing
// or shrinking, and marks it user-resized so ordinary content churn
// cannot shrink it again. No-op for unknown or fixed columns.
func (g *Grid) AutoSize(key string) {
	i := columnIndex(g.cols, key)
	if i < 0 || g.cols[i].Fixed {
		return
	}
	c := g.cols[i]
	natural := measureColumn(c, g.list, g.m)
	px := c.clampPx(g.m, g.viewportPx(), natural)
	g.wm.setOne(key, px, SourceUserResized)
	g.wm.markManual(key)
	g.wm.setNatural(key, natural)
	g.layout()
	g.notifyWidths()
}

// --- message handling ----------------------------------------------------

// Update consumes bubbletea messages. Mouse coordinates must already be
// grid-local cells.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	if g.closed {
		return nil
	}
	switch v := msg.(type) {
	case sched.FireMsg:
		return g.onFire(v)
	case tea.KeyMsg:
		return g.onKey(v.String())
	case tea.MouseWheelMsg:
		return g.onWheel(v)
	case tea.MouseClickMsg:
		return g.onClick(v)
	case tea.MouseMotionMsg:
		return g.onMotion(v)
	case tea.MouseReleaseMsg:
		return g.onRelease(v)
	}
	return nil
}

func (g *Grid) onFire(msg sched.FireMsg) tea.Cmd {
	if !g.sch.Accept(msg) {
		return nil
	}
	switch msg.Kind {
	case kindResizeFrame:
		if g.rsz.commitPending(g.wm) {
			g.layout()
			g.notifyWidths()
		}
	case kindScrollFrame:
		g.commitScroll()
	case kindAutoWidthFlush, kindAutoWidthRetry:
		return g.flushAutoWidth()
	}
	return nil
}

func (g *Grid) onKey(key string) tea.Cmd {
	if g.focus.suppressed {
		return nil
	}
	switch key {
	case "up", "k":
		g.moveFocus(-1)
	case "down", "j":
		g.moveFocus(1)
	case "pgup":
		g.moveFocus(-g.bodyLines())
	case "pgdown":
		g.moveFocus(g.bodyLines())
	case "home":
		g.focusAbsolute(0)
	case "end":
		g.focusAbsolute(g.list.Len() - 1)
	case "enter":
		// Keyboard-sourced activation also invokes the row click
		// callback; pointer clicks go through the click handler instead.
		if r, ok := g.FocusedRow(); ok {
			g.focus.lastNav = NavKeyboard
			if g.cfg.OnRowClick != nil {
				g.cfg.OnRowClick(r, NavKeyboard)
			}
		}
	case "f10":
		return g.keyboardMenu()
	}
	return nil
}

func (g *Grid) moveFocus(delta int) {
	g.focus.move(g.list, delta, NavKeyboard)
	g.syncFocus()
	g.ensureFocusVisible()
	g.layout()
}

func (g *Grid) focusAbsolute(i int) {
	g.focus.focusIndex(g.list, i, NavKeyboard)
	g.syncFocus()
	g.ensureFocusVisible()
	g.layout()
}

// syncFocus re-derives the focused index from the key against live data.
func (g *Grid) syncFocus() {
	g.lastFocusIndex = g.focus.index(g.list)
}

// ensureFocusVisible scrolls the focused row into the viewport.
func (g *Grid) ensureFocusVisible() {
	i := g.focus.index(g.list)
	if i < 0 {
		return
	}
	rh := g.rowsV.rowPx()
	top := float64(i) * rh
	bottom := top + rh
	if top < g.scrollTopPx {
		g.scrollTopPx = top
	} else if bottom > g.scrollTopPx+g.bodyPx() {
		g.scrollTopPx = bottom - g.bodyPx()
	}
}

func (g *Grid) onWheel(msg tea.MouseWheelMsg) tea.Cmd {
	m := msg.Mouse()
	step := 3 * g.rowsV.rowPx()
	if !g.scrollPending {
		g.pendingTopPx = g.scrollTopPx
		g.pendingLeftPx = g.scrollLeftPx
	}
	switch m.Button {
	case tea.MouseWheelUp:
		g.pendingTopPx -= step
	case tea.MouseWheelDown:
		g.pendingTopPx += step
	case tea.MouseWheelLeft:
		g.pendingLeftPx -= g.m.Px(4)
	case tea.MouseWheelRight:
		g.pendingLeftPx += g.m.Px(4)
	default:
		return nil
	}
	g.scrollPending = true
	return g.sch.Coalesce(kindScrollFrame, sched.FramePeriod)
}

// commitScroll applies the coalesced scroll target: one state change per
// frame regardless of event rate.
func (g *Grid) commitScroll() {
	if !g.scrollPending {
		return
	}
	g.scrollPending = false
	top := g.pendingTopPx
	if max := g.rowsV.maxScroll(g.bodyPx(), g.list.Len()); top > max {
		top = max
	}
	if top < 0 {
		top = 0
	}
	left := g.pendingLeftPx
	if left < 0 {
		left = 0
	}
	g.scrollTopPx = top
	g.scrollLeftPx = left
	g.layout()
}

func (g *Grid) onClick(msg tea.MouseClickMsg) tea.Cmd {
	m := msg.Mouse()
	switch m.Button {
	case tea.MouseLeft:
		return g.leftClick(m.X, m.Y)
	case tea.MouseRight:
		return g.rightClick(m.X, m.Y)
	}
	return nil
}

// mountedX maps a viewport x to the mounted line's coordinate space,
// accounting for the horizontally scrolled middle region.
func (g *Grid) mountedX(x int) int {
	if x < g.leadCells {
		return x
	}
	return x + g.clipCells()
}

func (g *Grid) leftClick(x, y int) tea.Cmd {
	g.menu = nil
	visible := g.visibleColumns()
	widths := g.mountedCellWidths()
	hit, okc := hitColumns(visible, g.mountedIdx, widths, g.m, g.mountedX(x))
	if y == 0 { // header
		if okc && hit.sep {
			return g.sepPress(hit)
		}
		if okc {
			g.cycleSort(visible[hit.index].Key)
		}
		return nil
	}
	if okc && hit.sep {
		return g.sepPress(hit)
	}
	row, okr := g.rowAtLine(y - 1)
	if !okr {
		return nil
	}
	// Pointer-down: the next wrapper focus must not re-default to the
	// first row.
	g.focus.pendingPointer = true
	g.hasFocus = true
	g.focus.focusKey(g.list, row.Key(), NavPointer)
	g.syncFocus()
	g.layout()
	if g.cfg.OnRowClick != nil {
		g.cfg.OnRowClick(row, NavPointer)
	}
	return nil
}

// sepPress begins a resize drag, or auto-sizes on a double press.
func (g *Grid) sepPress(hit colHit) tea.Cmd {
	now := g.now()
	if g.lastSepClickKeys == [2]string{hit.leftKey, hit.rightKey} &&
		now.Sub(g.lastSepClick) <= g.cfg.DoubleClickTimeout {
		g.lastSepClick = time.Time{}
		g.rsz.cancel()
		g.AutoSize(hit.leftKey)
		return nil
	}
	g.lastSepClick = now
	g.lastSepClickKeys = [2]string{hit.leftKey, hit.rightKey}
	g.rsz.startDrag(g.visibleColumns(), hit.leftKey, hit.rightKey, hit.boundaryPx, g.displayPx[hit.leftKey])
	return nil
}

func (g *Grid) onMotion(msg tea.MouseMotionMsg) tea.Cmd {
	if !g.rsz.active() {
		return nil
	}
	m := msg.Mouse()
	clientX := g.m.Px(g.mountedX(m.X))
	if g.rsz.move(g.visibleColumns(), g.m, g.viewportPx(), clientX) {
		return g.sch.Coalesce(kindResizeFrame, sched.FramePeriod)
	}
	return nil
}

func (g *Grid) onRelease(msg tea.MouseReleaseMsg) tea.Cmd {
	if !g.rsz.active() {
		return nil
	}
	if g.rsz.endDrag(g.wm) {
		g.layout()
		g.notifyWidths()
	}
	return nil
}

func (g *Grid) rightClick(x, y int) tea.Cmd {
	visible := g.visibleColumns()
	widths := g.mountedCellWidths()
	hit, okc := hitColumns(visible, g.mountedIdx, widths, g.m, g.mountedX(x))
	if y == 0 {
		if okc {
			if req, ok := headerMenu(visible[hit.index], g.cfg.OnSort != nil, x, y); ok {
				g.menu = &req
				g.layout()
			}
		}
		return nil
	}
	if row, okr := g.rowAtLine(y - 1); okr {
		g.focus.pendingPointer = true
		g.focus.focusKey(g.list, row.Key(), NavPointer)
		g.syncFocus()
		var custom []MenuItem
		if g.cfg.CustomMenuItems != nil && okc {
			custom = g.cfg.CustomMenuItems(row, hit.key)
		}
		var colKey string
		var col Column
		if okc {
			colKey = hit.key
			col = visible[hit.index]
		}
		if req, ok := cellMenu(row, col, custom, g.cfg.OnSort != nil, x, y); ok {
			req.ColumnKey = colKey
			g.menu = &req
		}
		g.layout()
		return nil
	}
	// Background: only the grid's own empty area opens the empty menu.
	var items []MenuItem
	if g.cfg.EmptyMenuItems != nil {
		items = g.cfg.EmptyMenuItems()
	}
	if req, ok := emptyMenu(items, x, y); ok {
		g.menu = &req
		g.layout()
	}
	return nil
}

// keyboardMenu anchors a menu at the focused row's mounted element.
func (g *Grid) keyboardMenu() tea.Cmd {
	row, ok := g.FocusedRow()
	if !ok {
		var items []MenuItem
		if g.cfg.EmptyMenuItems != nil {
			items = g.cfg.EmptyMenuItems()
		}
		if req, open := emptyMenu(items, 1, 1); open {
			g.menu = &req
			g.layout()
		}
		return nil
	}
	line, mounted := g.out.rowLine[row.Key()]
	if !mounted {
		return nil
	}
	x, y := keyboardAnchor(line)
	var custom []MenuItem
	colKey := ""
	if visible := g.visibleColumns(); len(g.mountedIdx) > 0 && g.mountedIdx[0] < len(visible) {
		colKey = visible[g.mountedIdx[0]].Key
	}
	if g.cfg.CustomMenuItems != nil {
		custom = g.cfg.CustomMenuItems(row, colKey)
	}
	col := Column{}
	if i := columnIndex(g.cols, colKey); i >= 0 {
		col = g.cols[i]
	}
	if req, open := cellMenu(row, col, custom, g.cfg.OnSort != nil, x, y); open {
		req.ColumnKey = colKey
		g.menu = &req
		g.layout()
	}
	return nil
}

func (g *Grid) cycleSort(key string) {
	if g.cfg.OnSort == nil {
		return
	}
	i := columnIndex(g.cols, key)
	if i < 0 || !g.cols[i].Sortable {
		return
	}
	if g.sortKey != key {
		g.sortKey, g.sortDir = key, SortAsc
	} else {
		switch g.sortDir {
		case SortAsc:
			g.sortDir = SortDesc
		case SortDesc:
			g.sortKey, g.sortDir = "", SortNone
		default:
			g.sortDir = SortAsc
		}
	}
	g.cfg.OnSort(key, g.sortDir)
	g.layout()
}

// --- auto-width plumbing -------------------------------------------------

func (g *Grid) scheduleFlush() tea.Cmd {
	if !g.queue.hasDirty() {
		return nil
	}
	return g.sch.Schedule(kindAutoWidthFlush, g.queue.flushDelay())
}

func (g *Grid) flushAutoWidth() tea.Cmd {
	res := g.queue.flush(flushInput{
		cols:        g.visibleColumns(),
		mountedRows: g.mountedRows(),
		mountedCols: g.out.mountedCols,
		list:        g.list,
		wm:          g.wm,
		metrics:     g.m,
		viewportPx:  g.viewportPx(),
	})
	if len(res.updates) > 0 {
		if g.wm.apply(res.updates, SourceAutoMeasured, g.visibleSet) {
			g.layout()
			g.notifyWidths()
		}
	}
	if res.retry {
		return g.sch.Schedule(kindAutoWidthRetry, g.queue.retryDelay)
	}
	return nil
}

// --- layout + render -----------------------------------------------------

// layout runs the full pipeline: seed widths, container-fit, row and
// column windows, then render the mounted slice.
func (g *Grid) layout() {
	if g.wCells == 0 {
		return
	}
	visible := g.visibleColumns()
	g.visibleSet = make(map[string]struct{}, len(visible))
	for _, c := range visible {
		g.visibleSet[c.Key] = struct{}{}
	}
	g.wm.prune(g.visibleSet)
	g.queue.prune(g.visibleSet)
	g.wm.seed(visible, g.cfg.ControlledWidths, g.cfg.InitialWidths, g.viewportPx())

	natural := make(map[string]float64, len(visible))
	total := 0.0
	for _, c := range visible {
		w := g.wm.widthOf(c.Key)
		natural[c.Key] = w
		total += w
	}

	if g.cfg.AllowHorizontalOverflow {
		g.overflow = g.fit.update(total, g.viewportPx())
		g.displayPx = natural
	} else {
		// Fixed-role and externally specified columns keep their width;
		// everything else is flexible and shares the slack evenly.
		pinned := make(map[string]struct{})
		for _, c := range visible {
			switch {
			case c.Fixed:
				pinned[c.Key] = struct{}{}
			case c.Width.Set && c.Width.Unit != UnitAuto:
				pinned[c.Key] = struct{}{}
			case g.cfg.ControlledWidths != nil && has(g.cfg.ControlledWidths, c.Key):
				pinned[c.Key] = struct{}{}
			default:
				if st, ok := g.wm.state(c.Key); ok && st.Source == SourceUserResized {
					pinned[c.Key] = struct{}{}
				}
			}
		}
		g.displayPx = reconcileFit(fitInput{
			cols:       visible,
			natural:    natural,
			pinned:     pinned,
			viewportPx: g.viewportPx(),
			metrics:    g.m,
		})
		fitTotal := 0.0
		for _, w := range g.displayPx {
			fitTotal += w
		}
		g.overflow = g.fit.update(fitTotal, g.viewportPx())
	}
	if !g.overflow {
		g.scrollLeftPx = 0
	}

	g.rowWin = g.rowsV.window(g.scrollTopPx, g.bodyPx(), g.list.Len())

	lead, middle, tail := g.splitSticky(len(visible))
	middleCols := make([]Column, len(middle))
	for i, ci := range middle {
		middleCols[i] = visible[ci]
	}
	leadPx := 0.0
	for _, ci := range lead {
		leadPx += g.displayPx[visible[ci].Key]
	}
	tailPx := 0.0
	for _, ci := range tail {
		tailPx += g.displayPx[visible[ci].Key]
	}
	g.spans = g.colsV.spans(middleCols, func(k string) float64 { return g.displayPx[k] })
	middleViewport := g.viewportPx() - leadPx - tailPx
	if middleViewport < 0 {
		middleViewport = 0
	}
	// The scroll range ends at the last column's edge.
	if n := len(g.spans); n > 0 {
		if maxLeft := g.spans[n-1].endPx - middleViewport; g.scrollLeftPx > maxLeft {
			if maxLeft < 0 {
				maxLeft = 0
			}
			g.scrollLeftPx = maxLeft
		}
	}
	cw := g.colsV.window(g.scrollLeftPx, middleViewport, g.spans)
	g.colWin = cw
	g.mountedIdx = g.mountedIdx[:0]
	g.mountedIdx = append(g.mountedIdx, lead...)
	for i := cw.StartIndex; i < cw.EndIndex; i++ {
		g.mountedIdx = append(g.mountedIdx, middle[i])
	}
	g.mountedIdx = append(g.mountedIdx, tail...)
	g.leadCells = g.m.Cells(leadPx)

	rows := g.mountedRows()
	g.out = g.rdr.render(renderInput{
		cols:       visible,
		mountedIdx: g.mountedIdx,
		widthPx:    func(k string) float64 { return g.displayPx[k] },
		metrics:    g.m,
		rows:       rows,
		focusedKey: g.focus.key,
		hasFocus:   g.hasFocus,
		sortKey:    g.sortKey,
		sortDir:    g.sortDir,
	})

	// Adaptive row height: the first mounted row's real rendered height
	// corrects the estimate; per-key heights are cached.
	for _, r := range rows {
		if lines, ok := g.out.rowHeights[r.Key()]; ok {
			g.rowsV.observe(r.Key(), g.m.LinePx(lines))
		}
	}
}

// splitSticky partitions visible column indices into lead/middle/tail.
func (g *Grid) splitSticky(n int) (lead, middle, tail []int) {
	ls := g.cfg.StickyStart
	le := g.cfg.StickyEnd
	if !g.cfg.ColumnWindowing {
		ls, le = 0, 0
	}
	if ls > n {
		ls = n
	}
	trailFrom := n - le
	if trailFrom < ls {
		trailFrom = ls
	}
	for i := 0; i < ls; i++ {
		lead = append(lead, i)
	}
	for i := ls; i < trailFrom; i++ {
		middle = append(middle, i)
	}
	for i := trailFrom; i < n; i++ {
		tail = append(tail, i)
	}
	return lead, middle, tail
}

// mountedRows is the row slice of the current window.
func (g *Grid) mountedRows() []Row {
	return g.list.Lines(g.rowWin.Start, g.rowWin.Len())
}

// rowAtLine maps a viewport body line to the row shown there.
func (g *Grid) rowAtLine(line int) (Row, bool) {
	idx := g.firstVisibleRow() + line
	if idx < g.rowWin.Start || idx >= g.rowWin.End {
		return nil, false
	}
	rows := g.list.Lines(idx, 1)
	if len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}

// firstVisibleRow is the absolute index of the first row in the viewport
// (as opposed to the first mounted row, which includes overscan).
func (g *Grid) firstVisibleRow() int {
	rh := g.rowsV.rowPx()
	if rh <= 0 {
		return 0
	}
	i := int(g.scrollTopPx / rh)
	if i < g.rowWin.Start {
		i = g.rowWin.Start
	}
	return i
}

// mountedCellWidths returns the rendered cell width per mounted column.
func (g *Grid) mountedCellWidths() []int {
	out := make([]int, len(g.mountedIdx))
	visible := g.visibleColumns()
	for i, ci := range g.mountedIdx {
		out[i] = g.m.Cells(g.displayPx[visible[ci].Key])
	}
	return out
}

// clipCells is how many cells of the mounted line sit left of the
// viewport due to horizontal scrolling (overscan columns).
func (g *Grid) clipCells() int {
	if !g.overflow || len(g.spans) == 0 {
		return 0
	}
	cw := g.colWin
	if cw.StartIndex >= len(g.spans) {
		return 0
	}
	off := g.scrollLeftPx - g.spans[cw.StartIndex].startPx
	if off <= 0 {
		return 0
	}
	return g.m.Cells(off)
}

// View renders the viewport slice of the mounted window.
func (g *Grid) View() string {
	var b strings.Builder
	b.WriteString(g.clipLine(g.out.header))
	first := g.firstVisibleRow()
	for line := 0; line < g.bodyLines(); line++ {
		b.WriteByte('\n')
		idx := first + line
		bi := idx - g.rowWin.Start
		if idx >= g.rowWin.End || bi < 0 || bi >= len(g.out.body) {
			b.WriteString(strings.Repeat(" ", g.wCells))
			continue
		}
		b.WriteString(g.clipLine(g.out.body[bi]))
	}
	return b.String()
}

// clipLine applies horizontal scrolling: sticky lead cells stay, the
// scrolled middle is cut, and the result is fit to the viewport width.
func (g *Grid) clipLine(line string) string {
	cut := g.clipCells()
	if cut > 0 {
		total := ansi.StringWidth(line)
		keep := ansi.Cut(line, 0, g.leadCells)
		rest := ansi.Cut(line, g.leadCells+cut, total)
		line = keep + rest
	}
	if ansi.StringWidth(line) > g.wCells {
		line = ansi.Truncate(line, g.wCells, "")
	}
	if pad := g.wCells - ansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// --- change notification -------------------------------------------------

// notifyWidths fires the width sink only when the serialized signature
// actually changed.
func (g *Grid) notifyWidths() {
	if g.cfg.OnColumnWidthsChange == nil {
		return
	}
	snap := g.wm.snapshot()
	sig := widthsSignature(snap)
	if sig == g.lastWidthsSig {
		return
	}
	g.lastWidthsSig = sig
	g.cfg.OnColumnWidthsChange(snap)
}

func (g *Grid) notifyVisibility() {
	if g.cfg.OnColumnVisibilityChange == nil {
		return
	}
	overrides := g.VisibilityOverrides()
	sig := visibilitySignature(overrides)
	if sig == g.lastVisSig {
		return
	}
	g.lastVisSig = sig
	g.cfg.OnColumnVisibilityChange(overrides)
}
