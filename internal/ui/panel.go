package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/luxury-yacht/kview/internal/grid"
)

// PanelConfig wires a panel to its grid and shell hooks.
type PanelConfig struct {
	Title string // header path, e.g. "minikube > default > pods"
	Grid  grid.Config

	// YAMLFor produces the object YAML shown by the detail viewer.
	YAMLFor func(grid.Row) (string, error)
	// Refresh reloads the backing list.
	Refresh func() tea.Cmd
	// ChromaStyle names the highlight style for the viewer.
	ChromaStyle string
}

// Panel hosts one grid plus its chrome: a header path line, the grid
// viewport, a footer hint line and the function key bar. It owns the
// context menu widget and the YAML detail viewer.
type Panel struct {
	cfg  PanelConfig
	grid *grid.Grid

	menu     *Menu
	menuGrid bool // menu originated from a grid request

	viewer *YAMLViewer

	width, height int
}

// NewPanel builds the panel and its grid.
func NewPanel(cfg PanelConfig) *Panel {
	p := &Panel{cfg: cfg}
	p.grid = grid.New(cfg.Grid)
	return p
}

func (p *Panel) Init() tea.Cmd {
	p.grid.Focus(false)
	return p.grid.Init()
}

// Grid exposes the hosted grid for data wiring.
func (p *Panel) Grid() *grid.Grid { return p.grid }

// Modal reports whether a menu or viewer currently captures input.
func (p *Panel) Modal() bool { return p.menu != nil || p.viewer != nil }

// Close releases the grid's scheduler.
func (p *Panel) Close() { p.grid.Close() }

// gridHeight is the panel height minus header, footer and key bar.
func (p *Panel) gridHeight() int { return max(0, p.height-3) }

func (p *Panel) SetSize(w, h int) {
	p.width, p.height = w, h
	p.grid.SetSize(w, p.gridHeight())
	if p.viewer != nil {
		p.viewer.SetDimensions(w, h-1)
	}
}

func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	if v, ok := msg.(tea.WindowSizeMsg); ok {
		p.SetSize(v.Width, v.Height)
		return nil
	}

	if p.viewer != nil {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "esc", "f3", "q":
				p.viewer = nil
				p.grid.Focus(false)
				return nil
			}
		}
		return p.viewer.Update(msg)
	}

	if p.menu != nil {
		done, cmd := p.menu.Update(msg)
		if done {
			p.closeMenu()
		}
		return cmd
	}

	switch v := msg.(type) {
	case tea.KeyMsg:
		switch v.String() {
		case "f3":
			return p.openViewer()
		case "f5":
			if p.cfg.Refresh != nil {
				return p.cfg.Refresh()
			}
			return nil
		case "f9":
			p.openColumnsMenu()
			return nil
		}
		return p.afterGrid(p.grid.Update(msg))
	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		return p.afterGrid(p.routeMouse(msg))
	default:
		return p.afterGrid(p.grid.Update(msg))
	}
}

// routeMouse translates panel coordinates into grid-local ones. The grid
// occupies the lines between the header path and the footer.
func (p *Panel) routeMouse(msg tea.Msg) tea.Cmd {
	translate := func(m tea.Mouse) (tea.Mouse, bool) {
		if m.Y < 1 || m.Y > p.gridHeight() {
			return m, false
		}
		m.Y--
		return m, true
	}
	switch v := msg.(type) {
	case tea.MouseClickMsg:
		if e := v.Mouse(); e.Y == p.height-1 {
			return p.functionKeyClick(e.X)
		} else if t, ok := translate(e); ok {
			return p.grid.Update(tea.MouseClickMsg(t))
		}
	case tea.MouseMotionMsg:
		// Drags may leave the grid area; the grid clamps for us.
		e := v.Mouse()
		e.Y--
		return p.grid.Update(tea.MouseMotionMsg(e))
	case tea.MouseReleaseMsg:
		e := v.Mouse()
		e.Y--
		return p.grid.Update(tea.MouseReleaseMsg(e))
	case tea.MouseWheelMsg:
		if t, ok := translate(v.Mouse()); ok {
			return p.grid.Update(tea.MouseWheelMsg(t))
		}
	}
	return nil
}

// afterGrid adopts a menu request the grid produced during the update.
func (p *Panel) afterGrid(cmd tea.Cmd) tea.Cmd {
	req, open := p.grid.Menu()
	if !open {
		return cmd
	}
	items := p.supplementMenu(req)
	req.Items = items
	req.Y++ // grid-local anchor to panel coordinates
	if m := NewMenu(req); m != nil {
		p.menu = m
		p.menuGrid = true
	} else {
		p.grid.CloseMenu()
	}
	return cmd
}

func (p *Panel) closeMenu() {
	p.menu = nil
	if p.menuGrid {
		p.menuGrid = false
		p.grid.CloseMenu()
	} else {
		p.grid.Focus(false)
	}
}

// supplementMenu appends the standard column and object operations to the
// caller-supplied items of a grid menu request.
func (p *Panel) supplementMenu(req grid.MenuRequest) []grid.MenuItem {
	items := append([]grid.MenuItem(nil), req.Items...)
	g := p.grid
	if req.Source == grid.MenuCell && req.Row != nil && p.cfg.YAMLFor != nil {
		row := req.Row
		items = append(items, grid.MenuItem{Title: "View YAML", Do: func() tea.Cmd {
			return p.viewerFor(row)
		}})
	}
	if key := req.ColumnKey; key != "" {
		if req.Source == grid.MenuHeader {
			items = append(items,
				grid.MenuItem{Title: "Sort ascending", Do: func() tea.Cmd {
					g.SetSort(key, grid.SortAsc)
					return nil
				}},
				grid.MenuItem{Title: "Sort descending", Do: func() tea.Cmd {
					g.SetSort(key, grid.SortDesc)
					return nil
				}},
				grid.MenuItem{Title: "Clear sort", Do: func() tea.Cmd {
					g.SetSort("", grid.SortNone)
					return nil
				}},
			)
		}
		items = append(items,
			grid.MenuItem{Title: "Auto-size column", Do: func() tea.Cmd {
				g.AutoSize(key)
				return nil
			}},
			grid.MenuItem{Title: "Reset width", Do: func() tea.Cmd {
				return g.ResetColumnWidth(key)
			}},
			grid.MenuItem{Title: "Hide column", Do: func() tea.Cmd {
				return g.ToggleColumn(key)
			}},
		)
	}
	return items
}

// openColumnsMenu shows the visibility toggle list for all columns.
func (p *Panel) openColumnsMenu() {
	g := p.grid
	var items []grid.MenuItem
	for _, c := range g.Columns() {
		key := c.Key
		mark := "  "
		if g.ColumnVisible(key) {
			mark = "x "
		}
		items = append(items, grid.MenuItem{Title: mark + c.Title, Do: func() tea.Cmd {
			return g.ToggleColumn(key)
		}})
	}
	items = append(items, grid.MenuItem{Title: "Reset columns", Do: func() tea.Cmd {
		return g.ResetColumnVisibility()
	}})
	if m := NewMenu(grid.MenuRequest{X: 2, Y: 1, Items: items}); m != nil {
		p.menu = m
		p.menuGrid = false
		p.grid.Blur()
	}
}

func (p *Panel) openViewer() tea.Cmd {
	row, ok := p.grid.FocusedRow()
	if !ok {
		return nil
	}
	return p.viewerFor(row)
}

func (p *Panel) viewerFor(row grid.Row) tea.Cmd {
	if p.cfg.YAMLFor == nil {
		return nil
	}
	text, err := p.cfg.YAMLFor(row)
	if err != nil {
		text = fmt.Sprintf("error: %v", err)
	}
	p.viewer = NewYAMLViewer(row.Key(), text, p.cfg.ChromaStyle)
	p.viewer.SetDimensions(p.width, p.height-1)
	p.grid.Blur()
	return nil
}

type fkey struct {
	key, label string
	do         func() tea.Cmd
}

func (p *Panel) functionKeys() []fkey {
	return []fkey{
		{"F3", "View", p.openViewer},
		{"F5", "Refresh", func() tea.Cmd {
			if p.cfg.Refresh != nil {
				return p.cfg.Refresh()
			}
			return nil
		}},
		{"F9", "Columns", func() tea.Cmd { p.openColumnsMenu(); return nil }},
		{"F10", "Menu", func() tea.Cmd { return p.grid.Update(tea.KeyPressMsg{Code: tea.KeyF10}) }},
	}
}

// functionKeyClick maps an x coordinate on the key bar to its action,
// recomputing the same spans the renderer produces.
func (p *Panel) functionKeyClick(x int) tea.Cmd {
	edge := 0
	for _, fk := range p.functionKeys() {
		w := lipgloss.Width(FunctionKeyStyle.Render(fk.key) + FunctionKeyDescriptionStyle.Render(fk.label))
		if x >= edge && x < edge+w {
			return p.afterGrid(fk.do())
		}
		edge += w
	}
	return nil
}

func (p *Panel) renderFunctionKeys() string {
	var parts []string
	for _, fk := range p.functionKeys() {
		parts = append(parts, FunctionKeyStyle.Render(fk.key)+FunctionKeyDescriptionStyle.Render(fk.label))
	}
	bar := strings.Join(parts, "")
	return FunctionKeyBarStyle.Width(p.width).Render(bar)
}

// footer summarizes the focus position, e.g. "3/42 default/web-0".
func (p *Panel) footer() string {
	n := 0
	if l := p.grid.List(); l != nil {
		n = l.Len()
	}
	text := fmt.Sprintf(" %d rows", n)
	if key := p.grid.FocusedKey(); key != "" {
		if i, _, ok := p.grid.List().Find(key); ok {
			text = fmt.Sprintf(" %d/%d %s", i+1, n, key)
		}
	}
	return PanelFooterStyle.Width(p.width).Render(ansi.Truncate(text, p.width, "…"))
}

func (p *Panel) View() string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	if p.viewer != nil {
		return p.viewer.View() + "\n" + p.renderFunctionKeys()
	}
	header := PanelHeaderStyle.Width(p.width).Render(ansi.Truncate(" "+p.cfg.Title, p.width, "…"))
	view := header + "\n" + p.grid.View() + "\n" + p.footer() + "\n" + p.renderFunctionKeys()
	if p.menu != nil {
		view = p.menu.Overlay(view)
	}
	return view
}
