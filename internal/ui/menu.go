package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/luxury-yacht/kview/internal/grid"
	"github.com/luxury-yacht/kview/internal/overlay"
)

// Menu is the context menu widget the panel opens on grid menu requests.
// It owns keyboard and mouse handling while open; Close returns input to
// the grid.
type Menu struct {
	items    []grid.MenuItem
	selected int
	x, y     int
	width    int
}

// NewMenu builds a menu from a grid request. Returns nil when the request
// carries no items.
func NewMenu(req grid.MenuRequest) *Menu {
	if len(req.Items) == 0 {
		return nil
	}
	w := 0
	for _, it := range req.Items {
		if lw := lipgloss.Width(it.Title); lw > w {
			w = lw
		}
	}
	m := &Menu{items: req.Items, x: req.X, y: req.Y, width: w + 2}
	m.selected = m.nextEnabled(0, 1)
	return m
}

// nextEnabled finds the first enabled item starting at i, stepping by dir.
func (m *Menu) nextEnabled(i, dir int) int {
	for n := 0; n < len(m.items); n++ {
		idx := ((i+n*dir)%len(m.items) + len(m.items)) % len(m.items)
		if !m.items[idx].Disabled {
			return idx
		}
	}
	return 0
}

// Update handles one message. done reports whether the menu should close.
func (m *Menu) Update(msg tea.Msg) (done bool, cmd tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		switch v.String() {
		case "esc":
			return true, nil
		case "up", "k":
			m.selected = m.nextEnabled(m.selected-1, -1)
		case "down", "j":
			m.selected = m.nextEnabled(m.selected+1, 1)
		case "home":
			m.selected = m.nextEnabled(0, 1)
		case "end":
			m.selected = m.nextEnabled(len(m.items)-1, -1)
		case "enter":
			return true, m.invoke(m.selected)
		}
	case tea.MouseClickMsg:
		e := v.Mouse()
		idx, inside := m.hit(e.X, e.Y)
		if !inside {
			// Clicks outside dismiss the menu.
			return true, nil
		}
		if idx >= 0 && !m.items[idx].Disabled {
			return true, m.invoke(idx)
		}
	case tea.MouseMotionMsg:
		e := v.Mouse()
		if idx, inside := m.hit(e.X, e.Y); inside && idx >= 0 && !m.items[idx].Disabled {
			m.selected = idx
		}
	}
	return false, nil
}

func (m *Menu) invoke(i int) tea.Cmd {
	if i < 0 || i >= len(m.items) || m.items[i].Disabled {
		return nil
	}
	if do := m.items[i].Do; do != nil {
		return do()
	}
	return nil
}

// hit maps screen coordinates to an item index. inside reports whether
// the point is within the menu frame at all; idx is -1 for frame border
// hits.
func (m *Menu) hit(x, y int) (idx int, inside bool) {
	w := m.width + 2 // border
	h := len(m.items) + 2
	if x < m.x || x >= m.x+w || y < m.y || y >= m.y+h {
		return -1, false
	}
	row := y - m.y - 1
	if row < 0 || row >= len(m.items) || x == m.x || x == m.x+w-1 {
		return -1, true
	}
	return row, true
}

// View renders the bordered item list.
func (m *Menu) View() string {
	rows := make([]string, len(m.items))
	for i, it := range m.items {
		st := MenuItemStyle
		switch {
		case it.Disabled:
			st = MenuItemDisabledStyle
		case i == m.selected:
			st = MenuItemSelectedStyle
		}
		rows[i] = st.Width(m.width).Render(" " + it.Title)
	}
	return MenuBorderStyle.Render(strings.Join(rows, "\n"))
}

// Overlay composites the menu onto the panel view at its anchor.
func (m *Menu) Overlay(bg string) string {
	return overlay.AnchorAt(m.View(), bg, m.x, m.y).View()
}
