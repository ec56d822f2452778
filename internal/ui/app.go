package ui

import (
	tea "github.com/charmbracelet/bubbletea/v2"
)

// App is the program root: one panel over one resource list.
type App struct {
	panel *Panel

	width, height int
}

// NewApp wraps a panel into a runnable model.
func NewApp(panel *Panel) *App {
	return &App{panel: panel}
}

func (a *App) Init() tea.Cmd {
	return a.panel.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		v.Width = max(40, v.Width)
		v.Height = max(5, v.Height)
		a.width, a.height = v.Width, v.Height
		a.panel.SetSize(v.Width, v.Height)
		return a, nil
	case tea.KeyMsg:
		switch v.String() {
		case "ctrl+c":
			a.panel.Close()
			return a, tea.Quit
		case "q":
			// Modal widgets consume q themselves (viewer close).
			if !a.panel.Modal() {
				a.panel.Close()
				return a, tea.Quit
			}
		}
	}
	return a, a.panel.Update(msg)
}

func (a *App) View() (string, *tea.Cursor) {
	return a.panel.View(), nil
}
