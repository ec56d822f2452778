package ui

import "github.com/charmbracelet/lipgloss/v2"

// Color constants
const (
	ColorBlack      = "0"
	ColorDarkerBlue = "4"
	ColorCyan       = "6"
	ColorGrey       = "7"
	ColorWhite      = "15"
)

// Common styles
var (
	// Panel styles
	PanelHeaderStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorDarkerBlue)).
				Foreground(lipgloss.Color(ColorWhite)).
				Bold(true)

	PanelContentStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorDarkerBlue)).
				Foreground(lipgloss.Color(ColorGrey))

	PanelFooterStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorDarkerBlue)).
				Foreground(lipgloss.Color(ColorGrey))

	// Function key styles
	FunctionKeyStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorBlack)).
				Padding(0, 0, 0, 1)

	FunctionKeyDescriptionStyle = lipgloss.NewStyle().
					Background(lipgloss.Color(ColorCyan)).
					Foreground(lipgloss.Color(ColorBlack)).
					Padding(0, 1, 0, 0)

	FunctionKeyBarStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorBlack)).
				Foreground(lipgloss.Color(ColorGrey))

	// Context menu styles
	MenuBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(ColorCyan)).
			Background(lipgloss.Color(ColorDarkerBlue))

	MenuItemStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorDarkerBlue)).
			Foreground(lipgloss.Color(ColorGrey))

	MenuItemSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorCyan)).
				Foreground(lipgloss.Color(ColorBlack))

	MenuItemDisabledStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorDarkerBlue)).
				Foreground(lipgloss.Color(ColorCyan))

	// Viewer styles
	ViewerTitleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorCyan)).
				Foreground(lipgloss.Color(ColorBlack)).
				Bold(true)
)
