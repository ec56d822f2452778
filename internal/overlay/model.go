// Package overlay composes foreground views (menus, modal viewers) over
// a background view in terminal cell space.
package overlay

// Layer composes a foreground view over a background view. Positioned
// layers (Position pair plus offsets) center modals; anchored layers
// (AnchorAt) pin context menus to a grid-computed cell.
type Layer struct {
	Foreground string
	Background string

	XPosition Position
	YPosition Position
	XOffset   int
	YOffset   int

	anchored         bool
	anchorX, anchorY int
}

// New builds a positioned layer.
func New(fg, bg string, xPos, yPos Position, xOff, yOff int) Layer {
	return Layer{
		Foreground: fg,
		Background: bg,
		XPosition:  xPos,
		YPosition:  yPos,
		XOffset:    xOff,
		YOffset:    yOff,
	}
}

// AnchorAt builds a layer pinned to an absolute background cell.
func AnchorAt(fg, bg string, x, y int) Layer {
	return Layer{Foreground: fg, Background: bg, anchored: true, anchorX: x, anchorY: y}
}

func (l Layer) View() string {
	if l.Foreground == "" {
		return l.Background
	}
	if l.Background == "" {
		return l.Foreground
	}
	if l.anchored {
		return At(l.Foreground, l.Background, l.anchorX, l.anchorY)
	}
	return Composite(l.Foreground, l.Background, l.XPosition, l.YPosition, l.XOffset, l.YOffset)
}
