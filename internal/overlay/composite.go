package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Composite draws fg over bg at the requested position plus offsets and
// returns the combined view. Both inputs are multi-line, possibly styled
// strings; splicing is ANSI-aware so styled backgrounds survive.
func Composite(fg, bg string, xPos, yPos Position, xOff, yOff int) string {
	x, y := offsets(fg, bg, xPos, yPos, xOff, yOff)
	return At(fg, bg, x, y)
}

// At draws fg over bg with the foreground's top-left corner at cell
// (x, y) of the background, clamped so the overlay stays inside.
func At(fg, bg string, x, y int) string {
	fgLines := blockLines(fg)
	bgLines := blockLines(bg)
	fgW := blockWidth(fgLines)
	bgW := blockWidth(bgLines)

	x = clamp(x, 0, bgW-fgW)
	y = clamp(y, 0, len(bgLines)-len(fgLines))

	out := make([]string, len(bgLines))
	copy(out, bgLines)
	for i, fl := range fgLines {
		bi := y + i
		if bi < 0 || bi >= len(out) {
			continue
		}
		out[bi] = splice(out[bi], fl, x, fgW)
	}
	return strings.Join(out, "\n")
}

// splice replaces w cells of line starting at column x with fg, padding
// both sides as needed.
func splice(line, fg string, x, w int) string {
	total := ansi.StringWidth(line)
	left := ansi.Cut(line, 0, x)
	if lw := ansi.StringWidth(left); lw < x {
		left += strings.Repeat(" ", x-lw)
	}
	if fw := ansi.StringWidth(fg); fw < w {
		fg += strings.Repeat(" ", w-fw)
	}
	right := ""
	if x+w < total {
		right = ansi.Cut(line, x+w, total)
	}
	return left + fg + right
}

// offsets resolves the foreground's top-left corner for a position pair.
// Centering pushes left/up when the leftover space is odd.
func offsets(fg, bg string, xPos, yPos Position, xOff, yOff int) (int, int) {
	fgLines := blockLines(fg)
	bgLines := blockLines(bg)
	fgW, bgW := blockWidth(fgLines), blockWidth(bgLines)
	fgH, bgH := len(fgLines), len(bgLines)

	var x, y int
	switch xPos {
	case Right:
		x = bgW - fgW
	case Center:
		x = (bgW - fgW) / 2
	}
	switch yPos {
	case Bottom:
		y = bgH - fgH
	case Center:
		y = (bgH - fgH + 1) / 2
	}
	return x + xOff, y + yOff
}

// lines splits a view into display lines, tolerating CRLF endings.
func lines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// blockLines is lines without a trailing empty line, so views ending in a
// newline do not grow a phantom row.
func blockLines(s string) []string {
	out := lines(s)
	if n := len(out); n > 1 && out[n-1] == "" {
		out = out[:n-1]
	}
	return out
}

func blockWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		if lw := ansi.StringWidth(l); lw > w {
			w = lw
		}
	}
	return w
}

// clamp bounds v to [lo, hi]; an inverted range passes v through.
func clamp(v, lo, hi int) int {
	if lo > hi {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
