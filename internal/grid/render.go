package grid

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Row/cell rendering. The renderer turns (row, visible-column-window)
// pairs into terminal lines, caching raw cell content so scrolling does
// not recompute unchanged cells. The cache is owned by the grid instance
// (never process-wide), keyed by row key and column key, and bounded by
// LRU eviction.

const renderCacheSize = 8192

// Styles are the visual knobs of one grid instance.
type Styles struct {
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Focused lipgloss.Style // hover/selection overlay on the focused row
	Badge   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true),
		Cell:    lipgloss.NewStyle(),
		Focused: lipgloss.NewStyle().Background(lipgloss.Color("12")).Foreground(lipgloss.Color("0")),
		Badge:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

type cellKey struct {
	row, col string
}

type renderer struct {
	cache  *lru.Cache[cellKey, string]
	styles Styles
}

func newRenderer(styles Styles) *renderer {
	c, _ := lru.New[cellKey, string](renderCacheSize)
	return &renderer{cache: c, styles: styles}
}

// invalidate drops all cached cell content; called when the backing data
// set is replaced.
func (r *renderer) invalidate() { r.cache.Purge() }

// invalidateRow drops one row's cells, e.g. after an in-place update.
func (r *renderer) invalidateRow(key string, cols []Column) {
	for _, c := range cols {
		r.cache.Remove(cellKey{row: key, col: c.Key})
	}
}

// cellText returns the raw rendered content for one cell, from cache when
// possible. Entries live at most as long as the row stays in the data.
func (r *renderer) cellText(row Row, c Column) string {
	k := cellKey{row: row.Key(), col: c.Key}
	if s, ok := r.cache.Get(k); ok {
		return s
	}
	s := c.cell(row)
	r.cache.Add(k, s)
	return s
}

type renderInput struct {
	cols       []Column
	mountedIdx []int // mounted column indices in display order
	widthPx    func(string) float64
	metrics    Metrics

	rows       []Row // mounted row window
	focusedKey string
	hasFocus   bool

	sortKey string
	sortDir SortDirection
}

type renderOutput struct {
	header      string
	body        []string
	rowLine     map[string]int // mounted row key -> body line index
	rowHeights  map[string]int // rendered line count per mounted row
	mountedCols map[string]struct{}
}

// render produces the header and the mounted body lines, and records
// where each mounted row key landed so focus, hover and menu anchoring
// can re-locate rows after any re-render.
func (r *renderer) render(in renderInput) renderOutput {
	out := renderOutput{
		rowLine:     make(map[string]int, len(in.rows)),
		rowHeights:  make(map[string]int, len(in.rows)),
		mountedCols: make(map[string]struct{}, len(in.mountedIdx)),
	}
	widths := make([]int, len(in.mountedIdx))
	for i, ci := range in.mountedIdx {
		c := in.cols[ci]
		widths[i] = in.metrics.Cells(in.widthPx(c.Key))
		out.mountedCols[c.Key] = struct{}{}
	}

	// Header with sort indicator.
	hcells := make([]string, len(in.mountedIdx))
	for i, ci := range in.mountedIdx {
		c := in.cols[ci]
		title := c.Title
		if c.Key == in.sortKey {
			switch in.sortDir {
			case SortAsc:
				title += " ^"
			case SortDesc:
				title += " v"
			}
		}
		hcells[i] = fitCell(title, widths[i])
	}
	out.header = r.styles.Header.Render(strings.Join(hcells, ""))

	out.body = make([]string, 0, len(in.rows))
	for _, row := range in.rows {
		line, lines := r.renderRow(row, in, widths)
		out.rowLine[row.Key()] = len(out.body)
		out.rowHeights[row.Key()] = lines
		out.body = append(out.body, line)
	}
	return out
}

// renderRow builds one terminal line and reports the natural line count
// of the row's content (cells may embed newlines; they are flattened for
// display but counted for height measurement).
func (r *renderer) renderRow(row Row, in renderInput, widths []int) (string, int) {
	cells := make([]string, len(in.mountedIdx))
	lines := 1
	for i, ci := range in.mountedIdx {
		c := in.cols[ci]
		text := r.cellText(row, c)
		if n := strings.Count(text, "\n") + 1; n > lines {
			lines = n
		}
		text = strings.ReplaceAll(text, "\n", " ")
		cell := fitCell(text, widths[i])
		if c.Badge {
			cell = r.styles.Badge.Render(cell)
		} else {
			cell = r.styles.Cell.Render(cell)
		}
		cells[i] = cell
	}
	line := strings.Join(cells, "")
	if in.hasFocus && row.Key() == in.focusedKey {
		line = r.styles.Focused.Render(ansi.Strip(line))
	}
	return line, lines
}

// fitCell truncates with an ellipsis tail or pads with spaces to exactly
// w cells. One trailing cell is kept as the column gutter.
func fitCell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	content := w - 1
	if content < 1 {
		content = w
	}
	if lipgloss.Width(s) > content {
		s = ansi.Truncate(s, content, "…")
	}
	if pad := w - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
