package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// DefaultChromaStyle is used when no style is configured.
const DefaultChromaStyle = "native"

// YAMLViewer is a scrollable, syntax highlighted viewer for object YAML.
type YAMLViewer struct {
	title   string
	content []string
	width   int
	height  int
	offset  int
}

// NewYAMLViewer highlights text as YAML and builds a viewer. On highlight
// failure the raw text is shown instead.
func NewYAMLViewer(title, text, chromaStyle string) *YAMLViewer {
	if chromaStyle == "" {
		chromaStyle = DefaultChromaStyle
	}
	var buf strings.Builder
	highlighted := text
	if err := quick.Highlight(&buf, text, "yaml", "terminal256", chromaStyle); err == nil {
		highlighted = buf.String()
	}
	return &YAMLViewer{title: title, content: strings.Split(highlighted, "\n")}
}

func (v *YAMLViewer) SetDimensions(w, h int) { v.width, v.height = w, h }

func (v *YAMLViewer) maxOffset() int {
	return max(0, len(v.content)-v.bodyHeight())
}

// bodyHeight is the viewer height minus the title line.
func (v *YAMLViewer) bodyHeight() int {
	return max(0, v.height-1)
}

func (v *YAMLViewer) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch m.String() {
		case "up", "k":
			if v.offset > 0 {
				v.offset--
			}
		case "down", "j":
			if v.offset < v.maxOffset() {
				v.offset++
			}
		case "pgup":
			v.offset = max(0, v.offset-(v.bodyHeight()-1))
		case "pgdown":
			v.offset = min(v.maxOffset(), v.offset+(v.bodyHeight()-1))
		case "home":
			v.offset = 0
		case "end":
			v.offset = v.maxOffset()
		}
	case tea.MouseWheelMsg:
		e := m.Mouse()
		switch e.Button {
		case tea.MouseWheelUp:
			v.offset = max(0, v.offset-3)
		case tea.MouseWheelDown:
			v.offset = min(v.maxOffset(), v.offset+3)
		}
	}
	return nil
}

func (v *YAMLViewer) View() string {
	if v.height <= 0 || v.width <= 0 {
		return ""
	}
	body := v.bodyHeight()
	end := min(len(v.content), v.offset+body)
	lines := make([]string, 0, v.height)
	lines = append(lines, ViewerTitleStyle.Width(v.width).Render(ansi.Truncate(v.title, v.width, "…")))
	for _, ln := range v.content[v.offset:end] {
		lines = append(lines, ansi.Truncate(ln, v.width, "…"))
	}
	for len(lines) < v.height {
		lines = append(lines, "")
	}
	return PanelContentStyle.Width(v.width).Height(v.height).Render(strings.Join(lines, "\n"))
}
