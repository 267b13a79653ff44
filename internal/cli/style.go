package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// 256-color palette shared with the report sink.
const (
	colorOrange  = "208" // hints
	colorDim     = "241" // labels
	colorWhite   = "255" // values
	colorMagenta = "205" // headings
)

// styles renders CLI output for one writer. Colors are dropped when the
// writer is not a terminal.
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	hint    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorMagenta)),
		label:   r.NewStyle().Foreground(lipgloss.Color(colorDim)),
		value:   r.NewStyle().Foreground(lipgloss.Color(colorWhite)),
		hint:    r.NewStyle().Foreground(lipgloss.Color(colorOrange)),
	}
}

// field renders "label: value" padded so values line up.
func (s styles) field(label, value string, width int) string {
	return s.label.Render(fmt.Sprintf("%-*s", width+1, label+":")) + " " + s.value.Render(value)
}
