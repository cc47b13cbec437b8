package shell

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	colorRecord  = lipgloss.Color("#00CC33")
	colorLabel   = lipgloss.Color("#008F11")
	colorFlagSet = lipgloss.Color("#FFAA00")
	colorDim     = lipgloss.Color("#4E4E4E")
	colorError   = lipgloss.Color("#FF3300")
)

// styles holds the shell's styles bound to one output. Styles render
// without escape codes when the output is not a terminal.
type styles struct {
	record   lipgloss.Style
	label    lipgloss.Style
	flagSet  lipgloss.Style
	flagOff  lipgloss.Style
	err      lipgloss.Style
	heading  lipgloss.Style
	levelHot lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		record: r.NewStyle().
			Foreground(colorRecord),
		label: r.NewStyle().
			Foreground(colorLabel),
		flagSet: r.NewStyle().
			Foreground(colorFlagSet).
			Bold(true),
		flagOff: r.NewStyle().
			Foreground(colorDim),
		err: r.NewStyle().
			Foreground(colorError).
			Bold(true),
		heading: r.NewStyle().
			Foreground(colorRecord).
			Bold(true),
		levelHot: r.NewStyle().
			Foreground(colorFlagSet),
	}
}
