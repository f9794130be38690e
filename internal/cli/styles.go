package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// styles are bound to the renderer of the output they are written to, so a
// piped stdout gets plain text while a terminal gets colour.
type styles struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func newRenderer(w io.Writer, noColor bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff5fd2")),
		Key: r.NewStyle().
			Foreground(lipgloss.Color("#5fd7ff")),
		Value: r.NewStyle().
			Foreground(lipgloss.Color("#ffffff")),
		Muted: r.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a8a8a8")),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true),
	}
}
