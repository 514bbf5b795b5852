package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	primary  = lipgloss.Color("#7D56F4")
	success  = lipgloss.Color("#00C853")
	errorCol = lipgloss.Color("#FF1744")
	muted    = lipgloss.Color("#565F89")
	accent   = lipgloss.Color("#00E5FF")
)

// styles are bound to the renderer of the shell's output so colors are only
// emitted on terminals that support them.
type styles struct {
	header   lipgloss.Style
	sub      lipgloss.Style
	key      lipgloss.Style
	value    lipgloss.Style
	muted    lipgloss.Style
	prompt   lipgloss.Style
	ok       lipgloss.Style
	failed   lipgloss.Style
	selected lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		header: r.NewStyle().
			Foreground(primary).
			Bold(true),
		sub: r.NewStyle().
			Foreground(muted),
		key: r.NewStyle().
			Foreground(muted).
			Width(14),
		value: r.NewStyle(),
		muted: r.NewStyle().
			Foreground(muted).
			Faint(true),
		prompt: r.NewStyle().
			Foreground(accent).
			Bold(true),
		ok: r.NewStyle().
			Foreground(success),
		failed: r.NewStyle().
			Foreground(errorCol),
		selected: r.NewStyle().
			Foreground(primary).
			Bold(true),
	}
}
