package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/flash2do/internal/config"
)

type palette struct {
	accent   lipgloss.Color
	text     lipgloss.Color
	muted    lipgloss.Color
	selected lipgloss.Color
	selectBg lipgloss.Color
	urgent   lipgloss.Color
	danger   lipgloss.Color
	border   lipgloss.Color
}

var (
	darkPalette = palette{
		accent:   lipgloss.Color("#25A065"),
		text:     lipgloss.Color("#E6E6E6"),
		muted:    lipgloss.Color("#6C7086"),
		selected: lipgloss.Color("#EE6FF8"),
		selectBg: lipgloss.Color("#313244"),
		urgent:   lipgloss.Color("#F38BA8"),
		danger:   lipgloss.Color("#F38BA8"),
		border:   lipgloss.Color("#585B70"),
	}
	lightPalette = palette{
		accent:   lipgloss.Color("#1B7F4F"),
		text:     lipgloss.Color("#1E1E2E"),
		muted:    lipgloss.Color("#8C8FA1"),
		selected: lipgloss.Color("#8839EF"),
		selectBg: lipgloss.Color("#E6E9EF"),
		urgent:   lipgloss.Color("#D20F39"),
		danger:   lipgloss.Color("#D20F39"),
		border:   lipgloss.Color("#ACB0BE"),
	}
)

type styles struct {
	title    lipgloss.Style
	empty    lipgloss.Style
	row      lipgloss.Style
	selected lipgloss.Style
	urgent   lipgloss.Style
	deadline lipgloss.Style
	toolbar  lipgloss.Style
	button   lipgloss.Style
	disabled lipgloss.Style
	focused  lipgloss.Style
	modal    lipgloss.Style
	label    lipgloss.Style
	alert    lipgloss.Style
	status   lipgloss.Style
}

// resolveDark maps a theme name to a dark/light choice. auto asks the
// terminal through lipgloss.
func resolveDark(theme string) bool {
	switch theme {
	case config.ThemeLight:
		return false
	case config.ThemeDark:
		return true
	default:
		return lipgloss.HasDarkBackground()
	}
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(p.accent).
			Padding(0, 1).
			Bold(true),
		empty:    lipgloss.NewStyle().Foreground(p.accent).Italic(true).PaddingLeft(2),
		row:      lipgloss.NewStyle().Foreground(p.text),
		selected: lipgloss.NewStyle().Foreground(p.selected).Background(p.selectBg),
		urgent:   lipgloss.NewStyle().Foreground(p.urgent).Bold(true),
		deadline: lipgloss.NewStyle().Foreground(p.muted),
		toolbar:  lipgloss.NewStyle().Foreground(p.selected).Bold(true),
		button:   lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		disabled: lipgloss.NewStyle().Foreground(p.muted).Faint(true),
		focused:  lipgloss.NewStyle().Foreground(p.selected).Bold(true),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		label:  lipgloss.NewStyle().Foreground(p.muted),
		alert:  lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		status: lipgloss.NewStyle().Foreground(p.danger),
	}
}
