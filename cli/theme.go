package cli

import "github.com/charmbracelet/lipgloss"

// Palette holds the colors used by help, tables and error output.
type Palette struct {
	Orange lipgloss.AdaptiveColor
	Blue   lipgloss.AdaptiveColor
	Cyan   lipgloss.AdaptiveColor
	Violet lipgloss.AdaptiveColor
	Green  lipgloss.AdaptiveColor
	Red    lipgloss.AdaptiveColor
	Muted  lipgloss.AdaptiveColor
}

// Theme is the set of styles shared by the gerrit-hooks commands.
type Theme struct {
	Colors  Palette
	Title   lipgloss.Style
	Section lipgloss.Style
	Command lipgloss.Style
	Flag    lipgloss.Style
	Italic  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
}

// DefaultTheme is the theme used unless a command overrides it.
var DefaultTheme = NewTheme(Palette{
	Orange: lipgloss.AdaptiveColor{Light: "#D65D0E", Dark: "#FE8019"},
	Blue:   lipgloss.AdaptiveColor{Light: "#076678", Dark: "#458588"},
	Cyan:   lipgloss.AdaptiveColor{Light: "#458588", Dark: "#83A598"},
	Violet: lipgloss.AdaptiveColor{Light: "#8F3F71", Dark: "#B16286"},
	Green:  lipgloss.AdaptiveColor{Light: "#98971A", Dark: "#B8BB26"},
	Red:    lipgloss.AdaptiveColor{Light: "#CC241D", Dark: "#FB4934"},
	Muted:  lipgloss.AdaptiveColor{Light: "#928374", Dark: "#BDAE93"},
})

// NewTheme derives the styles from a palette.
func NewTheme(p Palette) *Theme {
	return &Theme{
		Colors:  p,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Orange),
		Section: lipgloss.NewStyle().Italic(true).Foreground(p.Orange),
		Command: lipgloss.NewStyle().Bold(true).Foreground(p.Blue),
		Flag:    lipgloss.NewStyle().Foreground(p.Violet),
		Italic:  lipgloss.NewStyle().Italic(true),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Success: lipgloss.NewStyle().Foreground(p.Green),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.Red),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(p.Cyan),
	}
}
