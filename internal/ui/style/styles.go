package style

import "github.com/charmbracelet/lipgloss"

// Styles groups everything the staking terminal renders with.
type Styles struct {
	Title     lipgloss.Style
	Panel     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Button    lipgloss.Style
	ButtonOff lipgloss.Style
	LogPanel  lipgloss.Style
}

func NewStyles(p Palette) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			MarginBottom(1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),
		Label:   lipgloss.NewStyle().Foreground(p.TextSecondary),
		Value:   lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(p.TextMuted),
		Accent:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(p.Error),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Success: lipgloss.NewStyle().Foreground(p.Success).Bold(true),
		Button: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Primary).
			Bold(true).
			Padding(0, 2),
		ButtonOff: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Background(p.BackgroundAlt).
			Padding(0, 2),
		LogPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Info).
			Padding(0, 1).
			MarginTop(1),
	}
}

func DefaultStyles() Styles {
	return NewStyles(DefaultPalette())
}
