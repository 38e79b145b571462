package style

import "github.com/charmbracelet/lipgloss"

var (
	Cyan   = lipgloss.Color("#00E5FF") // primary highlight
	Blue   = lipgloss.Color("#3B82F6") // info
	Purple = lipgloss.Color("#8B5CF6") // afSUI accent
	Yellow = lipgloss.Color("#FFB500") // warnings
	Green  = lipgloss.Color("#2AFFAA") // success
	Red    = lipgloss.Color("#FF5555") // errors

	Base03 = lipgloss.Color("#1B1D23") // background
	Base02 = lipgloss.Color("#262831") // darker background
	Base01 = lipgloss.Color("#6C7280") // muted text
	Base2  = lipgloss.Color("#ECEFF4") // primary text
	Base1  = lipgloss.Color("#B4BCC8") // secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

func DefaultPalette() Palette {
	return Palette{
		Primary: Cyan,
		Accent:  Purple,
		Success: Green,
		Error:   Red,
		Warning: Yellow,
		Info:    Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}
