package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts of the staking screen. Amount input only
// accepts digits and a dot, so letter keys are free for commands.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	Stake   key.Binding
	Max     key.Binding
	Clear   key.Binding
	Refresh key.Binding

	ToggleLogs  key.Binding
	ToggleDebug key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Stake: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "stake"),
		),
		Max: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "max"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs"),
		),
		ToggleDebug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "debug logs"),
		),
	}
}

// ShortHelp is the help bar content.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stake, k.Max, k.Clear, k.Refresh, k.ToggleLogs, k.Help, k.Quit}
}

// FullHelp adds the log panel bindings.
func (k KeyMap) FullHelp() []key.Binding {
	return append(k.ShortHelp(), k.ToggleDebug)
}
