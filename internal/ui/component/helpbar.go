package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/afsui-staker/internal/ui/style"
)

// HelpBar renders key bindings as "key desc" pairs, wrapping to the width.
type HelpBar struct {
	bindings []key.Binding
	width    int

	keyStyle  lipgloss.Style
	descStyle lipgloss.Style
	separator string
}

func NewHelpBar(styles style.Styles) *HelpBar {
	return &HelpBar{
		width:     80,
		keyStyle:  styles.Accent,
		descStyle: styles.Muted,
		separator: styles.Muted.Render(" • "),
	}
}

func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.bindings = bindings
	return h
}

func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

func (h *HelpBar) View() string {
	items := h.items()
	if len(items) == 0 {
		return ""
	}
	return h.wrap(items, h.width-2)
}

// items skips disabled bindings and those without a description.
func (h *HelpBar) items() []string {
	items := make([]string, 0, len(h.bindings))
	for _, b := range h.bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		if help.Key == "" || help.Desc == "" {
			continue
		}
		items = append(items, h.keyStyle.Render(help.Key)+" "+h.descStyle.Render(help.Desc))
	}
	return items
}

func (h *HelpBar) wrap(items []string, maxWidth int) string {
	var lines []string
	var current []string
	width := 0
	sepWidth := lipgloss.Width(h.separator)

	for _, item := range items {
		w := lipgloss.Width(item) + sepWidth
		if width+w > maxWidth && len(current) > 0 {
			lines = append(lines, strings.Join(current, h.separator))
			current = nil
			width = 0
		}
		current = append(current, item)
		width += w
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, h.separator))
	}
	return strings.Join(lines, "\n")
}
