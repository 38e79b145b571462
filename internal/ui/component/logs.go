package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/afsui-staker/internal/logger"
	"github.com/rovshanmuradov/afsui-staker/internal/ui/style"
)

const recentLogLimit = 50

// LogPanel shows the tail of the in-memory log buffer under the staking form.
type LogPanel struct {
	buffer    *logger.LogBuffer
	viewport  viewport.Model
	visible   bool
	showDebug bool

	container lipgloss.Style
	title     lipgloss.Style
	levels    map[string]lipgloss.Style
}

func NewLogPanel(buffer *logger.LogBuffer, styles style.Styles) *LogPanel {
	return &LogPanel{
		buffer:    buffer,
		viewport:  viewport.New(60, 5),
		container: styles.LogPanel,
		title:     styles.Label.Bold(true),
		levels: map[string]lipgloss.Style{
			"error": styles.Error,
			"warn":  styles.Warning,
			"info":  styles.Label,
			"debug": styles.Muted,
		},
	}
}

// SetSize fits the panel into width x height cells including its border.
func (p *LogPanel) SetSize(width, height int) {
	p.container = p.container.Width(width - 2)
	p.viewport.Width = width - 4
	p.viewport.Height = height - 3
	if p.viewport.Height < 2 {
		p.viewport.Height = 2
	}
}

func (p *LogPanel) Toggle() {
	p.visible = !p.visible
}

func (p *LogPanel) Visible() bool {
	return p.visible
}

func (p *LogPanel) ToggleDebug() {
	p.showDebug = !p.showDebug
}

// Lines returns the formatted entries that pass the level filter.
func (p *LogPanel) Lines() []string {
	if p.buffer == nil {
		return nil
	}
	var lines []string
	for _, e := range p.buffer.Recent(recentLogLimit) {
		level := strings.ToLower(e.Level)
		if level == "debug" && !p.showDebug {
			continue
		}
		st, ok := p.levels[level]
		if !ok {
			st = p.levels["info"]
		}
		lines = append(lines, st.Render(logger.FormatEntry(e)))
	}
	return lines
}

func (p *LogPanel) View() string {
	if !p.visible {
		return ""
	}
	lines := p.Lines()
	if len(lines) == 0 {
		p.viewport.SetContent("No log entries yet")
	} else {
		p.viewport.SetContent(strings.Join(lines, "\n"))
		p.viewport.GotoBottom()
	}
	return p.container.Render(lipgloss.JoinVertical(lipgloss.Left,
		p.title.Render("Logs [l] hide  [d] debug"),
		p.viewport.View(),
	))
}
