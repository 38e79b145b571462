package ui

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubModel struct {
	panicOnUpdate bool
	panicOnView   bool
	quit          bool
}

func (m *stubModel) Init() tea.Cmd {
	if m.quit {
		return tea.Quit
	}
	return nil
}

func (m *stubModel) Update(tea.Msg) (tea.Model, tea.Cmd) {
	if m.panicOnUpdate {
		panic("update panic test")
	}
	return m, nil
}

func (m *stubModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "ok"
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard)}
}

func TestSafeModelRecoversUpdate(t *testing.T) {
	sm := NewSafeModel(&stubModel{panicOnUpdate: true}, zaptest.NewLogger(t))

	var (
		next tea.Model
		cmd  tea.Cmd
	)
	require.NotPanics(t, func() { next, cmd = sm.Update(nil) })
	assert.Same(t, sm, next)
	assert.Nil(t, cmd)
}

func TestSafeModelRecoversView(t *testing.T) {
	sm := NewSafeModel(&stubModel{panicOnView: true}, zaptest.NewLogger(t))
	assert.Contains(t, sm.View(), "view crashed")
}

func TestRecoveryHandlerNormalExit(t *testing.T) {
	rh := NewRecoveryHandler(zaptest.NewLogger(t), func() (tea.Model, []tea.ProgramOption) {
		return &stubModel{quit: true}, headless()
	})

	require.NoError(t, rh.Run(context.Background()))
	assert.Zero(t, rh.Restarts())
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	builds := 0
	rh := NewRecoveryHandler(zaptest.NewLogger(t), func() (tea.Model, []tea.ProgramOption) {
		builds++
		panic("cannot build model")
	})
	rh.restartDelay = 0

	err := rh.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up")
	assert.Equal(t, defaultMaxRestarts+1, builds)
}
