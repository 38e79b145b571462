package ui

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/afsui-staker/internal/amount"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/history"
	"github.com/rovshanmuradov/afsui-staker/internal/staking"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

type fakeBackend struct {
	mu       sync.Mutex
	account  *wallet.Account
	info     *staking.ProtocolInfo
	balance  uint64
	staking  atomic.Bool
	stakes   []string
	outcome  staking.StakeOutcome
	refreshE error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		account: &wallet.Account{Address: "0x" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"},
		info:    &staking.ProtocolInfo{ExchangeRate: 1.05, ValidatorAPY: 0.032, ValidatorFee: 5, ValidatorName: "Aftermath"},
		balance: 10 * amount.MistPerSui,
		outcome: staking.StakeOutcome{Success: true, TxDigest: "digest", ReceivedAmount: "9.52"},
	}
}

func (f *fakeBackend) Account() *wallet.Account { return f.account }
func (f *fakeBackend) Info() *staking.ProtocolInfo { return f.info }
func (f *fakeBackend) IsStaking() bool { return f.staking.Load() }

func (f *fakeBackend) ValidateAmount(input string) amount.ValidationResult {
	return amount.Validate(input, amount.MinStake)
}

func (f *fakeBackend) CalculateExpected(input string) (string, bool) {
	if f.info == nil {
		return "", false
	}
	return amount.ExpectedOutput(input, f.info.ExchangeRate)
}

func (f *fakeBackend) Balance(context.Context) (uint64, error) { return f.balance, nil }

func (f *fakeBackend) RefreshInfo(context.Context) error { return f.refreshE }

func (f *fakeBackend) Stake(_ context.Context, input string) staking.StakeOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stakes = append(f.stakes, input)
	return f.outcome
}

type fixedPrice float64

func (p fixedPrice) ValueUSD(sui float64) (float64, bool) { return sui * float64(p), true }

func newTestModel(t *testing.T, backend Backend) *Model {
	t.Helper()
	m := NewModel(context.Background(), backend, zaptest.NewLogger(t), Config{Network: "mainnet", FeeReserve: 0.5},
		WithPrices(fixedPrice(2)))
	m.Update(balanceMsg{mist: 10 * amount.MistPerSui})
	return m
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *Model, t tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: t})
	return cmd
}

// runCmd executes cmd and every command it batches, feeding resulting
// messages other than ticks back into the model.
func runCmd(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			runCmd(m, c)
		}
	case stakeResultMsg, balanceMsg, refreshMsg:
		_, next := m.Update(msg)
		runCmd(m, next)
	}
}

func TestTypingIsSanitized(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	typeText(m, "1a2.3.4x")
	assert.Equal(t, "12.34", m.input.Value())

	press(m, tea.KeyEsc)
	typeText(m, "0.1234567891")
	assert.Equal(t, "0.123456789", m.input.Value())
}

func TestViewShowsValidationAndEstimate(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	typeText(m, "0.5")
	assert.Contains(t, m.View(), "Minimum stake amount is 1 SUI")

	press(m, tea.KeyEsc)
	typeText(m, "10")
	view := m.View()
	assert.Contains(t, view, "9.5238 afSUI")
	assert.Contains(t, view, "$20.00")
	assert.NotContains(t, view, insufficientBalance)

	typeText(m, "0")
	assert.Contains(t, m.View(), insufficientBalance)
	assert.False(t, m.CanStake())
}

func TestMaxKeepsFeeReserve(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	press(m, tea.KeyTab)
	assert.Equal(t, "9.5", m.input.Value())

	m.Update(balanceMsg{mist: amount.MistPerSui / 4})
	press(m, tea.KeyTab)
	assert.Equal(t, "0", m.input.Value())
}

func TestEnterStakesOnce(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)
	typeText(m, "2")

	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.staking)

	// A second enter while the first is outstanding is dropped.
	assert.Nil(t, press(m, tea.KeyEnter))

	runCmd(m, cmd)
	assert.Equal(t, []string{"2"}, backend.stakes)
	assert.False(t, m.staking)
	require.NotNil(t, m.last)
	assert.True(t, m.last.Success)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Received ≈ 9.52 afSUI")
}

func TestEnterIgnoredWhenNotStakeable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeBackend, *Model)
		input string
	}{
		{name: "below minimum", input: "0.9"},
		{name: "empty", input: ""},
		{name: "over balance", input: "11"},
		{
			name:  "service busy",
			input: "2",
			setup: func(b *fakeBackend, _ *Model) { b.staking.Store(true) },
		},
		{
			name:  "disconnected",
			input: "2",
			setup: func(b *fakeBackend, _ *Model) { b.account = nil },
		},
		{
			name:  "balance unknown",
			input: "2",
			setup: func(_ *fakeBackend, m *Model) { m.balanceKnown = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			m := newTestModel(t, backend)
			if tt.setup != nil {
				tt.setup(backend, m)
			}
			typeText(m, tt.input)

			assert.Nil(t, press(m, tea.KeyEnter))
			assert.False(t, m.staking)
			assert.Empty(t, backend.stakes)
		})
	}
}

func TestFailedStakeShowsMessage(t *testing.T) {
	backend := newFakeBackend()
	backend.outcome = staking.StakeOutcome{Error: "Transaction abc failed: MoveAbort"}
	m := newTestModel(t, backend)
	typeText(m, "3")

	runCmd(m, press(m, tea.KeyEnter))
	assert.Equal(t, "3", m.input.Value())
	assert.Contains(t, m.View(), "Stake failed: Transaction abc failed: MoveAbort")
}

func TestRefreshFailureKeepsInfo(t *testing.T) {
	backend := newFakeBackend()
	backend.refreshE = errors.New("api down")
	m := newTestModel(t, backend)

	m.Update(refreshMsg{err: backend.refreshE})
	view := m.View()
	assert.Contains(t, view, "Aftermath")
	assert.Contains(t, view, "3.20%")
	assert.Contains(t, view, "showing last known values")

	backend.info = nil
	assert.Contains(t, m.View(), "Staking information unavailable: api down")
}

func TestUpdatesAreDrained(t *testing.T) {
	ch := make(chan tea.Msg, 1)
	m := NewModel(context.Background(), newFakeBackend(), zaptest.NewLogger(t), Config{}, WithUpdates(ch))

	ch <- EventMsg{Event: events.StakeCompletedEvent{BaseEvent: events.NewBaseEvent(events.StakeCompleted)}}
	msg := m.waitForUpdate()()
	require.IsType(t, EventMsg{}, msg)

	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)

	close(ch)
	assert.Nil(t, m.waitForUpdate()())
}

func TestSessionLine(t *testing.T) {
	journal := history.NewJournal(10, zaptest.NewLogger(t))
	m := NewModel(context.Background(), newFakeBackend(), zaptest.NewLogger(t), Config{}, WithSession(journal))
	assert.NotContains(t, m.View(), "Session:")

	journal.Add(history.Record{Amount: "2.5", Success: true})
	journal.Add(history.Record{Amount: "1", Error: "boom"})
	assert.Contains(t, m.View(), "Session: 2 stakes, 1 failed, 2.5 SUI staked")
}
