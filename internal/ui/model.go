package ui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/amount"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/history"
	"github.com/rovshanmuradov/afsui-staker/internal/logger"
	"github.com/rovshanmuradov/afsui-staker/internal/staking"
	"github.com/rovshanmuradov/afsui-staker/internal/ui/component"
	"github.com/rovshanmuradov/afsui-staker/internal/ui/style"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

const balanceTimeout = 10 * time.Second

// Backend is the staking surface the screen drives. *staking.Service satisfies it.
type Backend interface {
	Account() *wallet.Account
	Info() *staking.ProtocolInfo
	IsStaking() bool
	ValidateAmount(input string) amount.ValidationResult
	CalculateExpected(input string) (string, bool)
	Balance(ctx context.Context) (uint64, error)
	RefreshInfo(ctx context.Context) error
	Stake(ctx context.Context, input string) staking.StakeOutcome
}

// PriceSource values SUI in USD. *price.Monitor satisfies it.
type PriceSource interface {
	ValueUSD(sui float64) (float64, bool)
}

// SessionSource summarises the stakes made since start. *history.Journal
// satisfies it.
type SessionSource interface {
	Statistics() history.Statistics
}

type Config struct {
	Network    string
	FeeReserve float64 // SUI kept back by the max shortcut
}

// Model is the single staking screen.
type Model struct {
	ctx     context.Context
	backend Backend
	prices  PriceSource
	session SessionSource
	updates <-chan tea.Msg
	logger  *zap.Logger
	config  Config

	keys    KeyMap
	styles  style.Styles
	input   textinput.Model
	spinner spinner.Model
	logs    *component.LogPanel
	help    *component.HelpBar

	reserve      uint64
	balance      uint64
	balanceKnown bool
	balanceErr   error
	refreshErr   error

	staking  bool
	last     *staking.StakeOutcome
	fullHelp bool
	width    int
}

type Option func(*Model)

// WithUpdates makes the model drain ch for events and log notifications.
func WithUpdates(ch <-chan tea.Msg) Option {
	return func(m *Model) { m.updates = ch }
}

func WithLogBuffer(buffer *logger.LogBuffer) Option {
	return func(m *Model) { m.logs = component.NewLogPanel(buffer, m.styles) }
}

func WithPrices(prices PriceSource) Option {
	return func(m *Model) { m.prices = prices }
}

func WithSession(session SessionSource) Option {
	return func(m *Model) { m.session = session }
}

func NewModel(ctx context.Context, backend Backend, log *zap.Logger, config Config, opts ...Option) *Model {
	styles := style.DefaultStyles()

	input := textinput.New()
	input.Placeholder = "0.0"
	input.Prompt = ""
	input.CharLimit = 32
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Accent

	m := &Model{
		ctx:     ctx,
		backend: backend,
		logger:  log.Named("ui"),
		config:  config,
		keys:    DefaultKeyMap(),
		styles:  styles,
		input:   input,
		spinner: sp,
		help:    component.NewHelpBar(styles),
		width:   80,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logs == nil {
		m.logs = component.NewLogPanel(nil, styles)
	}

	reserve, err := amount.ToBaseUnits(strconv.FormatFloat(config.FeeReserve, 'f', -1, 64), amount.Decimals)
	if err != nil {
		m.logger.Warn("Ignoring invalid fee reserve", zap.Float64("fee_reserve", config.FeeReserve))
	}
	m.reserve = reserve
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchBalance(), m.waitForUpdate())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.SetWidth(msg.Width)
		m.logs.SetSize(msg.Width, msg.Height/3)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case balanceMsg:
		m.balanceErr = msg.err
		if msg.err == nil {
			m.balance = msg.mist
			m.balanceKnown = true
		}
		return m, nil

	case refreshMsg:
		m.refreshErr = msg.err
		return m, nil

	case stakeResultMsg:
		m.staking = false
		outcome := msg.outcome
		m.last = &outcome
		if outcome.Success {
			m.input.SetValue("")
			return m, m.fetchBalance()
		}
		return m, nil

	case EventMsg:
		return m, tea.Batch(m.handleEvent(msg.Event), m.waitForUpdate())

	case LogMsg:
		return m, m.waitForUpdate()

	case spinner.TickMsg:
		if !m.staking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Stake):
		return m, m.stake()
	case key.Matches(msg, m.keys.Max):
		m.fillMax()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.last = nil
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.refreshInfo(), m.fetchBalance())
	case key.Matches(msg, m.keys.ToggleLogs):
		m.logs.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.ToggleDebug):
		m.logs.ToggleDebug()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.fullHelp = !m.fullHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.input.SetValue(amount.Sanitize(m.input.Value(), amount.Decimals))
	return m, cmd
}

func (m *Model) handleEvent(e events.Event) tea.Cmd {
	if _, ok := e.(events.StakeCompletedEvent); ok {
		return m.fetchBalance()
	}
	return nil
}

// stake starts a stake for the current input. It returns nil when a stake is
// outstanding or the input cannot be staked; nothing is queued.
func (m *Model) stake() tea.Cmd {
	if !m.CanStake() {
		return nil
	}
	m.staking = true
	m.last = nil
	input := m.input.Value()
	ctx, backend := m.ctx, m.backend
	run := func() tea.Msg {
		return stakeResultMsg{outcome: backend.Stake(ctx, input)}
	}
	return tea.Batch(run, m.spinner.Tick)
}

// CanStake reports whether enter would submit a stake right now.
func (m *Model) CanStake() bool {
	if m.staking || m.backend.IsStaking() || m.backend.Account() == nil {
		return false
	}
	value := m.input.Value()
	if !amount.IsValidStakeAmount(value, amount.MinStake) {
		return false
	}
	return !m.insufficient(value)
}

// insufficient is true when value is known to exceed the balance. An unknown
// balance counts as insufficient.
func (m *Model) insufficient(value string) bool {
	if !m.balanceKnown {
		return true
	}
	base, err := amount.ToBaseUnits(value, amount.Decimals)
	if err != nil {
		return false
	}
	return base > m.balance
}

func (m *Model) fillMax() {
	if !m.balanceKnown || m.balance <= m.reserve {
		m.input.SetValue("0")
		return
	}
	value := amount.FormatBaseUnits(m.balance-m.reserve, amount.Decimals)
	m.input.SetValue(amount.Sanitize(value, amount.Decimals))
	m.input.CursorEnd()
}

func (m *Model) fetchBalance() tea.Cmd {
	if m.backend.Account() == nil {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, balanceTimeout)
		defer cancel()
		mist, err := backend.Balance(ctx)
		return balanceMsg{mist: mist, err: err}
	}
}

func (m *Model) refreshInfo() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		return refreshMsg{err: backend.RefreshInfo(ctx)}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
