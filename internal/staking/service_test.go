package staking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/afsui-staker/internal/amount"
	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui/transaction"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/protocol/aftermath"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

const validatorAddr = "0x" + "ab" + "00000000000000000000000000000000000000000000000000000000000000"

type mockProtocol struct {
	mock.Mock
}

func (m *mockProtocol) ExchangeRate(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockProtocol) ValidatorAPYs(ctx context.Context) ([]aftermath.ValidatorAPY, error) {
	args := m.Called(ctx)
	apys, _ := args.Get(0).([]aftermath.ValidatorAPY)
	return apys, args.Error(1)
}

func (m *mockProtocol) ValidatorConfigs(ctx context.Context) ([]aftermath.ValidatorConfig, error) {
	args := m.Called(ctx)
	configs, _ := args.Get(0).([]aftermath.ValidatorConfig)
	return configs, args.Error(1)
}

func (m *mockProtocol) StakeTransaction(ctx context.Context, req StakeRequest) (*sui.Transaction, error) {
	args := m.Called(ctx, req)
	tx, _ := args.Get(0).(*sui.Transaction)
	return tx, args.Error(1)
}

type fakeChain struct {
	mu       sync.Mutex
	state    *sui.SystemState
	stateErr error
	balance  string
	calls    int
}

func (c *fakeChain) GetLatestSuiSystemState(context.Context) (*sui.SystemState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.state, c.stateErr
}

func (c *fakeChain) GetBalance(_ context.Context, owner, coinType string) (*sui.Balance, error) {
	return &sui.Balance{CoinType: coinType, TotalBalance: c.balance}, nil
}

func (c *fakeChain) systemStateCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeExecutor struct {
	mu      sync.Mutex
	conf    *transaction.Confirmation
	err     error
	calls   int
	opts    transaction.Options
	release chan struct{}
	entered chan struct{}
}

func (e *fakeExecutor) Execute(_ context.Context, _ *sui.Transaction, _ *wallet.Account, opts transaction.Options) (*transaction.Confirmation, error) {
	e.mu.Lock()
	e.calls++
	e.opts = opts
	release, entered := e.release, e.entered
	e.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if release != nil {
		<-release
	}
	return e.conf, e.err
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func expectInfo(p *mockProtocol, rate float64) {
	p.On("ExchangeRate", mock.Anything).Return(rate, nil)
	p.On("ValidatorAPYs", mock.Anything).Return([]aftermath.ValidatorAPY{
		{Address: "0xother", APY: 0.01},
		{Address: validatorAddr, APY: 0.032},
	}, nil)
	p.On("ValidatorConfigs", mock.Anything).Return([]aftermath.ValidatorConfig{
		{SuiAddress: validatorAddr, Fee: 0.05},
	}, nil)
}

func testState() *sui.SystemState {
	return &sui.SystemState{ActiveValidators: []sui.ValidatorSummary{
		{SuiAddress: validatorAddr, Name: "X"},
	}}
}

type fixture struct {
	protocol *mockProtocol
	chain    *fakeChain
	executor *fakeExecutor
	events   *recorder
	service  *Service
	account  *wallet.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		protocol: &mockProtocol{},
		chain:    &fakeChain{state: testState(), balance: "25000000000"},
		executor: &fakeExecutor{conf: &transaction.Confirmation{
			Digest:        "DIGEST",
			EffectsStatus: sui.StatusSuccess,
			ElapsedMs:     420,
			Path:          transaction.PathPrimary,
		}},
		events:  &recorder{},
		account: &wallet.Account{Address: "0xwallet"},
	}
	f.service = NewService(f.protocol, f.chain, f.executor, zaptest.NewLogger(t), Config{
		ValidatorAddress: validatorAddr,
		RefreshInterval:  time.Hour,
	}, WithPublisher(f.events))
	t.Cleanup(f.service.Close)
	return f
}

func TestRefreshInfoResolvesValidator(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)

	require.NoError(t, f.service.RefreshInfo(context.Background()))
	info := f.service.Info()
	require.NotNil(t, info)
	assert.Equal(t, 1.05, info.ExchangeRate)
	assert.Equal(t, 0.032, info.ValidatorAPY)
	assert.InDelta(t, 5.0, info.ValidatorFee, 1e-9)
	assert.Equal(t, "X", info.ValidatorName)
	assert.Contains(t, f.events.types(), events.InfoRefreshed)
}

func TestRefreshInfoDefaults(t *testing.T) {
	f := newFixture(t)
	f.chain.state = &sui.SystemState{}
	f.protocol.On("ExchangeRate", mock.Anything).Return(1.1, nil)
	f.protocol.On("ValidatorAPYs", mock.Anything).Return(nil, nil)
	f.protocol.On("ValidatorConfigs", mock.Anything).Return(nil, nil)

	require.NoError(t, f.service.RefreshInfo(context.Background()))
	info := f.service.Info()
	assert.Equal(t, DefaultValidatorName, info.ValidatorName)
	assert.Zero(t, info.ValidatorAPY)
	assert.Zero(t, info.ValidatorFee)
}

func TestRefreshInfoFailureKeepsSnapshot(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)
	require.NoError(t, f.service.RefreshInfo(context.Background()))
	before := f.service.Info()

	f.chain.mu.Lock()
	f.chain.stateErr = errors.New("node down")
	f.chain.mu.Unlock()

	err := f.service.RefreshInfo(context.Background())
	assert.ErrorIs(t, err, ErrInfoUnavailable)
	assert.Same(t, before, f.service.Info())
	assert.Contains(t, f.events.types(), events.InfoRefreshFailed)
}

func TestRefreshInfoRejectsBadRate(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 0)

	err := f.service.RefreshInfo(context.Background())
	assert.ErrorIs(t, err, ErrInfoUnavailable)
	assert.Nil(t, f.service.Info())
}

func TestCalculateExpected(t *testing.T) {
	f := newFixture(t)
	_, ok := f.service.CalculateExpected("10")
	assert.False(t, ok, "no info loaded")

	expectInfo(f.protocol, 1.05)
	require.NoError(t, f.service.RefreshInfo(context.Background()))

	got, ok := f.service.CalculateExpected("10")
	require.True(t, ok)
	assert.Equal(t, "9.5238", got)

	for _, in := range []string{"", ".", "0", "0.0"} {
		_, ok := f.service.CalculateExpected(in)
		assert.False(t, ok, in)
	}
}

func TestStakeSuccess(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)
	tx := &sui.Transaction{Bytes: []byte{1, 2, 3}}
	f.protocol.On("StakeTransaction", mock.Anything, StakeRequest{
		WalletAddress:    "0xwallet",
		Amount:           10 * amount.MistPerSui,
		ValidatorAddress: validatorAddr,
	}).Return(tx, nil).Once()

	require.NoError(t, f.service.Connect(context.Background(), f.account))
	callsAfterConnect := f.chain.systemStateCalls()

	out := f.service.Stake(context.Background(), "10")
	require.True(t, out.Success, out.Error)
	assert.Equal(t, "DIGEST", out.TxDigest)
	assert.Equal(t, "9.52", out.ReceivedAmount)
	assert.Equal(t, int64(420), out.ElapsedMs)
	assert.Empty(t, out.Error)
	assert.True(t, f.executor.opts.ShowObjectChanges)
	assert.False(t, f.service.IsStaking())

	assert.Eventually(t, func() bool {
		return f.chain.systemStateCalls() > callsAfterConnect
	}, time.Second, 5*time.Millisecond, "stake should trigger a background refresh")

	types := f.events.types()
	assert.Contains(t, types, events.StakeStarted)
	assert.Contains(t, types, events.StakeCompleted)
	f.protocol.AssertExpectations(t)
}

func TestStakePreconditions(t *testing.T) {
	tests := []struct {
		name    string
		connect bool
		load    bool
		input   string
		want    string
	}{
		{"not connected", false, true, "10", MsgNotConnected},
		{"info missing", true, false, "10", MsgInfoNotLoaded},
		{"empty input", true, true, "", MsgInvalidAmount},
		{"bad format", true, true, "1a", "Invalid number format"},
		{"too precise", true, true, "1.1234567891", "Maximum 9 decimal places allowed"},
		{"below minimum", true, true, "0.5", "Minimum stake amount is 1 SUI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.load {
				expectInfo(f.protocol, 1.05)
				require.NoError(t, f.service.RefreshInfo(context.Background()))
			}
			if tt.connect {
				f.service.mu.Lock()
				f.service.account = f.account
				f.service.mu.Unlock()
			}

			out := f.service.Stake(context.Background(), tt.input)
			assert.False(t, out.Success)
			assert.Equal(t, tt.want, out.Error)
			assert.Empty(t, out.TxDigest)
			assert.Zero(t, f.executor.calls)
			f.protocol.AssertNotCalled(t, "StakeTransaction", mock.Anything, mock.Anything)
		})
	}
}

func TestStakeRejectsConcurrentStake(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)
	f.protocol.On("StakeTransaction", mock.Anything, mock.Anything).Return(&sui.Transaction{Bytes: []byte{1}}, nil)
	f.executor.release = make(chan struct{})
	f.executor.entered = make(chan struct{})
	require.NoError(t, f.service.Connect(context.Background(), f.account))

	first := make(chan StakeOutcome, 1)
	go func() { first <- f.service.Stake(context.Background(), "2") }()

	<-f.executor.entered
	assert.True(t, f.service.IsStaking())
	second := f.service.Stake(context.Background(), "3")
	assert.Equal(t, MsgAlreadyStaking, second.Error)

	close(f.executor.release)
	assert.True(t, (<-first).Success)
	assert.False(t, f.service.IsStaking())
	assert.Equal(t, 1, f.executor.calls)
}

func TestStakeReportsExecutionFailure(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)
	f.protocol.On("StakeTransaction", mock.Anything, mock.Anything).Return(&sui.Transaction{Bytes: []byte{1}}, nil)
	f.executor.err = &transaction.ExecutionError{
		Kind:       transaction.KindOnChainFailure,
		Digest:     "D9",
		ChainError: "InsufficientGas",
	}
	require.NoError(t, f.service.Connect(context.Background(), f.account))

	out := f.service.Stake(context.Background(), "5")
	assert.False(t, out.Success)
	assert.Equal(t, "Transaction D9 failed: InsufficientGas", out.Error)
	assert.Empty(t, out.ReceivedAmount)
	assert.Contains(t, f.events.types(), events.StakeFailed)
}

func TestStakeReportsBuildFailure(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)
	f.protocol.On("StakeTransaction", mock.Anything, mock.Anything).Return(nil, errors.New("build stake transaction: boom"))
	require.NoError(t, f.service.Connect(context.Background(), f.account))

	out := f.service.Stake(context.Background(), "5")
	assert.Equal(t, "build stake transaction: boom", out.Error)
	assert.Zero(t, f.executor.calls)
}

func TestConnectAndBalance(t *testing.T) {
	f := newFixture(t)
	expectInfo(f.protocol, 1.05)

	_, err := f.service.Balance(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, f.service.Connect(context.Background(), nil), ErrInvalidAccount)

	require.NoError(t, f.service.Connect(context.Background(), f.account))
	assert.NotNil(t, f.service.Info())

	bal, err := f.service.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(25_000_000_000), bal)

	f.service.Disconnect()
	assert.Nil(t, f.service.Account())
	out := f.service.Stake(context.Background(), "10")
	assert.Equal(t, MsgNotConnected, out.Error)
}

func TestConnectAfterClose(t *testing.T) {
	f := newFixture(t)
	f.service.Close()
	assert.ErrorIs(t, f.service.Connect(context.Background(), f.account), ErrClosed)
}

func TestValidateAmount(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.service.ValidateAmount("1").Valid)
	assert.Equal(t, "Minimum stake amount is 1 SUI", f.service.ValidateAmount("0.5").Error)
}
