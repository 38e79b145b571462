// internal/staking/service.go
package staking

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/amount"
	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui/transaction"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/logger"
	"github.com/rovshanmuradov/afsui-staker/internal/periodic"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

// Service is the staking orchestrator: it keeps protocol info fresh while an
// account is connected and turns a typed amount into a confirmed stake.
type Service struct {
	protocol  Protocol
	chain     Chain
	executor  Executor
	publisher Publisher
	logger    *zap.Logger
	config    Config

	info    atomic.Pointer[ProtocolInfo]
	staking atomic.Bool

	mu      sync.Mutex
	account *wallet.Account
	refresh *periodic.Task
	closed  bool

	// lifetime of the service; background refreshes outlive single calls
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Service)

// WithPublisher sends staking and info events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(protocol Protocol, chain Chain, executor Executor, logger *zap.Logger, config Config, opts ...Option) *Service {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		protocol: protocol,
		chain:    chain,
		executor: executor,
		logger:   logger.Named("staking"),
		config:   config,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect sets the active account, loads protocol info and starts the
// periodic refresh. The account stays connected even when the first refresh
// fails; that error is returned for reporting.
func (s *Service) Connect(ctx context.Context, account *wallet.Account) error {
	if account == nil || account.Address == "" {
		return ErrInvalidAccount
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	prev := s.refresh
	s.refresh = nil
	s.account = account
	s.mu.Unlock()
	prev.Stop()

	s.logger.Info("Account connected", zap.String("account", account.Address))
	err := s.RefreshInfo(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.account != account || s.refresh != nil {
		return err
	}
	s.refresh = periodic.Start(s.ctx, "staking-info", s.config.RefreshInterval, func(ctx context.Context) {
		_ = s.RefreshInfo(ctx)
	}, periodic.WithLogger(s.logger))
	return err
}

// Disconnect forgets the account and stops the periodic refresh.
func (s *Service) Disconnect() {
	s.mu.Lock()
	task := s.refresh
	s.refresh = nil
	s.account = nil
	s.mu.Unlock()

	task.Stop()
	s.logger.Info("Account disconnected")
}

// Close stops every background activity. The service cannot be reused.
func (s *Service) Close() {
	s.Disconnect()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// Account returns the connected account, or nil.
func (s *Service) Account() *wallet.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// IsStaking reports whether a stake is in flight.
func (s *Service) IsStaking() bool {
	return s.staking.Load()
}

// ValidateAmount applies the stake input rules with the protocol minimum.
func (s *Service) ValidateAmount(input string) amount.ValidationResult {
	return amount.Validate(input, amount.MinStake)
}

// CalculateExpected estimates the afSUI received for input SUI at the current rate.
func (s *Service) CalculateExpected(input string) (string, bool) {
	info := s.info.Load()
	if info == nil {
		return "", false
	}
	return amount.ExpectedOutput(input, info.ExchangeRate)
}

// Balance returns the SUI balance of the connected account in MIST.
func (s *Service) Balance(ctx context.Context) (uint64, error) {
	account := s.Account()
	if account == nil {
		return 0, ErrNotConnected
	}
	bal, err := s.chain.GetBalance(ctx, account.Address, sui.SuiCoinType)
	if err != nil {
		return 0, err
	}
	return bal.Total()
}

// Stake stakes input SUI with the configured validator. It never returns an
// error: every failure is reported in the outcome.
func (s *Service) Stake(ctx context.Context, input string) StakeOutcome {
	account := s.Account()
	if account == nil {
		return failed(MsgNotConnected)
	}

	info := s.info.Load()
	if info == nil {
		return failed(MsgInfoNotLoaded)
	}

	if v := s.ValidateAmount(input); !v.Valid {
		if v.Error == "" {
			return failed(MsgInvalidAmount)
		}
		return failed(v.Error)
	}

	value, err := strconv.ParseFloat(input, 64)
	if err != nil || !(value > 0) {
		return failed(MsgInvalidAmount)
	}

	mist, err := amount.ToBaseUnits(input, amount.Decimals)
	if err != nil {
		return failed(MsgInvalidAmount)
	}
	if mist < amount.MistPerSui {
		return failed(MsgBelowMinimum)
	}

	if !s.staking.CompareAndSwap(false, true) {
		return failed(MsgAlreadyStaking)
	}
	defer s.staking.Store(false)

	log, correlationID := logger.WithOperation(s.logger, "stake")
	log = log.With(zap.String("account", account.Address), zap.Uint64("amount_mist", mist))
	log.Info("Stake started")
	s.publish(events.StakeStartedEvent{
		BaseEvent:     events.NewBaseEvent(events.StakeStarted),
		CorrelationID: correlationID,
		Account:       account.Address,
		Amount:        input,
		BaseUnits:     mist,
	})

	fail := func(err error) StakeOutcome {
		msg := err.Error()
		if msg == "" {
			msg = MsgTransactionFail
		}
		log.Error("Stake failed", zap.Error(err))
		s.publish(events.StakeFailedEvent{
			BaseEvent:     events.NewBaseEvent(events.StakeFailed),
			CorrelationID: correlationID,
			Account:       account.Address,
			Amount:        input,
			Error:         msg,
		})
		return failed(msg)
	}

	tx, err := s.protocol.StakeTransaction(ctx, StakeRequest{
		WalletAddress:    account.Address,
		Amount:           mist,
		ValidatorAddress: s.config.ValidatorAddress,
	})
	if err != nil {
		return fail(err)
	}

	conf, err := s.executor.Execute(ctx, tx, account, transaction.Options{ShowObjectChanges: true})
	if err != nil {
		return fail(err)
	}

	received := amount.FormatWithSuffix(value / info.ExchangeRate)
	s.refreshInBackground()

	logger.WithTransaction(log, conf.Digest).Info("Stake completed",
		zap.String("received_afsui", received),
		zap.Int64("elapsed_ms", conf.ElapsedMs),
		zap.String("confirm_path", string(conf.Path)))
	s.publish(events.StakeCompletedEvent{
		BaseEvent:      events.NewBaseEvent(events.StakeCompleted),
		CorrelationID:  correlationID,
		Account:        account.Address,
		Amount:         input,
		TxDigest:       conf.Digest,
		ReceivedAmount: received,
		ElapsedMs:      conf.ElapsedMs,
	})

	return StakeOutcome{
		Success:        true,
		TxDigest:       conf.Digest,
		ReceivedAmount: received,
		ElapsedMs:      conf.ElapsedMs,
	}
}

func (s *Service) publish(e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(e); err != nil {
		s.logger.Debug("Event dropped", zap.String("event_type", string(e.Type())), zap.Error(err))
	}
}
