// internal/blockchain/sui/transaction/executor.go
package transaction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

// Signer produces a signature for tx on behalf of account.
type Signer interface {
	SignTransaction(ctx context.Context, tx *sui.Transaction, account *wallet.Account) (*sui.SignedTransaction, error)
}

// Submitter sends signed transactions and looks them up. *sui.Client satisfies it.
type Submitter interface {
	ExecuteTransactionBlock(
		ctx context.Context,
		txBytes string,
		signatures []string,
		opts *sui.ResponseOptions,
		requestType sui.ExecuteRequestType,
	) (*sui.TransactionBlockResponse, error)
	GetTransactionBlock(ctx context.Context, digest string, opts *sui.ResponseOptions) (*sui.TransactionBlockResponse, error)
}

// Executor signs, submits and confirms a transaction, producing one
// Confirmation or one *ExecutionError per call. It never retries.
type Executor struct {
	signer    Signer
	submitter Submitter
	logger    *zap.Logger
	config    Config
	validator *Validator
	metrics   *Metrics
	now       func() time.Time
}

type Option func(*Executor)

// WithMetrics replaces the unregistered default metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExecutor(signer Signer, submitter Submitter, logger *zap.Logger, config Config, opts ...Option) *Executor {
	e := &Executor{
		signer:    signer,
		submitter: submitter,
		logger:    logger.Named("tx-executor"),
		config:    config,
		validator: NewValidator(logger),
		metrics:   NewMetrics(nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs tx through signing, submission and confirmation.
//
// Signing and submission ignore cancellation of ctx: once a signature is
// requested the transaction may land regardless. Only the fallback lookup
// observes ctx, bounded by Config.FallbackTimeout.
func (e *Executor) Execute(ctx context.Context, tx *sui.Transaction, account *wallet.Account, opts Options) (*Confirmation, error) {
	run := &execution{logger: e.logger, state: StateIdle}

	if account == nil || account.Address == "" {
		return nil, e.fail(run, &ExecutionError{Kind: KindPrecondition, Err: ErrNoAccount})
	}
	if err := e.validator.ValidateTransaction(tx); err != nil {
		return nil, e.fail(run, &ExecutionError{Kind: KindPrecondition, Err: err})
	}
	run.logger = run.logger.With(zap.String("account", account.Address))

	detached := context.WithoutCancel(ctx)

	run.enter(StateSigning)
	signed, err := e.signer.SignTransaction(detached, tx, account)
	if err != nil {
		return nil, e.fail(run, &ExecutionError{Kind: KindSigning, Err: err})
	}
	if err := e.validator.ValidateSigned(signed); err != nil {
		return nil, e.fail(run, &ExecutionError{Kind: KindSigning, Err: err})
	}

	localDigest := wallet.TransactionDigest(tx.Bytes)
	run.logger = run.logger.With(zap.String("local_digest", localDigest))

	run.enter(StateSubmitting)
	respOpts := &sui.ResponseOptions{
		ShowEffects:       true,
		ShowObjectChanges: opts.ShowObjectChanges,
		ShowEvents:        opts.ShowEvents,
	}
	start := e.now()
	resp, err := e.submitter.ExecuteTransactionBlock(
		detached,
		signed.TxBytes,
		[]string{signed.Signature},
		respOpts,
		sui.WaitForLocalExecution,
	)
	if err != nil {
		return nil, e.fail(run, &ExecutionError{Kind: KindSubmission, Digest: localDigest, Err: err})
	}
	if resp == nil {
		return nil, e.fail(run, &ExecutionError{Kind: KindSubmission, Digest: localDigest, Err: ErrEmptySubmitResult})
	}

	digest := resp.Digest
	switch {
	case digest == "":
		digest = localDigest
	case digest != localDigest:
		run.logger.Warn("Node digest differs from locally computed digest",
			zap.String("node_digest", digest))
	}
	run.logger = run.logger.With(zap.String("digest", digest))

	run.enter(StateConfirmPrimary)
	if err := checkEffects(digest, resp); err != nil {
		return nil, e.fail(run, err)
	}

	final := resp
	path := PathPrimary
	var elapsed int64
	timestamp, ok := resp.Timestamp()
	if ok {
		elapsed = e.now().Sub(start).Milliseconds()
	} else {
		run.enter(StateConfirmFallback)
		fetched, err := e.lookup(ctx, digest)
		if err != nil {
			return nil, e.fail(run, &ExecutionError{Kind: KindLookup, Digest: digest, Err: err})
		}
		final = fetched
		path = PathFallback
		if timestamp, ok = fetched.Timestamp(); ok {
			elapsed = int64(timestamp) - start.UnixMilli()
		} else {
			elapsed = e.now().Sub(start).Milliseconds()
		}
		if err := checkEffects(digest, final); err != nil {
			return nil, e.fail(run, err)
		}
	}

	run.enter(StateDone)
	if opts.ShowObjectChanges && len(final.ObjectChanges) == 0 {
		return nil, e.fail(run, &ExecutionError{Kind: KindInconsistentResult, Digest: digest, Err: ErrNoObjectChanges})
	}
	if elapsed < 0 {
		elapsed = 0
	}

	confirmation := &Confirmation{
		Digest:        digest,
		EffectsStatus: final.Effects.Status.Status,
		ObjectChanges: final.ObjectChanges,
		Events:        final.Events,
		ElapsedMs:     elapsed,
		Path:          path,
		TimestampMs:   timestamp,
	}
	e.metrics.trackSuccess(path, elapsed)
	run.logger.Info("Transaction confirmed",
		zap.String("path", string(path)),
		zap.Int64("elapsed_ms", elapsed))
	return confirmation, nil
}

func (e *Executor) lookup(ctx context.Context, digest string) (*sui.TransactionBlockResponse, error) {
	if e.config.FallbackTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.FallbackTimeout)
		defer cancel()
	}
	resp, err := e.submitter.GetTransactionBlock(ctx, digest, &sui.ResponseOptions{
		ShowEffects:       true,
		ShowObjectChanges: true,
		ShowEvents:        true,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrEmptyLookupResult
	}
	return resp, nil
}

func (e *Executor) fail(run *execution, err *ExecutionError) error {
	e.metrics.trackFailure(err.Kind)
	run.logger.Error("Transaction execution failed",
		zap.Stringer("state", run.state),
		zap.Stringer("kind", err.Kind),
		zap.Error(err))
	return err
}

// checkEffects fails unless the response carries effects with a success status.
func checkEffects(digest string, resp *sui.TransactionBlockResponse) *ExecutionError {
	if resp.Effects == nil {
		return &ExecutionError{Kind: KindOnChainFailure, Digest: digest, Err: ErrMissingEffects}
	}
	if resp.Effects.Status.Status != sui.StatusSuccess {
		return &ExecutionError{
			Kind:       KindOnChainFailure,
			Digest:     digest,
			ChainError: resp.Effects.Status.Error,
		}
	}
	return nil
}

// execution tracks the state of one Execute call.
type execution struct {
	logger *zap.Logger
	state  State
}

func (x *execution) enter(next State) {
	x.logger.Debug("Transaction state transition",
		zap.Stringer("from", x.state),
		zap.Stringer("to", next))
	x.state = next
}
