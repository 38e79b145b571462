// internal/staking/types.go
package staking

import (
	"context"
	"errors"
	"time"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui/transaction"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/protocol/aftermath"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

const (
	DefaultValidatorName   = "Aftermath"
	DefaultRefreshInterval = 30 * time.Second
	backgroundRefreshLimit = 30 * time.Second
)

// Messages returned in StakeOutcome.Error for rejected requests.
const (
	MsgNotConnected    = "Wallet not connected"
	MsgInfoNotLoaded   = "Staking information not loaded"
	MsgInvalidAmount   = "Invalid amount"
	MsgBelowMinimum    = "Minimum stake amount is 1 SUI"
	MsgAlreadyStaking  = "Stake already in progress"
	MsgTransactionFail = "Transaction failed"
)

var (
	ErrInfoUnavailable = errors.New("staking information unavailable")
	ErrNotConnected    = errors.New("wallet not connected")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrClosed          = errors.New("staking service closed")
)

// ProtocolInfo is an immutable snapshot of the protocol's current state.
type ProtocolInfo struct {
	ExchangeRate  float64 // SUI per afSUI
	ValidatorAPY  float64 // fraction, 0.032 is 3.2%
	ValidatorFee  float64 // percent
	ValidatorName string
	UpdatedAt     time.Time
}

// StakeRequest is what the protocol needs to build a stake transaction.
type StakeRequest = aftermath.StakeRequest

// StakeOutcome is the result of one Stake call. Either the success fields or
// Error are set, never both.
type StakeOutcome struct {
	Success        bool
	TxDigest       string
	ReceivedAmount string
	Error          string
	ElapsedMs      int64
}

func failed(msg string) StakeOutcome {
	return StakeOutcome{Error: msg}
}

// Protocol is the liquid staking protocol API. *aftermath.Client satisfies it.
type Protocol interface {
	ExchangeRate(ctx context.Context) (float64, error)
	ValidatorAPYs(ctx context.Context) ([]aftermath.ValidatorAPY, error)
	ValidatorConfigs(ctx context.Context) ([]aftermath.ValidatorConfig, error)
	StakeTransaction(ctx context.Context, req StakeRequest) (*sui.Transaction, error)
}

// Chain is the read side of the Sui node. *sui.Client satisfies it.
type Chain interface {
	GetLatestSuiSystemState(ctx context.Context) (*sui.SystemState, error)
	GetBalance(ctx context.Context, owner, coinType string) (*sui.Balance, error)
}

// Executor runs a built transaction to confirmation. *transaction.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, tx *sui.Transaction, account *wallet.Account, opts transaction.Options) (*transaction.Confirmation, error)
}

// Publisher receives staking events. *events.Bus satisfies it.
type Publisher interface {
	Publish(event events.Event) error
}

type Config struct {
	ValidatorAddress string
	RefreshInterval  time.Duration
}
