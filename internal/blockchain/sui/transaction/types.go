// internal/blockchain/sui/transaction/types.go
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
)

var (
	ErrNoAccount         = errors.New("No account connected")
	ErrEmptyTransaction  = errors.New("empty transaction")
	ErrInvalidSignature  = errors.New("invalid transaction signature")
	ErrUnknownScheme     = errors.New("unknown signature scheme")
	ErrInvalidTxBytes    = errors.New("invalid transaction bytes")
	ErrMissingEffects    = errors.New("transaction effects missing from response")
	ErrEmptyLookupResult = errors.New("transaction lookup returned no result")
	ErrEmptySubmitResult = errors.New("transaction submission returned no result")
	ErrNoObjectChanges   = errors.New("no object changes reported")
)

const DefaultFallbackTimeout = 10 * time.Second

// State is a step of a single Execute call.
type State int

const (
	StateIdle State = iota
	StateSigning
	StateSubmitting
	StateConfirmPrimary
	StateConfirmFallback
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSigning:
		return "signing"
	case StateSubmitting:
		return "submitting"
	case StateConfirmPrimary:
		return "confirm_primary"
	case StateConfirmFallback:
		return "confirm_fallback"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ConfirmPath tells which response a Confirmation was built from.
type ConfirmPath string

const (
	PathPrimary  ConfirmPath = "primary"
	PathFallback ConfirmPath = "fallback"
)

// Kind classifies an execution failure.
type Kind int

const (
	KindPrecondition Kind = iota + 1
	KindSigning
	KindSubmission
	KindOnChainFailure
	KindInconsistentResult
	KindLookup
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindSigning:
		return "signing"
	case KindSubmission:
		return "submission"
	case KindOnChainFailure:
		return "on_chain_failure"
	case KindInconsistentResult:
		return "inconsistent_result"
	case KindLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

type Config struct {
	// FallbackTimeout bounds the single lookup made when the node did not
	// report a timestamp. Zero means the caller context alone bounds it.
	FallbackTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{FallbackTimeout: DefaultFallbackTimeout}
}

// Options select the optional parts of the confirmation.
type Options struct {
	ShowObjectChanges bool
	ShowEvents        bool
}

// Confirmation is the normalized result of one submitted transaction.
type Confirmation struct {
	Digest        string
	EffectsStatus string
	ObjectChanges []sui.ObjectChange
	Events        []sui.Event
	ElapsedMs     int64
	Path          ConfirmPath
	TimestampMs   uint64
}

// ExecutionError is returned by Execute for every failure.
type ExecutionError struct {
	Kind       Kind
	Digest     string
	ChainError string
	Err        error
}

func (e *ExecutionError) Error() string {
	switch e.Kind {
	case KindOnChainFailure:
		chainErr := e.ChainError
		if chainErr == "" {
			chainErr = "Unknown error"
		}
		return fmt.Sprintf("Transaction %s failed: %s", e.Digest, chainErr)
	case KindInconsistentResult:
		return fmt.Sprintf("Transaction %s succeeded but no object changes found", e.Digest)
	case KindPrecondition:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "precondition failed"
	}
	if e.Digest != "" {
		return fmt.Sprintf("%s failed for transaction %s: %v", e.Kind, e.Digest, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or 0 if err is not an *ExecutionError.
func KindOf(err error) Kind {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Kind
	}
	return 0
}
