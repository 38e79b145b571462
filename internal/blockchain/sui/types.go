// internal/blockchain/sui/types.go
package sui

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// SuiCoinType is the fully qualified type of the native coin.
	SuiCoinType = "0x2::sui::SUI"

	MainnetURL = "https://fullnode.mainnet.sui.io:443"
	TestnetURL = "https://fullnode.testnet.sui.io:443"
	DevnetURL  = "https://fullnode.devnet.sui.io:443"
)

// FullnodeURL returns the public fullnode endpoint for a network name.
func FullnodeURL(network string) (string, error) {
	switch network {
	case "mainnet", "":
		return MainnetURL, nil
	case "testnet":
		return TestnetURL, nil
	case "devnet":
		return DevnetURL, nil
	default:
		return "", fmt.Errorf("unknown network %q", network)
	}
}

// ExecuteRequestType selects how long the node waits before answering an execute call.
type ExecuteRequestType string

const (
	WaitForEffectsCert    ExecuteRequestType = "WaitForEffectsCert"
	WaitForLocalExecution ExecuteRequestType = "WaitForLocalExecution"
)

// ResponseOptions chooses which parts of a transaction block are returned.
type ResponseOptions struct {
	ShowInput          bool `json:"showInput,omitempty"`
	ShowRawInput       bool `json:"showRawInput,omitempty"`
	ShowEffects        bool `json:"showEffects,omitempty"`
	ShowEvents         bool `json:"showEvents,omitempty"`
	ShowObjectChanges  bool `json:"showObjectChanges,omitempty"`
	ShowBalanceChanges bool `json:"showBalanceChanges,omitempty"`
	ShowRawEffects     bool `json:"showRawEffects,omitempty"`
}

// Transaction is a serialized, unsigned TransactionData as produced by a builder.
type Transaction struct {
	Bytes []byte
}

// NewTransactionFromBase64 decodes base64 TransactionData bytes.
func NewTransactionFromBase64(b64 string) (*Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode transaction bytes: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty transaction bytes")
	}
	return &Transaction{Bytes: raw}, nil
}

// Base64 returns the wire encoding of the transaction bytes.
func (t *Transaction) Base64() string {
	return base64.StdEncoding.EncodeToString(t.Bytes)
}

// SignedTransaction is what a signer hands to the submitter.
type SignedTransaction struct {
	TxBytes   string // base64 TransactionData
	Signature string // base64 serialized signature: flag || sig || pubkey
}

// ExecutionStatus is the on-chain outcome reported in effects.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// GasCostSummary is the gas section of effects.
type GasCostSummary struct {
	ComputationCost         string `json:"computationCost"`
	StorageCost             string `json:"storageCost"`
	StorageRebate           string `json:"storageRebate"`
	NonRefundableStorageFee string `json:"nonRefundableStorageFee"`
}

// TransactionEffects is the subset of effects this client reads.
type TransactionEffects struct {
	Status            ExecutionStatus `json:"status"`
	ExecutedEpoch     string          `json:"executedEpoch,omitempty"`
	GasUsed           GasCostSummary  `json:"gasUsed"`
	TransactionDigest string          `json:"transactionDigest,omitempty"`
}

// ObjectChange is one created/mutated/deleted/published/transferred record.
type ObjectChange struct {
	Type       string          `json:"type"`
	Sender     string          `json:"sender,omitempty"`
	Owner      json.RawMessage `json:"owner,omitempty"`
	ObjectType string          `json:"objectType,omitempty"`
	ObjectID   string          `json:"objectId,omitempty"`
	Version    string          `json:"version,omitempty"`
	Digest     string          `json:"digest,omitempty"`
}

// Event is an emitted Move event.
type Event struct {
	ID struct {
		TxDigest string `json:"txDigest"`
		EventSeq string `json:"eventSeq"`
	} `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson,omitempty"`
}

// TransactionBlockResponse is returned by both execute and lookup calls.
type TransactionBlockResponse struct {
	Digest                  string              `json:"digest"`
	Effects                 *TransactionEffects `json:"effects,omitempty"`
	Events                  []Event             `json:"events,omitempty"`
	ObjectChanges           []ObjectChange      `json:"objectChanges,omitempty"`
	TimestampMs             *string             `json:"timestampMs,omitempty"`
	Checkpoint              *string             `json:"checkpoint,omitempty"`
	ConfirmedLocalExecution *bool               `json:"confirmedLocalExecution,omitempty"`
	Errors                  []string            `json:"errors,omitempty"`
}

// Timestamp returns the settlement time in milliseconds, if the node reported one.
func (r *TransactionBlockResponse) Timestamp() (uint64, bool) {
	if r.TimestampMs == nil || *r.TimestampMs == "" {
		return 0, false
	}
	ms, err := strconv.ParseUint(*r.TimestampMs, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// Balance is the result of suix_getBalance.
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// Total parses TotalBalance into base units.
func (b *Balance) Total() (uint64, error) {
	if b.TotalBalance == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(b.TotalBalance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", b.TotalBalance, err)
	}
	return v, nil
}

// ValidatorSummary is one active validator from the system state.
type ValidatorSummary struct {
	SuiAddress            string `json:"suiAddress"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	CommissionRate        string `json:"commissionRate"`
	StakingPoolSuiBalance string `json:"stakingPoolSuiBalance"`
}

// SystemState is the subset of suix_getLatestSuiSystemState this client reads.
type SystemState struct {
	Epoch            string             `json:"epoch"`
	ActiveValidators []ValidatorSummary `json:"activeValidators"`
}

// FindValidator returns the active validator with the given address.
func (s *SystemState) FindValidator(address string) (ValidatorSummary, bool) {
	for _, v := range s.ActiveValidators {
		if v.SuiAddress == address {
			return v, true
		}
	}
	return ValidatorSummary{}, false
}
