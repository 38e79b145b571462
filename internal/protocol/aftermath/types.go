// internal/protocol/aftermath/types.go
package aftermath

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValidatorAPY is one entry of the validator APY list.
type ValidatorAPY struct {
	Address string  `json:"address"`
	APY     float64 `json:"apy"`
}

type validatorAPYsResponse struct {
	APYs []ValidatorAPY `json:"apys"`
}

// ValidatorConfig is the protocol's per-validator configuration.
// Fee is a fraction: 0.05 means 5%.
type ValidatorConfig struct {
	SuiAddress     string  `json:"suiAddress"`
	Fee            float64 `json:"fee"`
	OperationCapID string  `json:"operationCapId,omitempty"`
}

// StakeRequest asks the protocol to build a stake transaction.
type StakeRequest struct {
	WalletAddress    string
	Amount           uint64 // MIST
	ValidatorAddress string
}

// MarshalJSON encodes the amount as a decimal string so it survives JSON number precision.
func (r StakeRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		WalletAddress    string `json:"walletAddress"`
		SuiStakeAmount   string `json:"suiStakeAmount"`
		ValidatorAddress string `json:"validatorAddress"`
	}{
		WalletAddress:    r.WalletAddress,
		SuiStakeAmount:   strconv.FormatUint(r.Amount, 10),
		ValidatorAddress: r.ValidatorAddress,
	})
}

type stakeTransactionResponse struct {
	TxBytes string `json:"txBytes"`
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// retryable reports whether the request may succeed if repeated.
func (e *StatusError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// parseRate accepts a JSON number or a quoted number.
func parseRate(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("decode exchange rate: %w", err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("decode exchange rate %q: %w", s, err)
	}
	return f, nil
}
