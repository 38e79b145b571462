// internal/protocol/aftermath/client.go
package aftermath

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
)

const (
	DefaultBaseURL        = "https://aftermath.finance/api"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxTries       = 4
	maxErrorBody          = 512
)

var ErrEmptyTransaction = errors.New("protocol returned an empty transaction")

// Client talks to the Aftermath liquid staking API. Create one and share it.
type Client struct {
	client   *http.Client
	logger   *zap.Logger
	baseURL  string
	maxTries uint
	backoff  func() backoff.BackOff
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithRetry sets the number of attempts for idempotent reads and the policy between them.
func WithRetry(maxTries uint, policy func() backoff.BackOff) Option {
	return func(c *Client) {
		if maxTries > 0 {
			c.maxTries = maxTries
		}
		if policy != nil {
			c.backoff = policy
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	c := &Client{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:   logger.Named("aftermath"),
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxTries: defaultMaxTries,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExchangeRate returns how many SUI one afSUI is worth.
func (c *Client) ExchangeRate(ctx context.Context) (float64, error) {
	var raw json.RawMessage
	if err := c.getWithRetry(ctx, "/staking/afsui-exchange-rate", &raw); err != nil {
		return 0, err
	}
	return parseRate(raw)
}

// ValidatorAPYs returns the APY of every validator the protocol stakes with.
func (c *Client) ValidatorAPYs(ctx context.Context) ([]ValidatorAPY, error) {
	var out validatorAPYsResponse
	if err := c.getWithRetry(ctx, "/staking/validator-apys", &out); err != nil {
		return nil, err
	}
	return out.APYs, nil
}

// ValidatorConfigs returns the protocol's validator configuration list.
func (c *Client) ValidatorConfigs(ctx context.Context) ([]ValidatorConfig, error) {
	var out []ValidatorConfig
	if err := c.getWithRetry(ctx, "/staking/validator-configs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StakeTransaction builds an unsigned stake transaction. It is not retried.
func (c *Client) StakeTransaction(ctx context.Context, req StakeRequest) (*sui.Transaction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode stake request: %w", err)
	}

	var out stakeTransactionResponse
	if err := c.do(ctx, http.MethodPost, "/staking/transactions/stake", body, &out); err != nil {
		return nil, fmt.Errorf("build stake transaction: %w", err)
	}
	if out.TxBytes == "" {
		return nil, ErrEmptyTransaction
	}
	tx, err := sui.NewTransactionFromBase64(out.TxBytes)
	if err != nil {
		return nil, fmt.Errorf("build stake transaction: %w", err)
	}

	c.logger.Debug("Stake transaction built",
		zap.String("wallet", req.WalletAddress),
		zap.Uint64("amount_mist", req.Amount),
		zap.Int("tx_bytes", len(tx.Bytes)))
	return tx, nil
}

func (c *Client) getWithRetry(ctx context.Context, path string, out interface{}) error {
	operation := func() (struct{}, error) {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return struct{}{}, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	notify := func(err error, d time.Duration) {
		c.logger.Warn("Retrying protocol request",
			zap.String("path", path),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.backoff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
