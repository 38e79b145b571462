// internal/price/feed.go
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	DefaultURL      = "https://api.coingecko.com/api/v3/simple/price"
	DefaultCoinID   = "sui"
	DefaultCurrency = "usd"
	defaultTimeout  = 10 * time.Second
	defaultMaxTries = 3
)

var ErrPriceMissing = errors.New("price missing from response")

// Feed fetches spot prices from a CoinGecko-compatible simple price endpoint.
type Feed struct {
	client   *http.Client
	logger   *zap.Logger
	url      string
	coinID   string
	currency string
	maxTries uint
	backoff  func() backoff.BackOff
}

type FeedOption func(*Feed)

func WithCoin(coinID, currency string) FeedOption {
	return func(f *Feed) {
		if coinID != "" {
			f.coinID = coinID
		}
		if currency != "" {
			f.currency = currency
		}
	}
}

func WithRetry(maxTries uint, policy func() backoff.BackOff) FeedOption {
	return func(f *Feed) {
		if maxTries > 0 {
			f.maxTries = maxTries
		}
		if policy != nil {
			f.backoff = policy
		}
	}
}

func NewFeed(endpoint string, timeout time.Duration, logger *zap.Logger, opts ...FeedOption) *Feed {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	f := &Feed{
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("price-feed"),
		url:      endpoint,
		coinID:   DefaultCoinID,
		currency: DefaultCurrency,
		maxTries: defaultMaxTries,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Price returns the current price of the configured coin.
func (f *Feed) Price(ctx context.Context) (float64, error) {
	operation := func() (float64, error) {
		return f.fetch(ctx)
	}
	notify := func(err error, d time.Duration) {
		f.logger.Debug("Retrying price request", zap.Duration("backoff", d), zap.Error(err))
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(f.backoff()),
		backoff.WithMaxTries(f.maxTries),
		backoff.WithNotify(notify))
}

func (f *Feed) fetch(ctx context.Context) (float64, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("parse price url: %w", err))
	}
	q := u.Query()
	q.Set("ids", f.coinID)
	q.Set("vs_currencies", f.currency)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		err := fmt.Errorf("failed to fetch %s price: status %d: %s", f.coinID, resp.StatusCode, body)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return 0, err
		}
		return 0, backoff.Permanent(err)
	}

	var out map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, backoff.Permanent(fmt.Errorf("decode price response: %w", err))
	}
	p, ok := out[f.coinID][f.currency]
	if !ok {
		return 0, backoff.Permanent(fmt.Errorf("%w: %s/%s", ErrPriceMissing, f.coinID, f.currency))
	}
	return p, nil
}
