// internal/blockchain/sui/client.go
package sui

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

const (
	readAttemptsPerNode = 1
	readRetryDelay      = 300 * time.Millisecond
)

// Caller is the JSON-RPC transport. jsonrpc.RPCClient satisfies it.
type Caller interface {
	CallForInto(ctx context.Context, out interface{}, method string, params []interface{}) error
}

type node struct {
	url    string
	caller Caller
}

// Client talks to Sui fullnodes over JSON-RPC.
//
// Reads rotate across nodes on transport failures. Transaction submission and
// transaction lookups go to a single node exactly once.
type Client struct {
	nodes   []node
	current int
	mu      sync.Mutex
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a client for the given fullnode URLs.
func NewClient(urls []string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}
	callers := make(map[string]Caller, len(urls))
	for _, url := range urls {
		callers[url] = jsonrpc.NewClient(url)
	}
	return NewClientWithCallers(urls, callers, timeout, logger)
}

// NewClientWithCallers builds a client over pre-made transports, one per URL.
func NewClientWithCallers(urls []string, callers map[string]Caller, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}
	nodes := make([]node, 0, len(urls))
	for _, url := range urls {
		c, ok := callers[url]
		if !ok {
			continue
		}
		nodes = append(nodes, node{url: url, caller: c})
	}
	if len(nodes) == 0 {
		return nil, ErrNoRPCNodes
	}
	return &Client{
		nodes:   nodes,
		timeout: timeout,
		logger:  logger.Named("sui-rpc"),
	}, nil
}

// ExecuteTransactionBlock submits signed transaction bytes.
func (c *Client) ExecuteTransactionBlock(
	ctx context.Context,
	txBytes string,
	signatures []string,
	opts *ResponseOptions,
	requestType ExecuteRequestType,
) (*TransactionBlockResponse, error) {
	var out TransactionBlockResponse
	params := []interface{}{txBytes, signatures, opts, requestType}
	if err := c.callOnce(ctx, &out, "sui_executeTransactionBlock", params); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactionBlock looks a transaction up by digest.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string, opts *ResponseOptions) (*TransactionBlockResponse, error) {
	var out TransactionBlockResponse
	if err := c.callOnce(ctx, &out, "sui_getTransactionBlock", []interface{}{digest, opts}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBalance returns the total balance of coinType owned by owner.
func (c *Client) GetBalance(ctx context.Context, owner, coinType string) (*Balance, error) {
	var out Balance
	if err := c.callWithFailover(ctx, &out, "suix_getBalance", []interface{}{owner, coinType}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLatestSuiSystemState returns the current validator set and epoch metadata.
func (c *Client) GetLatestSuiSystemState(ctx context.Context) (*SystemState, error) {
	var out SystemState
	if err := c.callWithFailover(ctx, &out, "suix_getLatestSuiSystemState", []interface{}{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// callOnce sends a single request to the current node without any retry.
// Deadlines come from the caller only.
func (c *Client) callOnce(ctx context.Context, out interface{}, method string, params []interface{}) error {
	n := c.pick(false)
	return c.call(ctx, n, out, method, params, 0)
}

// callWithFailover walks the node list once, moving on only for retryable errors.
func (c *Client) callWithFailover(ctx context.Context, out interface{}, method string, params []interface{}) error {
	var lastErr error
	attempts := len(c.nodes) * readAttemptsPerNode
	for attempt := 0; attempt < attempts; attempt++ {
		n := c.pick(attempt > 0)
		err := c.call(ctx, n, out, method, params, c.timeout)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryableError(err) || ctx.Err() != nil {
			return err
		}

		c.logger.Debug("RPC read failed, trying next node",
			zap.String("url", n.url),
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(readRetryDelay):
			}
		}
	}
	c.logger.Warn("All RPC nodes failed", zap.String("method", method), zap.Error(lastErr))
	return lastErr
}

func (c *Client) call(ctx context.Context, n node, out interface{}, method string, params []interface{}, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := n.caller.CallForInto(ctx, out, method, params)
	if err != nil {
		return NewError(err, n.url, method)
	}
	c.logger.Debug("RPC call",
		zap.String("method", method),
		zap.String("url", n.url),
		zap.Duration("latency", time.Since(start)))
	return nil
}

// pick returns the current node, advancing first when rotate is set.
func (c *Client) pick(rotate bool) node {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rotate {
		c.current = (c.current + 1) % len(c.nodes)
	}
	return c.nodes[c.current]
}
