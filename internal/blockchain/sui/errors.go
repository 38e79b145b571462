// internal/blockchain/sui/errors.go
package sui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	// ErrNoRPCNodes is returned when the client is built without endpoints.
	ErrNoRPCNodes = errors.New("no RPC nodes configured")

	// ErrEmptyResponse is returned when a node answers without a result.
	ErrEmptyResponse = errors.New("empty RPC response")
)

// Error is an RPC failure annotated with the method and node that produced it.
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %s", e.Method, e.NodeURL, describe(e.Err))
}

// describe renders node-side JSON-RPC errors as "code N: message"; the
// jsonrpc package's own formatting is a struct dump.
func describe(err error) string {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return fmt.Sprintf("code %d: %s", rpcErr.Code, rpcErr.Message)
	}
	return err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with method and node context.
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsRetryableError reports whether a read may be retried on another node.
// JSON-RPC level errors are answers from a healthy node and are not retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503")
}
