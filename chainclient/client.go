// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chainclient reads historical chain data from an Ethereum JSON-RPC
// endpoint. Every call is bounded by a timeout and retried a fixed number of
// times on transport failures.
package chainclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/vechain/evmsim/log"
)

var logger = log.WithContext("pkg", "chainclient")

// ErrNotFound is returned when the endpoint has no such block.
var ErrNotFound = ethereum.NotFound

// Options bound every remote call.
type Options struct {
	Timeout    time.Duration // per attempt
	Retries    int           // extra attempts after the first one
	Backoff    time.Duration // multiplied by the attempt number
	HTTPClient *http.Client
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Timeout: 10 * time.Second,
		Retries: 3,
		Backoff: 250 * time.Millisecond,
	}
}

// Client wraps an ethclient with timeouts and retries.
type Client struct {
	rpc  *rpc.Client
	eth  *ethclient.Client
	opts Options
}

// Dial connects to url.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	var dialOpts []rpc.ClientOption
	if opts.HTTPClient != nil {
		dialOpts = append(dialOpts, rpc.WithHTTPClient(opts.HTTPClient))
	}
	rc, err := rpc.DialOptions(ctx, url, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to dial %s - %w", url, err)
	}
	return New(rc, opts), nil
}

// New creates a client over an existing rpc connection.
func New(rc *rpc.Client, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Client{rpc: rc, eth: ethclient.NewClient(rc), opts: opts}
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) BalanceAt(ctx context.Context, addr common.Address, block *big.Int) (*big.Int, error) {
	balance, err := withRetry(ctx, c, "eth_getBalance", func(ctx context.Context) (*big.Int, error) {
		return c.eth.BalanceAt(ctx, addr, block)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}
	return balance, nil
}

func (c *Client) NonceAt(ctx context.Context, addr common.Address, block *big.Int) (uint64, error) {
	nonce, err := withRetry(ctx, c, "eth_getTransactionCount", func(ctx context.Context) (uint64, error) {
		return c.eth.NonceAt(ctx, addr, block)
	})
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve nonce - %w", err)
	}
	return nonce, nil
}

func (c *Client) CodeAt(ctx context.Context, addr common.Address, block *big.Int) ([]byte, error) {
	code, err := withRetry(ctx, c, "eth_getCode", func(ctx context.Context) ([]byte, error) {
		return c.eth.CodeAt(ctx, addr, block)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve code - %w", err)
	}
	return code, nil
}

func (c *Client) StorageAt(ctx context.Context, addr common.Address, key common.Hash, block *big.Int) ([]byte, error) {
	value, err := withRetry(ctx, c, "eth_getStorageAt", func(ctx context.Context) ([]byte, error) {
		return c.eth.StorageAt(ctx, addr, key, block)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve storage - %w", err)
	}
	return value, nil
}

// HeaderByNumber returns the header of the given block, the latest one if
// number is nil. A missing block yields an error matching ErrNotFound.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	header, err := withRetry(ctx, c, "eth_getBlockByNumber", func(ctx context.Context) (*types.Header, error) {
		return c.eth.HeaderByNumber(ctx, number)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve header - %w", err)
	}
	return header, nil
}

func withRetry[T any](ctx context.Context, c *Client, method string, fn func(context.Context) (T, error)) (T, error) {
	var (
		res T
		err error
	)
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying remote call", "method", method, "attempt", attempt, "err", err)
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(c.opts.Backoff * time.Duration(attempt)):
			}
		}
		reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		res, err = fn(reqCtx)
		cancel()
		if err == nil || !retryable(ctx, err) {
			return res, err
		}
	}
	logger.Warn("remote call failed", "method", method, "attempts", c.opts.Retries+1, "err", err)
	return res, err
}

func retryable(ctx context.Context, err error) bool {
	if errors.Is(err, ethereum.NotFound) || ctx.Err() != nil {
		return false
	}
	return true
}
