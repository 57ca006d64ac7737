// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainclient

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/evmsim/chainclient/rpctest"
)

func dial(t *testing.T, srv *rpctest.Server, opts Options) *Client {
	c, err := Dial(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClient_AccountReads(t *testing.T) {
	srv := rpctest.NewServer(t, 100, 1_700_000_000)
	addr := common.HexToAddress("0xabc")
	srv.SetBalance(addr, big.NewInt(12345))
	srv.SetNonce(addr, 7)
	srv.SetCode(addr, []byte{0x60, 0x00})
	srv.SetStorage(addr, common.HexToHash("0x01"), common.HexToHash("0x2a"))

	c := dial(t, srv, DefaultOptions())
	ctx := context.Background()
	block := big.NewInt(90)

	balance, err := c.BalanceAt(ctx, addr, block)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), balance.Int64())

	nonce, err := c.NonceAt(ctx, addr, block)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	code, err := c.CodeAt(ctx, addr, block)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x00}, code)

	value, err := c.StorageAt(ctx, addr, common.HexToHash("0x01"), block)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0x2a").Bytes(), value)

	for _, b := range srv.Blocks() {
		assert.Equal(t, "0x5a", b, "reads are pinned to the requested block")
	}
}

func TestClient_HeaderByNumber(t *testing.T) {
	srv := rpctest.NewServer(t, 100, 1_700_000_000)
	c := dial(t, srv, DefaultOptions())
	ctx := context.Background()

	latest, err := c.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), latest.Number.Uint64())
	assert.Equal(t, uint64(1_700_000_000), latest.Time)
	assert.Equal(t, srv.Header(100).Hash(), latest.Hash())

	old, err := c.HeaderByNumber(ctx, big.NewInt(98))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000-2*rpctest.BlockTime), old.Time)

	_, err = c.HeaderByNumber(ctx, big.NewInt(101))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 3, srv.Calls("eth_getBlockByNumber"), "not found is never retried")
}

func TestClient_Retry(t *testing.T) {
	srv := rpctest.NewServer(t, 10, 1000)
	c := dial(t, srv, Options{Timeout: time.Second, Retries: 2})
	addr := common.HexToAddress("0x01")

	srv.FailNext("eth_getBalance", 2)
	_, err := c.BalanceAt(context.Background(), addr, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, srv.Calls("eth_getBalance"))

	srv.FailNext("eth_getTransactionCount", 3)
	_, err = c.NonceAt(context.Background(), addr, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to retrieve nonce")
	assert.Equal(t, 3, srv.Calls("eth_getTransactionCount"))
}

func TestClient_CanceledContext(t *testing.T) {
	srv := rpctest.NewServer(t, 10, 1000)
	c := dial(t, srv, Options{Timeout: time.Second, Retries: 5, Backoff: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CodeAt(ctx, common.HexToAddress("0x01"), nil)
	require.Error(t, err)
	assert.LessOrEqual(t, srv.Calls("eth_getCode"), 1)
}
