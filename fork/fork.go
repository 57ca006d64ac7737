// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fork provides a state database that loads missing state from a
// remote chain, pinned to one block, and records every value it loaded.
package fork

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/vechain/evmsim/chainclient"
	"github.com/vechain/evmsim/log"
	"github.com/vechain/evmsim/state"
)

var logger = log.WithContext("pkg", "fork")

// Provider reads chain data at a given block. *chainclient.Client and
// *ethclient.Client both satisfy it.
type Provider interface {
	BalanceAt(ctx context.Context, addr common.Address, block *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, addr common.Address, block *big.Int) (uint64, error)
	CodeAt(ctx context.Context, addr common.Address, block *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, addr common.Address, key common.Hash, block *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

var _ state.Backend = (*DB)(nil)

// DB is a state.Backend answering misses from a Provider.
type DB struct {
	local    *state.LocalDB
	provider Provider
	header   *types.Header
	pinned   *big.Int
	requests *state.RequestCache
}

// New creates a fork of provider at block, 0 meaning the latest block. The
// block is resolved once, so reads never follow the remote head.
func New(ctx context.Context, provider Provider, block uint64) (*DB, error) {
	var number *big.Int
	if block != 0 {
		number = new(big.Int).SetUint64(block)
	}
	header, err := provider.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve fork block %d - %w", block, err)
	}
	db := &DB{
		local:    state.NewLocalDB(),
		provider: provider,
		header:   header,
		pinned:   new(big.Int).Set(header.Number),
		requests: state.NewRequestCache(header.Number.Uint64(), header.Time),
	}
	logger.Info("fork pinned", "number", header.Number, "time", header.Time, "hash", header.Hash())
	return db, nil
}

// Dial creates a fork of the JSON-RPC endpoint at url.
func Dial(ctx context.Context, url string, block uint64, opts chainclient.Options) (*DB, error) {
	client, err := chainclient.Dial(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	db, err := New(ctx, client, block)
	if err != nil {
		client.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the provider if it holds a connection.
func (db *DB) Close() {
	if c, ok := db.provider.(interface{ Close() }); ok {
		c.Close()
	}
}

// Number returns the pinned block number.
func (db *DB) Number() uint64 { return db.pinned.Uint64() }

// Timestamp returns the time of the pinned block.
func (db *DB) Timestamp() uint64 { return db.header.Time }

// StartBlock returns the context of the pinned block.
func (db *DB) StartBlock() state.BlockContext {
	b := state.BlockContext{
		Number:     db.header.Number.Uint64(),
		Coinbase:   db.header.Coinbase,
		Timestamp:  db.header.Time,
		GasLimit:   db.header.GasLimit,
		PrevRandao: db.header.MixDigest,
	}
	if db.header.BaseFee != nil {
		b.BaseFee.SetFromBig(db.header.BaseFee)
	}
	if db.header.Difficulty != nil {
		b.Difficulty.SetFromBig(db.header.Difficulty)
	}
	return b
}

// Requests returns the values loaded so far, in load order.
func (db *DB) Requests() *state.RequestCache { return db.requests }

// Preload seeds the local state with a cache recorded by an earlier run,
// without recording it again.
func (db *DB) Preload(c *state.RequestCache) error {
	if c.StartBlockNumber != db.Number() {
		return fmt.Errorf("cache recorded at block %d, fork pinned at %d", c.StartBlockNumber, db.Number())
	}
	return c.Replay(db.local)
}

func (db *DB) Store() *state.Store { return db.local.Store() }

// Basic loads unknown accounts. A failed load leaves the account NotExisting.
func (db *DB) Basic(addr common.Address) (state.AccountInfo, bool) {
	if acc, ok := db.Store().Lookup(addr); ok {
		return acc.Info.Copy(), acc.State != state.NotExisting
	}

	info, err := db.fetchAccount(addr)
	if err != nil {
		logger.Debug("account unavailable, using empty account", "addr", addr, "err", err)
		return db.local.Basic(addr)
	}
	db.local.InsertAccountInfo(addr, info)
	acc, _ := db.Store().Lookup(addr)
	db.requests.AddAccount(addr, acc.Info)
	return acc.Info.Copy(), true
}

func (db *DB) CodeByHash(hash common.Hash) ([]byte, error) {
	return db.local.CodeByHash(hash)
}

// Storage loads slots missing from Touched accounts, once per slot.
func (db *DB) Storage(addr common.Address, slot uint256.Int) (uint256.Int, error) {
	acc, ok := db.Store().Lookup(addr)
	if !ok {
		return uint256.Int{}, &state.MissingAccountError{Address: addr}
	}
	if value, ok := acc.Storage[slot]; ok {
		return value, nil
	}
	if acc.State != state.Touched {
		return uint256.Int{}, nil
	}

	value, err := db.fetchStorage(addr, slot)
	if err != nil {
		return uint256.Int{}, &state.MissingStorageError{Address: addr, Slot: slot, Cause: err}
	}
	acc.Storage[slot] = value
	db.requests.AddStorage(addr, slot, value)
	return value, nil
}

// BlockHash loads unknown block hashes. A block the remote does not have
// resolves to state.EmptyCodeHash.
func (db *DB) BlockHash(number uint64) (common.Hash, error) {
	if hash, ok := db.Store().BlockHashes[number]; ok {
		return hash, nil
	}

	var hash common.Hash
	header, err := timed(kindBlock, func(ctx context.Context) (*types.Header, error) {
		return db.provider.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	})
	switch {
	case errors.Is(err, ethereum.NotFound):
		hash = state.EmptyCodeHash
	case err != nil:
		return common.Hash{}, &state.BlockNotFoundError{
			Number: number,
			Cause:  &state.RemoteFetchError{Kind: kindBlock, Cause: err},
		}
	default:
		hash = header.Hash()
	}
	db.local.InsertBlockHash(number, hash)
	db.requests.AddBlockHash(number, hash)
	return hash, nil
}

func (db *DB) Commit(changes state.ChangeSet) { db.local.Commit(changes) }

func (db *DB) InsertAccountInfo(addr common.Address, info state.AccountInfo) {
	db.local.InsertAccountInfo(addr, info)
}

func (db *DB) InsertAccountStorage(addr common.Address, slot, value uint256.Int) error {
	return db.local.InsertAccountStorage(addr, slot, value)
}

func (db *DB) ReplaceAccountStorage(addr common.Address, storage map[uint256.Int]uint256.Int) error {
	return db.local.ReplaceAccountStorage(addr, storage)
}

func (db *DB) InsertBlockHash(number uint64, hash common.Hash) {
	db.local.InsertBlockHash(number, hash)
}

func (db *DB) fetchAccount(addr common.Address) (state.AccountInfo, error) {
	balance, err := timed(kindBalance, func(ctx context.Context) (*big.Int, error) {
		return db.provider.BalanceAt(ctx, addr, db.pinned)
	})
	if err != nil {
		return state.AccountInfo{}, &state.RemoteFetchError{Kind: kindBalance, Cause: err}
	}
	nonce, err := timed(kindNonce, func(ctx context.Context) (uint64, error) {
		return db.provider.NonceAt(ctx, addr, db.pinned)
	})
	if err != nil {
		return state.AccountInfo{}, &state.RemoteFetchError{Kind: kindNonce, Cause: err}
	}
	code, err := timed(kindCode, func(ctx context.Context) ([]byte, error) {
		return db.provider.CodeAt(ctx, addr, db.pinned)
	})
	if err != nil {
		return state.AccountInfo{}, &state.RemoteFetchError{Kind: kindCode, Cause: err}
	}

	info := state.AccountInfo{Nonce: nonce, CodeHash: state.EmptyCodeHash, Code: code}
	if info.Code == nil {
		info.Code = []byte{}
	}
	if overflow := info.Balance.SetFromBig(balance); overflow {
		return state.AccountInfo{}, &state.RemoteFetchError{Kind: kindBalance, Cause: fmt.Errorf("balance %v overflows 256 bits", balance)}
	}
	logger.Debug("loaded account", "addr", addr, "balance", balance, "nonce", nonce, "code", len(code))
	return info, nil
}

func (db *DB) fetchStorage(addr common.Address, slot uint256.Int) (uint256.Int, error) {
	raw, err := timed(kindStorage, func(ctx context.Context) ([]byte, error) {
		return db.provider.StorageAt(ctx, addr, common.Hash(slot.Bytes32()), db.pinned)
	})
	if err != nil {
		return uint256.Int{}, &state.RemoteFetchError{Kind: kindStorage, Cause: err}
	}
	var value uint256.Int
	value.SetBytes(raw)
	logger.Debug("loaded storage", "addr", addr, "slot", slot.Hex(), "value", value.Hex())
	return value, nil
}

// timed runs a provider call and records its outcome.
func timed[T any](kind string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	res, err := fn(context.Background())
	result := "ok"
	switch {
	case errors.Is(err, ethereum.NotFound):
		result = "not-found"
	case err != nil:
		result = "error"
	}
	metricFetchCount().AddWithLabel(1, map[string]string{"kind": kind, "result": result})
	metricFetchDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"kind": kind})
	return res, err
}
