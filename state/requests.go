// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RequestCache records, in fetch order, every value a fork read remotely.
// Replaying it into a LocalDB reproduces the fork state without network access.
type RequestCache struct {
	StartTimestamp   uint64
	StartBlockNumber uint64
	Accounts         []AccountRequest
	Storage          []StorageRequest
	BlockHashes      []BlockHashEntry
}

type AccountRequest struct {
	Address common.Address
	Info    AccountInfo
}

type StorageRequest struct {
	Address common.Address
	Slot    uint256.Int
	Value   uint256.Int
}

// NewRequestCache creates an empty cache for a fork pinned at the given block.
func NewRequestCache(blockNumber, timestamp uint64) *RequestCache {
	return &RequestCache{StartBlockNumber: blockNumber, StartTimestamp: timestamp}
}

func (c *RequestCache) AddAccount(addr common.Address, info AccountInfo) {
	c.Accounts = append(c.Accounts, AccountRequest{addr, info.Copy()})
}

func (c *RequestCache) AddStorage(addr common.Address, slot, value uint256.Int) {
	c.Storage = append(c.Storage, StorageRequest{addr, slot, value})
}

func (c *RequestCache) AddBlockHash(number uint64, hash common.Hash) {
	c.BlockHashes = append(c.BlockHashes, BlockHashEntry{number, hash})
}

// Len returns the number of recorded fetches.
func (c *RequestCache) Len() int {
	return len(c.Accounts) + len(c.Storage) + len(c.BlockHashes)
}

// Replay seeds db with the recorded values. Accounts are inserted first.
// Storage of an account whose info was never fetched, because it was seeded
// locally, lands on a Touched record.
func (c *RequestCache) Replay(db Backend) error {
	for _, a := range c.Accounts {
		db.InsertAccountInfo(a.Address, a.Info)
	}
	for _, s := range c.Storage {
		db.Store().Account(s.Address)
		if err := db.InsertAccountStorage(s.Address, s.Slot, s.Value); err != nil {
			return fmt.Errorf("replay storage: %w", err)
		}
	}
	for _, b := range c.BlockHashes {
		db.InsertBlockHash(b.Number, b.Hash)
	}
	return nil
}

// NewLocalDBFromRequests creates a database holding every value recorded in c.
func NewLocalDBFromRequests(c *RequestCache) (*LocalDB, error) {
	db := NewLocalDB()
	if err := c.Replay(db); err != nil {
		return nil, err
	}
	return db, nil
}

type requestCacheRLP struct {
	StartTimestamp   []byte
	StartBlockNumber []byte
	Accounts         []accountRequestRLP
	Storage          []storageRequestRLP
	BlockHashes      []blockHashRLP
}

type accountRequestRLP struct {
	Address common.Address
	Info    infoRLP
}

type storageRequestRLP struct {
	Address common.Address
	Slot    []byte
	Value   []byte
}

func (c *RequestCache) encode() *requestCacheRLP {
	out := &requestCacheRLP{
		StartTimestamp:   putLE64(c.StartTimestamp),
		StartBlockNumber: putLE64(c.StartBlockNumber),
	}
	for i := range c.Accounts {
		out.Accounts = append(out.Accounts, accountRequestRLP{c.Accounts[i].Address, encodeInfo(&c.Accounts[i].Info)})
	}
	for i := range c.Storage {
		s := &c.Storage[i]
		out.Storage = append(out.Storage, storageRequestRLP{s.Address, putLE(&s.Slot), putLE(&s.Value)})
	}
	for _, b := range c.BlockHashes {
		out.BlockHashes = append(out.BlockHashes, blockHashRLP{putLE64(b.Number), b.Hash})
	}
	return out
}

func (r *requestCacheRLP) decode() (*RequestCache, error) {
	var (
		c   = &RequestCache{}
		err error
	)
	if c.StartTimestamp, err = getLE64(r.StartTimestamp); err != nil {
		return nil, fmt.Errorf("start timestamp: %w", err)
	}
	if c.StartBlockNumber, err = getLE64(r.StartBlockNumber); err != nil {
		return nil, fmt.Errorf("start block number: %w", err)
	}
	for i := range r.Accounts {
		info, err := decodeInfo(&r.Accounts[i].Info)
		if err != nil {
			return nil, fmt.Errorf("account %v: %w", r.Accounts[i].Address, err)
		}
		c.Accounts = append(c.Accounts, AccountRequest{r.Accounts[i].Address, info})
	}
	for _, s := range r.Storage {
		slot, err := getLE(s.Slot)
		if err != nil {
			return nil, fmt.Errorf("storage %v: %w", s.Address, err)
		}
		value, err := getLE(s.Value)
		if err != nil {
			return nil, fmt.Errorf("storage %v: %w", s.Address, err)
		}
		c.Storage = append(c.Storage, StorageRequest{s.Address, slot, value})
	}
	for _, b := range r.BlockHashes {
		n, err := getLE64(b.Number)
		if err != nil {
			return nil, fmt.Errorf("block hash: %w", err)
		}
		c.BlockHashes = append(c.BlockHashes, BlockHashEntry{n, b.Hash})
	}
	return c, nil
}

// EncodeRequestCache writes c as a snappy compressed RLP stream.
func EncodeRequestCache(w io.Writer, c *RequestCache) error {
	return writeCompressed(w, c.encode())
}

// DecodeRequestCache reads a cache written by EncodeRequestCache.
func DecodeRequestCache(r io.Reader) (*RequestCache, error) {
	var raw requestCacheRLP
	if err := readCompressed(r, &raw); err != nil {
		return nil, fmt.Errorf("decode request cache: %w", err)
	}
	return raw.decode()
}

func SaveRequestCache(path string, c *RequestCache) error {
	return saveFile(path, c.encode())
}

func LoadRequestCache(path string) (*RequestCache, error) {
	var raw requestCacheRLP
	if err := loadFile(path, &raw); err != nil {
		return nil, fmt.Errorf("load request cache %s: %w", path, err)
	}
	return raw.decode()
}
