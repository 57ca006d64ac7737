// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Snapshot is a complete, ordered copy of a store and the block it was taken at.
type Snapshot struct {
	Block       BlockContext
	Accounts    []AccountEntry
	Contracts   []ContractEntry
	Logs        []*types.Log
	BlockHashes []BlockHashEntry
}

type AccountEntry struct {
	Address common.Address
	Account *Account
}

type ContractEntry struct {
	Hash common.Hash
	Code []byte
}

type BlockHashEntry struct {
	Number uint64
	Hash   common.Hash
}

// Snapshot copies the store. Tables are sorted so equal stores give equal snapshots.
func (s *Store) Snapshot(block BlockContext) *Snapshot {
	snap := &Snapshot{Block: block}

	for addr, acc := range s.Accounts {
		snap.Accounts = append(snap.Accounts, AccountEntry{addr, acc.Copy()})
	}
	slices.SortFunc(snap.Accounts, func(a, b AccountEntry) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})

	for hash, code := range s.Contracts {
		snap.Contracts = append(snap.Contracts, ContractEntry{hash, bytes.Clone(code)})
	}
	slices.SortFunc(snap.Contracts, func(a, b ContractEntry) int {
		return bytes.Compare(a.Hash[:], b.Hash[:])
	})

	for _, l := range s.Logs {
		cpy := *l
		cpy.Topics = slices.Clone(l.Topics)
		cpy.Data = bytes.Clone(l.Data)
		snap.Logs = append(snap.Logs, &cpy)
	}

	for n, h := range s.BlockHashes {
		snap.BlockHashes = append(snap.BlockHashes, BlockHashEntry{n, h})
	}
	slices.SortFunc(snap.BlockHashes, func(a, b BlockHashEntry) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return snap
}

// NewStoreFromSnapshot rebuilds the tables held by snap.
func NewStoreFromSnapshot(snap *Snapshot) *Store {
	s := NewStore()
	for _, e := range snap.Accounts {
		s.Accounts[e.Address] = e.Account.Copy()
	}
	for _, e := range snap.Contracts {
		s.Contracts[e.Hash] = bytes.Clone(e.Code)
	}
	for _, l := range snap.Logs {
		cpy := *l
		s.Logs = append(s.Logs, &cpy)
	}
	for _, e := range snap.BlockHashes {
		s.BlockHashes[e.Number] = e.Hash
	}
	return s
}

// NewLocalDBFromSnapshot creates a database holding exactly the snapshot tables.
func NewLocalDBFromSnapshot(snap *Snapshot) *LocalDB {
	return NewLocalDBWithStore(NewStoreFromSnapshot(snap))
}

// Encoded layout. Numbers outside of account infos are fixed width little
// endian blobs.
type (
	snapshotRLP struct {
		Block       blockRLP
		Accounts    []accountRLP
		Contracts   []ContractEntry
		Logs        []logRLP
		BlockHashes []blockHashRLP
	}
	blockRLP struct {
		Number     []byte
		Coinbase   common.Address
		Timestamp  []byte
		GasLimit   []byte
		BaseFee    []byte
		Difficulty []byte
		PrevRandao common.Hash
	}
	accountRLP struct {
		Address common.Address
		Info    infoRLP
		State   uint8
		Storage []slotRLP
	}
	infoRLP struct {
		Balance  []byte
		Nonce    uint64
		CodeHash common.Hash
		HasCode  bool
		Code     []byte
	}
	slotRLP struct {
		Key   []byte
		Value []byte
	}
	logRLP struct {
		Address     common.Address
		Topics      []common.Hash
		Data        []byte
		BlockNumber []byte
		TxIndex     []byte
		Index       []byte
	}
	blockHashRLP struct {
		Number []byte
		Hash   common.Hash
	}
)

func encodeInfo(info *AccountInfo) infoRLP {
	return infoRLP{
		Balance:  putLE(&info.Balance),
		Nonce:    info.Nonce,
		CodeHash: info.CodeHash,
		HasCode:  info.Code != nil,
		Code:     info.Code,
	}
}

func decodeInfo(r *infoRLP) (AccountInfo, error) {
	balance, err := getLE(r.Balance)
	if err != nil {
		return AccountInfo{}, err
	}
	info := AccountInfo{
		Balance:  balance,
		Nonce:    r.Nonce,
		CodeHash: r.CodeHash,
	}
	if r.HasCode {
		info.Code = append([]byte{}, r.Code...)
	}
	return info, nil
}

func decodeLog(r *logRLP) (*types.Log, error) {
	number, err := getLE64(r.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	txIndex, err := getLE64(r.TxIndex)
	if err != nil {
		return nil, fmt.Errorf("tx index: %w", err)
	}
	index, err := getLE64(r.Index)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &types.Log{
		Address:     r.Address,
		Topics:      r.Topics,
		Data:        r.Data,
		BlockNumber: number,
		TxIndex:     uint(txIndex),
		Index:       uint(index),
	}, nil
}

func (snap *Snapshot) encode() *snapshotRLP {
	b := &snap.Block
	out := &snapshotRLP{
		Block: blockRLP{
			Number:     putLE64(b.Number),
			Coinbase:   b.Coinbase,
			Timestamp:  putLE64(b.Timestamp),
			GasLimit:   putLE64(b.GasLimit),
			BaseFee:    putLE(&b.BaseFee),
			Difficulty: putLE(&b.Difficulty),
			PrevRandao: b.PrevRandao,
		},
		Contracts: snap.Contracts,
	}
	for _, e := range snap.Accounts {
		acc := accountRLP{
			Address: e.Address,
			Info:    encodeInfo(&e.Account.Info),
			State:   uint8(e.Account.State),
		}
		for k, v := range e.Account.Storage {
			acc.Storage = append(acc.Storage, slotRLP{putLE(&k), putLE(&v)})
		}
		slices.SortFunc(acc.Storage, func(a, b slotRLP) int {
			return bytes.Compare(a.Key, b.Key)
		})
		out.Accounts = append(out.Accounts, acc)
	}
	for _, l := range snap.Logs {
		out.Logs = append(out.Logs, logRLP{
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			BlockNumber: putLE64(l.BlockNumber),
			TxIndex:     putLE64(uint64(l.TxIndex)),
			Index:       putLE64(uint64(l.Index)),
		})
	}
	for _, e := range snap.BlockHashes {
		out.BlockHashes = append(out.BlockHashes, blockHashRLP{putLE64(e.Number), e.Hash})
	}
	return out
}

func (r *snapshotRLP) decode() (*Snapshot, error) {
	var (
		snap = &Snapshot{Contracts: r.Contracts}
		err  error
		b    = &snap.Block
	)
	b.Coinbase = r.Block.Coinbase
	b.PrevRandao = r.Block.PrevRandao
	if b.Number, err = getLE64(r.Block.Number); err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	if b.Timestamp, err = getLE64(r.Block.Timestamp); err != nil {
		return nil, fmt.Errorf("block timestamp: %w", err)
	}
	if b.GasLimit, err = getLE64(r.Block.GasLimit); err != nil {
		return nil, fmt.Errorf("block gas limit: %w", err)
	}
	if b.BaseFee, err = getLE(r.Block.BaseFee); err != nil {
		return nil, fmt.Errorf("block base fee: %w", err)
	}
	if b.Difficulty, err = getLE(r.Block.Difficulty); err != nil {
		return nil, fmt.Errorf("block difficulty: %w", err)
	}

	for i := range r.Accounts {
		e := &r.Accounts[i]
		state := AccountState(e.State)
		if !state.Valid() {
			return nil, fmt.Errorf("account %v: invalid state %d", e.Address, e.State)
		}
		info, err := decodeInfo(&e.Info)
		if err != nil {
			return nil, fmt.Errorf("account %v balance: %w", e.Address, err)
		}
		acc := &Account{Info: info, State: state, Storage: make(map[uint256.Int]uint256.Int, len(e.Storage))}
		for _, slot := range e.Storage {
			k, err := getLE(slot.Key)
			if err != nil {
				return nil, fmt.Errorf("account %v slot: %w", e.Address, err)
			}
			v, err := getLE(slot.Value)
			if err != nil {
				return nil, fmt.Errorf("account %v value: %w", e.Address, err)
			}
			acc.Storage[k] = v
		}
		snap.Accounts = append(snap.Accounts, AccountEntry{e.Address, acc})
	}
	for i := range r.Logs {
		l, err := decodeLog(&r.Logs[i])
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		snap.Logs = append(snap.Logs, l)
	}
	for _, e := range r.BlockHashes {
		n, err := getLE64(e.Number)
		if err != nil {
			return nil, fmt.Errorf("block hash: %w", err)
		}
		snap.BlockHashes = append(snap.BlockHashes, BlockHashEntry{n, e.Hash})
	}
	return snap, nil
}

// EncodeSnapshot writes snap as a snappy compressed RLP stream.
func EncodeSnapshot(w io.Writer, snap *Snapshot) error {
	return writeCompressed(w, snap.encode())
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var raw snapshotRLP
	if err := readCompressed(r, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return raw.decode()
}

// SaveSnapshot writes snap to path.
func SaveSnapshot(path string, snap *Snapshot) error {
	return saveFile(path, snap.encode())
}

// LoadSnapshot reads the snapshot at path.
func LoadSnapshot(path string) (*Snapshot, error) {
	var raw snapshotRLP
	if err := loadFile(path, &raw); err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	return raw.decode()
}
