// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Store is the set of tables backing a database. It has no behaviour of
// its own beyond keeping the tables consistent, and its owner mutates the
// tables directly.
type Store struct {
	Accounts    map[common.Address]*Account
	Contracts   map[common.Hash][]byte
	Logs        []*types.Log
	BlockHashes map[uint64]common.Hash
}

// NewStore creates a store whose contract table maps both the empty code
// hash and the zero hash to empty code.
func NewStore() *Store {
	return &Store{
		Accounts: make(map[common.Address]*Account),
		Contracts: map[common.Hash][]byte{
			EmptyCodeHash:   {},
			(common.Hash{}): {},
		},
		BlockHashes: make(map[uint64]common.Hash),
	}
}

// Account returns the record of addr, creating a Touched one if absent.
func (s *Store) Account(addr common.Address) *Account {
	return s.accountOr(addr, Touched)
}

// Lookup returns the record of addr without creating it.
func (s *Store) Lookup(addr common.Address) (*Account, bool) {
	acc, ok := s.Accounts[addr]
	return acc, ok
}

func (s *Store) accountOr(addr common.Address, state AccountState) *Account {
	acc, ok := s.Accounts[addr]
	if !ok {
		acc = newAccount(state)
		s.Accounts[addr] = acc
	}
	return acc
}

// InsertContract registers the code carried by info, computing its hash
// when unset. A zero code hash is normalized to EmptyCodeHash.
func (s *Store) InsertContract(info *AccountInfo) {
	if len(info.Code) > 0 {
		if info.CodeHash == EmptyCodeHash || info.CodeHash == (common.Hash{}) {
			info.CodeHash = crypto.Keccak256Hash(info.Code)
		}
		if _, ok := s.Contracts[info.CodeHash]; !ok {
			s.Contracts[info.CodeHash] = bytes.Clone(info.Code)
		}
	}
	if info.CodeHash == (common.Hash{}) {
		info.CodeHash = EmptyCodeHash
	}
}

// AppendLogs adds logs to the log table.
func (s *Store) AppendLogs(logs ...*types.Log) {
	s.Logs = append(s.Logs, logs...)
}
