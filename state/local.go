// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"maps"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var _ Backend = (*LocalDB)(nil)

// LocalDB is a Database answering from its store only.
type LocalDB struct {
	store *Store
}

// NewLocalDB creates an empty database.
func NewLocalDB() *LocalDB {
	return &LocalDB{store: NewStore()}
}

// NewLocalDBWithStore creates a database over an existing store.
func NewLocalDBWithStore(s *Store) *LocalDB {
	return &LocalDB{store: s}
}

// Store returns the underlying tables.
func (db *LocalDB) Store() *Store { return db.store }

// Basic materializes unknown addresses as NotExisting records.
func (db *LocalDB) Basic(addr common.Address) (AccountInfo, bool) {
	acc := db.store.accountOr(addr, NotExisting)
	if acc.State == NotExisting {
		return acc.Info.Copy(), false
	}
	return acc.Info.Copy(), true
}

func (db *LocalDB) CodeByHash(hash common.Hash) ([]byte, error) {
	code, ok := db.store.Contracts[hash]
	if !ok {
		return nil, &MissingCodeError{Hash: hash}
	}
	return bytes.Clone(code), nil
}

// Storage reads a slot. An absent slot is zero when the account storage is
// fully known, and a *MissingStorageError otherwise.
func (db *LocalDB) Storage(addr common.Address, slot uint256.Int) (uint256.Int, error) {
	acc, ok := db.store.Lookup(addr)
	if !ok {
		return uint256.Int{}, &MissingAccountError{Address: addr}
	}
	if value, ok := acc.Storage[slot]; ok {
		return value, nil
	}
	if acc.storageKnown() {
		return uint256.Int{}, nil
	}
	return uint256.Int{}, &MissingStorageError{Address: addr, Slot: slot}
}

func (db *LocalDB) BlockHash(number uint64) (common.Hash, error) {
	if hash, ok := db.store.BlockHashes[number]; ok {
		return hash, nil
	}
	return common.Hash{}, &MissingBlockHashError{Number: number}
}

// InsertAccountInfo sets the info of addr, registering its code. A record
// previously seen as NotExisting becomes StorageCleared, since its storage
// is known to be empty.
func (db *LocalDB) InsertAccountInfo(addr common.Address, info AccountInfo) {
	info = info.Copy()
	db.store.InsertContract(&info)
	acc := db.store.Account(addr)
	acc.Info = info
	if acc.State == NotExisting {
		acc.State = StorageCleared
	}
}

// InsertAccountStorage sets one slot of an already known account.
func (db *LocalDB) InsertAccountStorage(addr common.Address, slot, value uint256.Int) error {
	acc, ok := db.store.Lookup(addr)
	if !ok {
		return &MissingAccountError{Address: addr}
	}
	acc.Storage[slot] = value
	return nil
}

// ReplaceAccountStorage swaps the whole storage of an already known account
// and marks it StorageCleared.
func (db *LocalDB) ReplaceAccountStorage(addr common.Address, storage map[uint256.Int]uint256.Int) error {
	acc, ok := db.store.Lookup(addr)
	if !ok {
		return &MissingAccountError{Address: addr}
	}
	acc.Storage = maps.Clone(storage)
	if acc.Storage == nil {
		acc.Storage = make(map[uint256.Int]uint256.Int)
	}
	acc.State = StorageCleared
	return nil
}

func (db *LocalDB) InsertBlockHash(number uint64, hash common.Hash) {
	db.store.BlockHashes[number] = hash
}

func (db *LocalDB) Commit(changes ChangeSet) {
	Commit(db.store, changes)
}
