// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"maps"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// EmptyCodeHash is keccak256 of empty code.
var EmptyCodeHash = types.EmptyCodeHash

// AccountState tells how complete the locally known storage of an account is.
type AccountState uint8

const (
	// NotExisting accounts have no storage, absent slots read as zero.
	NotExisting AccountState = iota
	// Touched accounts may have storage not yet loaded, absent slots are misses.
	Touched
	// StorageCleared accounts have all their storage locally, absent slots read as zero.
	StorageCleared
)

func (s AccountState) String() string {
	switch s {
	case NotExisting:
		return "not-existing"
	case Touched:
		return "touched"
	case StorageCleared:
		return "storage-cleared"
	}
	return "unknown"
}

// Valid reports whether s is one of the defined states.
func (s AccountState) Valid() bool {
	return s <= StorageCleared
}

// AccountInfo is the basic account data handed to the engine.
// A nil Code means the code is not loaded, look it up by CodeHash.
type AccountInfo struct {
	Balance  uint256.Int
	Nonce    uint64
	CodeHash common.Hash
	Code     []byte
}

// DefaultAccountInfo returns the info of an empty account.
func DefaultAccountInfo() AccountInfo {
	return AccountInfo{CodeHash: EmptyCodeHash}
}

// IsEmpty returns if the account has no balance, no nonce and no code.
func (i *AccountInfo) IsEmpty() bool {
	return i.Balance.IsZero() && i.Nonce == 0 &&
		(i.CodeHash == EmptyCodeHash || i.CodeHash == common.Hash{})
}

// Equal compares two infos, treating nil and empty code alike.
func (i *AccountInfo) Equal(other *AccountInfo) bool {
	return i.Balance.Eq(&other.Balance) &&
		i.Nonce == other.Nonce &&
		i.CodeHash == other.CodeHash &&
		bytes.Equal(i.Code, other.Code)
}

// Copy returns a deep copy.
func (i AccountInfo) Copy() AccountInfo {
	if i.Code != nil {
		i.Code = bytes.Clone(i.Code)
	}
	return i
}

// Account is a record of the account table.
type Account struct {
	Info    AccountInfo
	State   AccountState
	Storage map[uint256.Int]uint256.Int
}

func newAccount(state AccountState) *Account {
	return &Account{
		Info:    DefaultAccountInfo(),
		State:   state,
		Storage: make(map[uint256.Int]uint256.Int),
	}
}

// reset wipes the record in place, keeping its identity in the table.
func (a *Account) reset() {
	a.Info = DefaultAccountInfo()
	clear(a.Storage)
	a.State = NotExisting
}

// storageKnown reports whether an absent slot reads as zero.
func (a *Account) storageKnown() bool {
	return a.State == NotExisting || a.State == StorageCleared
}

// Copy returns a deep copy of the record.
func (a *Account) Copy() *Account {
	return &Account{
		Info:    a.Info.Copy(),
		State:   a.State,
		Storage: maps.Clone(a.Storage),
	}
}
