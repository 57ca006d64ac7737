// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Database is what an engine reads during execution and commits to afterwards.
type Database interface {
	// Basic returns the account info, false if the account does not exist.
	// It never fails.
	Basic(addr common.Address) (AccountInfo, bool)
	CodeByHash(hash common.Hash) ([]byte, error)
	Storage(addr common.Address, slot uint256.Int) (uint256.Int, error)
	BlockHash(number uint64) (common.Hash, error)
	Commit(changes ChangeSet)
}

// Backend is a Database its owner can seed and export.
type Backend interface {
	Database
	InsertAccountInfo(addr common.Address, info AccountInfo)
	InsertAccountStorage(addr common.Address, slot, value uint256.Int) error
	ReplaceAccountStorage(addr common.Address, storage map[uint256.Int]uint256.Int) error
	InsertBlockHash(number uint64, hash common.Hash)
	Store() *Store
}

// AccountChange is the post execution delta of one account.
type AccountChange struct {
	Touched        bool
	SelfDestructed bool
	// Created is set by the engine when the account was created by the call.
	Created bool
	Info    AccountInfo
	// Storage holds the final value of every slot written by the call.
	Storage map[uint256.Int]uint256.Int
}

// ChangeSet maps every account seen by a call to its change.
type ChangeSet map[common.Address]*AccountChange

// BlockContext is the environment of the block being simulated.
type BlockContext struct {
	Number     uint64
	Coinbase   common.Address
	Timestamp  uint64
	GasLimit   uint64
	BaseFee    uint256.Int
	Difficulty uint256.Int
	PrevRandao common.Hash
}
