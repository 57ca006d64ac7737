// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MissingAccountError is returned when storage of a never touched account is read.
type MissingAccountError struct {
	Address common.Address
}

func (e *MissingAccountError) Error() string {
	return fmt.Sprintf("state: missing account %v", e.Address)
}

// MissingCodeError is returned when a code hash is not in the contract table.
type MissingCodeError struct {
	Hash common.Hash
}

func (e *MissingCodeError) Error() string {
	return fmt.Sprintf("state: missing code %v", e.Hash)
}

// MissingStorageError is returned when a slot of a Touched account is not loaded.
type MissingStorageError struct {
	Address common.Address
	Slot    uint256.Int
	Cause   error
}

func (e *MissingStorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("state: missing storage %v[%v]: %v", e.Address, e.Slot.Hex(), e.Cause)
	}
	return fmt.Sprintf("state: missing storage %v[%v]", e.Address, e.Slot.Hex())
}

func (e *MissingStorageError) Unwrap() error { return e.Cause }

// MissingBlockHashError is returned by databases without a chain to query.
type MissingBlockHashError struct {
	Number uint64
}

func (e *MissingBlockHashError) Error() string {
	return fmt.Sprintf("state: missing hash of block %d", e.Number)
}

// BlockNotFoundError is returned when a block could not be fetched remotely.
type BlockNotFoundError struct {
	Number uint64
	Cause  error
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("state: block %d not found: %v", e.Number, e.Cause)
}

func (e *BlockNotFoundError) Unwrap() error { return e.Cause }

// RemoteFetchError wraps a failed call to a remote chain data provider.
type RemoteFetchError struct {
	Kind  string
	Cause error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("state: remote %s fetch failed: %v", e.Kind, e.Cause)
}

func (e *RemoteFetchError) Unwrap() error { return e.Cause }
