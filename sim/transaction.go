// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Selector is the first four bytes of calldata.
type Selector [4]byte

func (s Selector) String() string {
	return common.Bytes2Hex(s[:])
}

// SelectorOf returns the selector of calldata, zero when it is too short.
func SelectorOf(calldata []byte) (s Selector) {
	if len(calldata) >= 4 {
		copy(s[:], calldata)
	}
	return
}

// Transaction is a call submitted by an agent for the next block.
type Transaction struct {
	Selector Selector
	Caller   common.Address
	Target   common.Address
	Calldata []byte
	Value    uint256.Int
	// Checked transactions abort the run when they revert.
	Checked bool
	// Nonce and GasPriorityFee are only used by GasPriorityValidator.
	Nonce          *uint64
	GasPriorityFee *uint256.Int
}

// NewTransaction builds a transaction, taking the selector from calldata.
func NewTransaction(caller, target common.Address, calldata []byte, checked bool) Transaction {
	return Transaction{
		Selector: SelectorOf(calldata),
		Caller:   caller,
		Target:   target,
		Calldata: calldata,
		Checked:  checked,
	}
}

// WithValue returns a copy of tx sending value.
func (tx Transaction) WithValue(value *uint256.Int) Transaction {
	tx.Value = *value
	return tx
}

// WithPriority returns a copy of tx carrying a nonce and priority fee.
func (tx Transaction) WithPriority(nonce uint64, fee *uint256.Int) Transaction {
	tx.Nonce = &nonce
	tx.GasPriorityFee = new(uint256.Int).Set(fee)
	return tx
}

func (tx *Transaction) call() Call {
	target := tx.Target
	return Call{Caller: tx.Caller, To: &target, Data: tx.Calldata, Value: tx.Value}
}

// Event records the outcome of one transaction of a block.
type Event struct {
	Success  bool
	Selector Selector
	Logs     []*types.Log
	// Step is the index of the simulation step, Sequence the position in its block.
	Step     uint64
	Sequence int
}
