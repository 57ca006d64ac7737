// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/vechain/evmsim/state"
)

// Status is the outcome of an execution.
type Status uint8

const (
	Success Status = iota
	Revert
	Halt
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Revert:
		return "revert"
	case Halt:
		return "halt"
	}
	return "unknown"
}

// Call is a message handed to the engine. A nil To deploys Data as init code.
type Call struct {
	Caller common.Address
	To     *common.Address
	Data   []byte
	Value  uint256.Int
}

// ExecutionResult is what an engine reports for one call. Changes are
// committed by the caller, only when Status is Success.
type ExecutionResult struct {
	Status  Status
	Output  []byte
	Logs    []*types.Log
	GasUsed uint64
	// Reason describes a halt.
	Reason string
	// ContractAddress is set for successful deployments.
	ContractAddress common.Address
	Changes         state.ChangeSet
}

// Engine executes calls against a state.Database. It reads through db while
// running and never commits.
type Engine interface {
	Execute(db state.Database, block state.BlockContext, call Call) (*ExecutionResult, error)
}
