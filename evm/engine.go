// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package evm executes simulation calls on the go-ethereum interpreter.
package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/evmsim/log"
	"github.com/vechain/evmsim/sim"
	"github.com/vechain/evmsim/state"
)

var logger = log.WithContext("pkg", "evm")

var _ sim.Engine = (*Engine)(nil)

// Engine is a sim.Engine backed by vm.EVM. Each call runs on a fresh
// StateDB, so the database is only written by the caller's commit.
type Engine struct {
	chainConfig *params.ChainConfig
	vmConfig    vm.Config
}

// NewEngine creates an engine for chainConfig, DefaultChainConfig when nil.
func NewEngine(chainConfig *params.ChainConfig) *Engine {
	if chainConfig == nil {
		chainConfig = DefaultChainConfig()
	}
	return &Engine{chainConfig: chainConfig}
}

// DefaultChainConfig activates every fork up to Cancun from genesis.
func DefaultChainConfig() *params.ChainConfig {
	var (
		shanghaiTime = uint64(0)
		cancunTime   = uint64(0)
	)
	return &params.ChainConfig{
		ChainID:                 big.NewInt(1),
		HomesteadBlock:          new(big.Int),
		DAOForkBlock:            new(big.Int),
		EIP150Block:             new(big.Int),
		EIP155Block:             new(big.Int),
		EIP158Block:             new(big.Int),
		ByzantiumBlock:          new(big.Int),
		ConstantinopleBlock:     new(big.Int),
		PetersburgBlock:         new(big.Int),
		IstanbulBlock:           new(big.Int),
		MuirGlacierBlock:        new(big.Int),
		BerlinBlock:             new(big.Int),
		LondonBlock:             new(big.Int),
		TerminalTotalDifficulty: new(big.Int),
		ShanghaiTime:            &shanghaiTime,
		CancunTime:              &cancunTime,
	}
}

func canTransfer(db vm.StateDB, addr common.Address, amount *uint256.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

func transfer(db vm.StateDB, sender, recipient common.Address, amount *uint256.Int) {
	db.SubBalance(sender, amount, tracing.BalanceChangeTransfer)
	db.AddBalance(recipient, amount, tracing.BalanceChangeTransfer)
}

func (e *Engine) blockContext(sdb *StateDB, db state.Database, block *state.BlockContext) vm.BlockContext {
	random := block.PrevRandao
	return vm.BlockContext{
		CanTransfer: canTransfer,
		Transfer:    transfer,
		GetHash: func(n uint64) common.Hash {
			hash, err := db.BlockHash(n)
			if err != nil {
				sdb.fail(err)
			}
			return hash
		},
		Coinbase:    block.Coinbase,
		GasLimit:    block.GasLimit,
		BlockNumber: new(big.Int).SetUint64(block.Number),
		Time:        block.Timestamp,
		Difficulty:  block.Difficulty.ToBig(),
		BaseFee:     block.BaseFee.ToBig(),
		BlobBaseFee: new(big.Int),
		Random:      &random,
	}
}

// Execute runs call against db. Calls bump the caller nonce, deployments
// leave it to the interpreter. A database error aborts the call and is
// returned as is.
func (e *Engine) Execute(db state.Database, block state.BlockContext, call sim.Call) (*sim.ExecutionResult, error) {
	if block.GasLimit == 0 {
		block.GasLimit = sim.DefaultGasLimit
	}
	sdb := NewStateDB(db)
	blockCtx := e.blockContext(sdb, db, &block)
	evm := vm.NewEVM(blockCtx, sdb, e.chainConfig, e.vmConfig)
	evm.SetTxContext(vm.TxContext{Origin: call.Caller, GasPrice: new(big.Int)})

	rules := e.chainConfig.Rules(blockCtx.BlockNumber, blockCtx.Random != nil, blockCtx.Time)
	sdb.Prepare(rules, call.Caller, block.Coinbase, call.To, vm.ActivePrecompiles(rules), nil)

	var (
		gas      = block.GasLimit
		value    = call.Value
		ret      []byte
		left     uint64
		contract common.Address
		err      error
	)
	if call.To == nil {
		ret, contract, left, err = evm.Create(call.Caller, call.Data, gas, &value)
	} else {
		sdb.SetNonce(call.Caller, sdb.GetNonce(call.Caller)+1, tracing.NonceChangeEoACall)
		ret, left, err = evm.Call(call.Caller, *call.To, call.Data, gas, &value)
	}
	if dbErr := sdb.Error(); dbErr != nil {
		return nil, dbErr
	}

	res := &sim.ExecutionResult{Output: ret, GasUsed: gas - left}
	switch {
	case err == nil:
		res.Status = sim.Success
		res.ContractAddress = contract
		res.Logs = sdb.Logs()
		res.Changes = sdb.Changes()
	case errors.Is(err, vm.ErrExecutionReverted):
		res.Status = sim.Revert
	default:
		res.Status = sim.Halt
		res.Reason = err.Error()
		logger.Trace("execution halted", "caller", call.Caller, "to", call.To, "err", err)
	}
	return res, nil
}
