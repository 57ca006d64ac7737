// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/vechain/evmsim/state"
)

const tokenABIJSON = `[
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"mint","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"destroy","inputs":[],"outputs":[]},
	{"type":"function","name":"burnGas","inputs":[],"outputs":[]},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

var (
	tokenABI  = mustABI(tokenABIJSON)
	tokenCode = []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00}
	errBroken = errors.New("engine broken")
)

func mustABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

func pack(method string, args ...any) []byte {
	data, err := tokenABI.Pack(method, args...)
	if err != nil {
		panic(err)
	}
	return data
}

func selectorOf(method string) Selector {
	return SelectorOf(tokenABI.Methods[method].ID)
}

func balanceSlot(owner common.Address) uint256.Int {
	var s uint256.Int
	s.SetBytes(crypto.Keccak256(owner.Bytes()))
	return s
}

func allowanceSlot(owner, spender common.Address) uint256.Int {
	var s uint256.Int
	s.SetBytes(crypto.Keccak256(owner.Bytes(), spender.Bytes()))
	return s
}

func revertData(reason string) []byte {
	stringTy, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringTy}}.Pack(reason)
	return append(crypto.Keccak256([]byte("Error(string)"))[:4], packed...)
}

// tokenEngine executes a tiny ERC20 like contract natively, reading state
// through the database the way an interpreter would.
type tokenEngine struct {
	broken bool
	calls  int
}

func (e *tokenEngine) Execute(db state.Database, _ state.BlockContext, call Call) (*ExecutionResult, error) {
	e.calls++
	if e.broken {
		return nil, errBroken
	}

	sender, _ := db.Basic(call.Caller)
	senderChange := &state.AccountChange{Touched: true, Info: sender}
	senderChange.Info.Nonce++
	changes := state.ChangeSet{call.Caller: senderChange}

	if call.To == nil {
		addr := crypto.CreateAddress(call.Caller, sender.Nonce)
		changes[addr] = &state.AccountChange{
			Touched: true,
			Created: true,
			Info:    state.AccountInfo{Nonce: 1, Code: call.Data},
		}
		return &ExecutionResult{Status: Success, ContractAddress: addr, GasUsed: 53_000, Changes: changes}, nil
	}

	target := *call.To
	info, _ := db.Basic(target)
	contract := &state.AccountChange{Touched: true, Info: info, Storage: map[uint256.Int]uint256.Int{}}

	revert := func(reason string) (*ExecutionResult, error) {
		return &ExecutionResult{Status: Revert, Output: revertData(reason), GasUsed: 21_000}, nil
	}
	read := func(slot uint256.Int) (uint256.Int, error) {
		if v, ok := contract.Storage[slot]; ok {
			return v, nil
		}
		return db.Storage(target, slot)
	}
	transferLog := func(event string, from, to common.Address, amount *big.Int) *types.Log {
		return &types.Log{
			Address: target,
			Topics: []common.Hash{
				tokenABI.Events[event].ID,
				common.BytesToHash(from.Bytes()),
				common.BytesToHash(to.Bytes()),
			},
			Data: common.BigToHash(amount).Bytes(),
		}
	}

	if len(call.Data) < 4 {
		return revert("no selector")
	}
	method, err := tokenABI.MethodById(call.Data[:4])
	if err != nil {
		return revert("unknown selector")
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return revert("bad arguments")
	}

	res := &ExecutionResult{Status: Success, GasUsed: 30_000, Changes: changes}
	switch method.Name {
	case "mint":
		to, amount := args[0].(common.Address), args[1].(*big.Int)
		bal, err := read(balanceSlot(to))
		if err != nil {
			return nil, err
		}
		bal.Add(&bal, uint256.MustFromBig(amount))
		contract.Storage[balanceSlot(to)] = bal
		res.Logs = append(res.Logs, transferLog("Transfer", common.Address{}, to, amount))
	case "transfer":
		to, amount := args[0].(common.Address), args[1].(*big.Int)
		value := uint256.MustFromBig(amount)
		from, err := read(balanceSlot(call.Caller))
		if err != nil {
			return nil, err
		}
		if from.Lt(value) {
			return revert("insufficient balance")
		}
		from.Sub(&from, value)
		contract.Storage[balanceSlot(call.Caller)] = from
		dest, err := read(balanceSlot(to))
		if err != nil {
			return nil, err
		}
		dest.Add(&dest, value)
		contract.Storage[balanceSlot(to)] = dest
		res.Logs = append(res.Logs, transferLog("Transfer", call.Caller, to, amount))
		res.Output, _ = method.Outputs.Pack(true)
	case "approve":
		spender, amount := args[0].(common.Address), args[1].(*big.Int)
		contract.Storage[allowanceSlot(call.Caller, spender)] = *uint256.MustFromBig(amount)
		res.Logs = append(res.Logs, transferLog("Approval", call.Caller, spender, amount))
		res.Output, _ = method.Outputs.Pack(true)
	case "balanceOf":
		bal, err := read(balanceSlot(args[0].(common.Address)))
		if err != nil {
			return nil, err
		}
		res.Output, _ = method.Outputs.Pack(bal.ToBig())
	case "allowance":
		v, err := read(allowanceSlot(args[0].(common.Address), args[1].(common.Address)))
		if err != nil {
			return nil, err
		}
		res.Output, _ = method.Outputs.Pack(v.ToBig())
	case "destroy":
		contract.SelfDestructed = true
	case "burnGas":
		return &ExecutionResult{Status: Halt, Reason: "OutOfGas", GasUsed: 30_000_000}, nil
	}
	changes[target] = contract
	return res, nil
}
