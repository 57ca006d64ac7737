// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/evmsim/sim"
	"github.com/vechain/evmsim/state"
)

var (
	deployer = common.HexToAddress("0xd0")
	alice    = common.HexToAddress("0xa1")
	fresh    = common.HexToAddress("0xf1")

	// counterCode stores the first calldata word in slot 0 and emits an
	// empty LOG0 when called with data, then returns slot 0.
	counterCode = common.FromHex("0x361560105760003560005560006000a05b60005460005260206000f3")
	// counterInit returns counterCode.
	counterInit = append(common.FromHex("0x601c600c600039601c6000f3"), counterCode...)
	// revertCode reverts with empty data.
	revertCode = common.FromHex("0x60006000fd")
	// destructCode self-destructs to the caller.
	destructCode = common.FromHex("0x33ff")
)

var block = state.BlockContext{Number: 1000, Timestamp: 1_700_000_000, GasLimit: 30_000_000}

func word(n uint64) []byte {
	w := uint256.NewInt(n).Bytes32()
	return w[:]
}

func newDB(t *testing.T) *state.LocalDB {
	t.Helper()
	db := state.NewLocalDB()
	info := state.DefaultAccountInfo()
	info.Balance = *uint256.NewInt(1e18)
	db.InsertAccountInfo(deployer, info)
	db.InsertAccountInfo(alice, info)
	return db
}

func execute(t *testing.T, db state.Database, call sim.Call) *sim.ExecutionResult {
	t.Helper()
	res, err := NewEngine(nil).Execute(db, block, call)
	require.NoError(t, err)
	return res
}

func TestDeployAndCall(t *testing.T) {
	db := newDB(t)

	res := execute(t, db, sim.Call{Caller: deployer, Data: counterInit})
	require.Equal(t, sim.Success, res.Status, res.Reason)
	addr := crypto.CreateAddress(deployer, 0)
	assert.Equal(t, addr, res.ContractAddress)
	assert.Equal(t, counterCode, res.Output)

	contract := res.Changes[addr]
	require.NotNil(t, contract)
	assert.True(t, contract.Created)
	assert.Equal(t, uint64(1), contract.Info.Nonce)
	assert.Equal(t, counterCode, contract.Info.Code)
	assert.Equal(t, crypto.Keccak256Hash(counterCode), contract.Info.CodeHash)
	assert.Equal(t, uint64(1), res.Changes[deployer].Info.Nonce)
	db.Commit(res.Changes)

	res = execute(t, db, sim.Call{Caller: alice, To: &addr, Data: word(7)})
	require.Equal(t, sim.Success, res.Status, res.Reason)
	assert.Equal(t, word(7), res.Output)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, addr, res.Logs[0].Address)
	assert.Equal(t, map[uint256.Int]uint256.Int{{}: *uint256.NewInt(7)}, res.Changes[addr].Storage)
	assert.False(t, res.Changes[addr].Created)
	assert.Equal(t, uint64(1), res.Changes[alice].Info.Nonce)
	assert.NotZero(t, res.GasUsed)

	// not committed yet
	v, err := db.Storage(addr, uint256.Int{})
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	db.Commit(res.Changes)
	res = execute(t, db, sim.Call{Caller: alice, To: &addr})
	require.Equal(t, sim.Success, res.Status)
	assert.Equal(t, word(7), res.Output)
	assert.Empty(t, res.Logs)
	assert.Nil(t, res.Changes[addr], "reads only")
}

func TestValueTransfer(t *testing.T) {
	db := newDB(t)

	res := execute(t, db, sim.Call{Caller: alice, To: &fresh, Value: *uint256.NewInt(500)})
	require.Equal(t, sim.Success, res.Status)
	to := res.Changes[fresh]
	require.NotNil(t, to)
	assert.True(t, to.Created)
	assert.Equal(t, uint64(500), to.Info.Balance.Uint64())
	assert.Equal(t, state.EmptyCodeHash, to.Info.CodeHash)
	assert.Equal(t, uint64(1e18-500), res.Changes[alice].Info.Balance.Uint64())

	db.Commit(res.Changes)
	info, ok := db.Basic(fresh)
	require.True(t, ok)
	assert.Equal(t, uint64(500), info.Balance.Uint64())

	res = execute(t, db, sim.Call{Caller: fresh, To: &alice, Value: *uint256.NewInt(501)})
	assert.Equal(t, sim.Halt, res.Status)
	assert.Contains(t, res.Reason, "insufficient balance")
	assert.Nil(t, res.Changes)
}

func TestRevert(t *testing.T) {
	db := newDB(t)
	target := common.HexToAddress("0x7e")
	db.InsertAccountInfo(target, state.AccountInfo{Nonce: 1, Code: revertCode})

	res := execute(t, db, sim.Call{Caller: alice, To: &target, Value: *uint256.NewInt(1)})
	assert.Equal(t, sim.Revert, res.Status)
	assert.Empty(t, res.Output)
	assert.Nil(t, res.Changes)
	assert.Empty(t, res.Logs)
}

func TestSelfDestruct(t *testing.T) {
	db := newDB(t)

	// created and destroyed in the same call
	res := execute(t, db, sim.Call{Caller: deployer, Data: destructCode, Value: *uint256.NewInt(100)})
	require.Equal(t, sim.Success, res.Status, res.Reason)
	addr := crypto.CreateAddress(deployer, 0)
	require.NotNil(t, res.Changes[addr])
	assert.True(t, res.Changes[addr].SelfDestructed)
	assert.Equal(t, uint64(1e18), res.Changes[deployer].Info.Balance.Uint64())

	// an older contract only sends its balance away
	old := common.HexToAddress("0x01d")
	db.InsertAccountInfo(old, state.AccountInfo{Balance: *uint256.NewInt(40), Nonce: 1, Code: destructCode})
	res = execute(t, db, sim.Call{Caller: alice, To: &old})
	require.Equal(t, sim.Success, res.Status, res.Reason)
	require.NotNil(t, res.Changes[old])
	assert.False(t, res.Changes[old].SelfDestructed)
	assert.True(t, res.Changes[old].Info.Balance.IsZero())
	assert.Equal(t, uint64(1e18+40), res.Changes[alice].Info.Balance.Uint64())
}

func TestMissingStorageAborts(t *testing.T) {
	db := newDB(t)
	addr := common.HexToAddress("0xc0")
	db.Store().Account(addr)
	db.InsertAccountInfo(addr, state.AccountInfo{Nonce: 1, Code: counterCode})

	_, err := NewEngine(nil).Execute(db, block, sim.Call{Caller: alice, To: &addr})
	var missing *state.MissingStorageError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, addr, missing.Address)
}

func TestEnvWithEngine(t *testing.T) {
	env := sim.NewEnv(state.NewLocalDB(), NewEngine(nil), block)
	env.InsertAccounts(uint256.NewInt(1e18), deployer, alice)

	addr, err := env.Deploy(deployer, counterInit, nil)
	require.NoError(t, err)

	env.Submit(sim.NewTransaction(alice, addr, word(3), true))
	require.NoError(t, env.ProcessBlock())
	require.Len(t, env.LastEvents(), 1)
	assert.True(t, env.LastEvents()[0].Success)

	res, err := env.Call(alice, addr, nil)
	require.NoError(t, err)
	assert.Equal(t, word(3), res.Output)

	logs := env.DB().Store().Logs
	require.Len(t, logs, 1)
	assert.Equal(t, block.Number+1, logs[0].BlockNumber)

	target := common.HexToAddress("0x7e")
	env.DB().InsertAccountInfo(target, state.AccountInfo{Nonce: 1, Code: revertCode})
	env.Submit(sim.NewTransaction(alice, target, nil, true))
	var reverted *sim.RevertedTransactionError
	assert.ErrorAs(t, env.ProcessBlock(), &reverted)
}
