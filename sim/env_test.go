// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/evmsim/state"
)

var (
	deployer = common.HexToAddress("0xd0")
	alice    = common.HexToAddress("0xa1")
	bob      = common.HexToAddress("0xb0")
)

var genesis = state.BlockContext{Number: 1000, Timestamp: 1_700_000_000}

// newTokenEnv deploys the token and mints 1000 to alice.
func newTokenEnv(t *testing.T, opts ...Option) (*Env, common.Address) {
	env := NewEnv(state.NewLocalDB(), &tokenEngine{}, genesis, opts...)
	env.InsertAccounts(uint256.NewInt(1e18), deployer, alice, bob)

	token, err := env.Deploy(deployer, tokenCode, nil)
	require.NoError(t, err)
	_, err = env.Execute(deployer, token, pack("mint", alice, big.NewInt(1000)), nil)
	require.NoError(t, err)
	return env, token
}

func balanceOf(t *testing.T, env *Env, token, owner common.Address) uint64 {
	res, err := env.Call(owner, token, pack("balanceOf", owner))
	require.NoError(t, err)
	out, err := tokenABI.Methods["balanceOf"].Outputs.Unpack(res.Output)
	require.NoError(t, err)
	return out[0].(*big.Int).Uint64()
}

func TestTokenScenario(t *testing.T) {
	env, token := newTokenEnv(t, WithSeed(7))

	env.Submit(
		NewTransaction(alice, token, pack("approve", alice, big.NewInt(1000)), true),
		NewTransaction(bob, token, pack("approve", bob, big.NewInt(1000)), true),
	)
	require.NoError(t, env.ProcessBlock())
	require.Len(t, env.LastEvents(), 2)
	for _, ev := range env.LastEvents() {
		assert.True(t, ev.Success)
		assert.Equal(t, selectorOf("approve"), ev.Selector)
		assert.Len(t, ev.Logs, 1)
	}

	env.Submit(NewTransaction(alice, token, pack("transfer", bob, big.NewInt(500)), true))
	require.NoError(t, env.ProcessBlock())

	assert.Equal(t, uint64(500), balanceOf(t, env, token, alice))
	assert.Equal(t, uint64(500), balanceOf(t, env, token, bob))
	assert.Len(t, env.EventHistory(), 3)
}

func TestProcessBlockAdvancesClock(t *testing.T) {
	env, _ := newTokenEnv(t)
	assert.Equal(t, Idle, env.Phase())

	before := env.Block()
	require.NoError(t, env.ProcessBlock())
	after := env.Block()

	assert.Equal(t, before.Number+1, after.Number)
	assert.Equal(t, before.Timestamp+BlockInterval, after.Timestamp)
	assert.NotEqual(t, before.PrevRandao, after.PrevRandao)
	assert.Equal(t, uint64(DefaultGasLimit), after.GasLimit)
	assert.Equal(t, Idle, env.Phase())
	assert.Equal(t, uint64(1), env.Step())
	assert.Empty(t, env.LastEvents())
}

func TestCheckedRevertIsFatal(t *testing.T) {
	env, token := newTokenEnv(t)

	env.Submit(NewTransaction(bob, token, pack("transfer", alice, big.NewInt(1)), true))
	err := env.ProcessBlock()

	var reverted *RevertedTransactionError
	require.ErrorAs(t, err, &reverted)
	assert.Equal(t, selectorOf("transfer"), reverted.Selector)
	assert.Equal(t, bob, reverted.Caller)
	assert.Equal(t, "insufficient balance", reverted.Reason)
	assert.Equal(t, ExecuteSequentially, env.Phase())
}

func TestUncheckedRevertContinues(t *testing.T) {
	env, token := newTokenEnv(t)
	before := env.Snapshot()

	env.Submit(NewTransaction(bob, token, pack("transfer", alice, big.NewInt(1)), false))
	require.NoError(t, env.ProcessBlock())

	require.Len(t, env.LastEvents(), 1)
	ev := env.LastEvents()[0]
	assert.False(t, ev.Success)
	assert.Empty(t, ev.Logs)
	assert.Equal(t, 0, ev.Sequence)

	// no state was changed, the sender nonce included
	after := env.Snapshot()
	assert.Equal(t, len(before.Accounts), len(after.Accounts))
	for i := range before.Accounts {
		assert.True(t, before.Accounts[i].Account.Info.Equal(&after.Accounts[i].Account.Info))
		assert.Equal(t, before.Accounts[i].Account.Storage, after.Accounts[i].Account.Storage)
	}
	assert.Equal(t, uint64(1000), balanceOf(t, env, token, alice))

	env.Submit(NewTransaction(alice, token, pack("transfer", bob, big.NewInt(1)), true))
	require.NoError(t, env.ProcessBlock())
	assert.Equal(t, uint64(1), balanceOf(t, env, token, bob))
}

func TestHaltIsAlwaysFatal(t *testing.T) {
	env, token := newTokenEnv(t)

	env.Submit(NewTransaction(alice, token, pack("burnGas"), false))
	err := env.ProcessBlock()

	var halted *HaltedExecutionError
	require.ErrorAs(t, err, &halted)
	assert.Equal(t, "OutOfGas", halted.Reason)
}

func TestEngineErrorIsWrapped(t *testing.T) {
	engine := &tokenEngine{}
	env := NewEnv(state.NewLocalDB(), engine, genesis)
	engine.broken = true

	env.Submit(NewTransaction(alice, bob, nil, false))
	err := env.ProcessBlock()
	require.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "execute")
}

func TestSelfDestructThenRead(t *testing.T) {
	env, token := newTokenEnv(t)

	env.Submit(NewTransaction(deployer, token, pack("destroy"), true))
	require.NoError(t, env.ProcessBlock())

	_, exists := env.DB().Basic(token)
	assert.False(t, exists)

	// next block
	require.NoError(t, env.ProcessBlock())
	v, err := env.DB().Storage(token, balanceSlot(alice))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
	assert.Equal(t, uint64(0), balanceOf(t, env, token, alice))
}

func TestEventSequenceAndLogs(t *testing.T) {
	env, token := newTokenEnv(t)
	logsBefore := len(env.DB().Store().Logs)

	env.Submit(
		NewTransaction(alice, token, pack("transfer", bob, big.NewInt(1)), true),
		NewTransaction(alice, token, pack("approve", bob, big.NewInt(5)), true),
		NewTransaction(bob, token, pack("transfer", alice, big.NewInt(100)), false),
	)
	require.NoError(t, env.ProcessBlock())

	events := env.LastEvents()
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i, ev.Sequence)
		assert.Equal(t, uint64(0), ev.Step)
	}

	logs := env.DB().Store().Logs[logsBefore:]
	succeeded := 0
	for _, ev := range events {
		if ev.Success {
			succeeded++
		}
	}
	require.Len(t, logs, succeeded)
	for i, l := range logs {
		assert.Equal(t, env.Block().Number, l.BlockNumber)
		assert.Equal(t, uint(i), l.Index)
	}
}

func TestOrderingIsReproducible(t *testing.T) {
	order := func(seed uint64) []common.Address {
		env, token := newTokenEnv(t, WithSeed(seed))
		for i := range 10 {
			caller := common.BigToAddress(big.NewInt(int64(0x100 + i)))
			env.Submit(NewTransaction(caller, token, pack("approve", bob, big.NewInt(1)), true))
		}
		require.NoError(t, env.ProcessBlock())

		var callers []common.Address
		for _, ev := range env.LastEvents() {
			callers = append(callers, common.BytesToAddress(ev.Logs[0].Topics[1].Bytes()))
		}
		return callers
	}

	a, b := order(1), order(1)
	assert.Equal(t, a, b)
	assert.Len(t, a, 10)
}

func TestDirectHelpers(t *testing.T) {
	env, token := newTokenEnv(t)

	_, err := env.Execute(bob, token, pack("transfer", alice, big.NewInt(5)), nil)
	var reverted *RevertedTransactionError
	require.ErrorAs(t, err, &reverted)

	// Call does not commit
	_, err = env.Call(alice, token, pack("transfer", bob, big.NewInt(5)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balanceOf(t, env, token, bob))

	info, ok := env.DB().Basic(token)
	require.True(t, ok)
	code, err := env.DB().CodeByHash(info.CodeHash)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(tokenCode, code))

	env.InsertAccount(bob, uint256.NewInt(42))
	info, _ = env.DB().Basic(bob)
	assert.Equal(t, uint64(42), info.Balance.Uint64())
}

func TestDirectExecuteStampsLogs(t *testing.T) {
	env, token := newTokenEnv(t)

	logs := env.DB().Store().Logs
	require.Len(t, logs, 1, "mint")
	assert.Equal(t, genesis.Number, logs[0].BlockNumber)
	assert.Equal(t, uint(0), logs[0].TxIndex)
	assert.Equal(t, uint(0), logs[0].Index)

	res, err := env.Execute(alice, token, pack("transfer", bob, big.NewInt(1)), nil)
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, genesis.Number, res.Logs[0].BlockNumber)
	assert.Equal(t, uint(1), res.Logs[0].Index)

	env.Submit(NewTransaction(alice, token, pack("transfer", bob, big.NewInt(1)), true))
	require.NoError(t, env.ProcessBlock())
	_, err = env.Execute(alice, token, pack("approve", bob, big.NewInt(1)), nil)
	require.NoError(t, err)

	logs = env.DB().Store().Logs
	require.Len(t, logs, 4)
	assert.Equal(t, genesis.Number+1, logs[3].BlockNumber)
	assert.Equal(t, uint(1), logs[3].Index, "continues after the block's logs")
}

func TestEnvFromSnapshot(t *testing.T) {
	env, token := newTokenEnv(t)
	env.Submit(NewTransaction(alice, token, pack("transfer", bob, big.NewInt(300)), true))
	require.NoError(t, env.ProcessBlock())

	restored := NewEnvFromSnapshot(env.Snapshot(), &tokenEngine{})
	assert.Equal(t, env.Block(), restored.Block())
	assert.Equal(t, uint64(700), balanceOf(t, restored, token, alice))
	assert.Equal(t, uint64(300), balanceOf(t, restored, token, bob))
	assert.Equal(t, len(env.DB().Store().Logs), len(restored.DB().Store().Logs))
}

func TestEnvFromRequests(t *testing.T) {
	c := state.NewRequestCache(500, 1_600_000_000)
	c.AddAccount(alice, state.AccountInfo{Balance: *uint256.NewInt(9)})

	env, err := NewEnvFromRequests(c, &tokenEngine{})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), env.Block().Number)
	assert.Equal(t, uint64(1_600_000_000), env.Block().Timestamp)
	info, ok := env.DB().Basic(alice)
	require.True(t, ok)
	assert.Equal(t, uint64(9), info.Balance.Uint64())

	bad := state.NewRequestCache(1, 1)
	bad.AddStorage(bob, *uint256.NewInt(1), *uint256.NewInt(1))
	_, err = NewEnvFromRequests(bad, &tokenEngine{})
	assert.Error(t, err)
}
