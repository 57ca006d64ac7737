// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/config"
	"github.com/vechain/evmsim/evm"
	"github.com/vechain/evmsim/fork"
	"github.com/vechain/evmsim/sim"
	"github.com/vechain/evmsim/state"
)

func runAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		return err
	}
	balance, maxValue, err := cfg.AgentFunds()
	if err != nil {
		return err
	}

	env, forked, err := newRunEnv(ctx, cfg, evm.NewEngine(nil), opts)
	if err != nil {
		return err
	}
	if forked != nil {
		defer forked.Close()
	}

	agents := newTransferAgents(cfg.Agents.Count, &maxValue)
	env.InsertAccounts(&balance, agents.Addresses()...)

	out := progressOutput(ctx)
	runOpts := sim.RunOptions{Progress: out != nil, Output: out}
	if err := sim.RunWithOptions(env, []sim.AgentSet{agents}, cfg.Seed, cfg.Steps, runOpts); err != nil {
		return errors.Wrap(err, "run")
	}

	path := ctx.String(outFlag.Name)
	if path == "" {
		path = cfg.Output.Snapshot
	}
	if err := state.SaveSnapshot(path, env.Snapshot()); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	logger.Info("snapshot saved", "path", path, "block", env.Block().Number, "events", len(env.EventHistory()))

	if forked != nil {
		if err := state.SaveRequestCache(cfg.Output.Cache, forked.Requests()); err != nil {
			return errors.Wrap(err, "save request cache")
		}
		logger.Info("request cache saved", "path", cfg.Output.Cache, "requests", forked.Requests().Len())
	}
	return nil
}

// newRunEnv picks the starting state: the --from snapshot, else the fork of
// the configuration, else the --cache request cache, else an empty state.
// The fork is returned so its requests can be saved.
func newRunEnv(ctx *cli.Context, cfg *config.Config, engine sim.Engine, opts []sim.Option) (*sim.Env, *fork.DB, error) {
	switch {
	case ctx.String(fromFlag.Name) != "":
		snap, err := state.LoadSnapshot(ctx.String(fromFlag.Name))
		if err != nil {
			return nil, nil, errors.Wrap(err, "load snapshot")
		}
		return sim.NewEnvFromSnapshot(snap, engine, opts...), nil, nil
	case cfg.Fork.URL != "":
		db, err := fork.Dial(context.Background(), cfg.Fork.URL, cfg.Fork.Block, cfg.ClientOptions())
		if err != nil {
			return nil, nil, errors.Wrap(err, "fork")
		}
		return sim.NewForkEnv(db, engine, opts...), db, nil
	case ctx.IsSet(cacheFlag.Name):
		c, err := state.LoadRequestCache(cfg.Output.Cache)
		if err != nil {
			return nil, nil, errors.Wrap(err, "load request cache")
		}
		env, err := sim.NewEnvFromRequests(c, engine, opts...)
		return env, nil, err
	}
	return sim.NewEnv(state.NewLocalDB(), engine, state.BlockContext{}, opts...), nil, nil
}

// transferAgent sends a random amount below maxValue to a random peer each
// step, and records its balance.
type transferAgent struct {
	addr     common.Address
	peers    []common.Address
	maxValue *uint256.Int
}

func newTransferAgents(n int, maxValue *uint256.Int) *sim.AgentVec[uint256.Int] {
	addrs := make([]common.Address, n)
	for i := range addrs {
		addrs[i] = agentAddress(i)
	}
	set := sim.NewAgentVec[uint256.Int]()
	for i, addr := range addrs {
		peers := make([]common.Address, 0, n-1)
		peers = append(peers, addrs[:i]...)
		peers = append(peers, addrs[i+1:]...)
		set.Push(&transferAgent{addr: addr, peers: peers, maxValue: maxValue})
	}
	return set
}

func agentAddress(i int) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(fmt.Sprintf("evmsim agent %d", i))))
}

func (a *transferAgent) Address() common.Address { return a.addr }

func (a *transferAgent) Update(rng *rand.Rand, env *sim.Env) []sim.Transaction {
	if len(a.peers) == 0 || a.maxValue.IsZero() {
		return nil
	}
	to := a.peers[rng.IntN(len(a.peers))]
	value := new(uint256.Int).SetUint64(rng.Uint64())
	value.Mod(value, a.maxValue)

	info, _ := env.DB().Basic(a.addr)
	fee := uint256.NewInt(rng.Uint64N(100))
	tx := sim.NewTransaction(a.addr, to, nil, true).
		WithValue(value).
		WithPriority(info.Nonce, fee)
	return []sim.Transaction{tx}
}

func (a *transferAgent) Record(env *sim.Env) uint256.Int {
	info, _ := env.DB().Basic(a.addr)
	return info.Balance
}
