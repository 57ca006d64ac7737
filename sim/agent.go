// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
)

// Agent submits transactions each step.
type Agent interface {
	Update(rng *rand.Rand, env *Env) []Transaction
	Address() common.Address
}

// Recorder samples a value from the state after each step.
type Recorder[R any] interface {
	Record(env *Env) R
}

// RecordedAgent is an Agent whose state is sampled after each step.
type RecordedAgent[R any] interface {
	Agent
	Recorder[R]
}

// AgentSet is a homogeneous group of agents driven by Run.
type AgentSet interface {
	// Call collects the transactions of every agent of the set.
	Call(rng *rand.Rand, env *Env) []Transaction
	// Record samples every agent of the set.
	Record(env *Env)
	Addresses() []common.Address
}

// AgentVec holds agents of the same kind, recording one value per agent and step.
type AgentVec[R any] struct {
	agents  []RecordedAgent[R]
	records [][]R
}

// NewAgentVec creates a set from agents.
func NewAgentVec[R any](agents ...RecordedAgent[R]) *AgentVec[R] {
	return &AgentVec[R]{agents: agents}
}

// Push adds an agent to the set.
func (v *AgentVec[R]) Push(a RecordedAgent[R]) {
	v.agents = append(v.agents, a)
}

func (v *AgentVec[R]) Len() int { return len(v.agents) }

func (v *AgentVec[R]) Call(rng *rand.Rand, env *Env) []Transaction {
	var txs []Transaction
	for _, a := range v.agents {
		txs = append(txs, a.Update(rng, env)...)
	}
	return txs
}

func (v *AgentVec[R]) Record(env *Env) {
	step := make([]R, len(v.agents))
	for i, a := range v.agents {
		step[i] = a.Record(env)
	}
	v.records = append(v.records, step)
}

func (v *AgentVec[R]) Addresses() []common.Address {
	addrs := make([]common.Address, len(v.agents))
	for i, a := range v.agents {
		addrs[i] = a.Address()
	}
	return addrs
}

// Records returns the recorded values indexed by step, then agent.
func (v *AgentVec[R]) Records() [][]R { return v.records }

// SingletonAgent wraps a single agent.
type SingletonAgent[R any] struct {
	agent   RecordedAgent[R]
	records []R
}

func NewSingletonAgent[R any](a RecordedAgent[R]) *SingletonAgent[R] {
	return &SingletonAgent[R]{agent: a}
}

func (s *SingletonAgent[R]) Agent() RecordedAgent[R] { return s.agent }

func (s *SingletonAgent[R]) Call(rng *rand.Rand, env *Env) []Transaction {
	return s.agent.Update(rng, env)
}

func (s *SingletonAgent[R]) Record(env *Env) {
	s.records = append(s.records, s.agent.Record(env))
}

func (s *SingletonAgent[R]) Addresses() []common.Address {
	return []common.Address{s.agent.Address()}
}

// Records returns one value per step.
func (s *SingletonAgent[R]) Records() []R { return s.records }
