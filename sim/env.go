// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sim drives agents through simulated blocks.
package sim

import (
	"math/rand/v2"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/evmsim/fork"
	"github.com/vechain/evmsim/log"
	"github.com/vechain/evmsim/state"
)

var logger = log.WithContext("pkg", "sim")

const (
	// BlockInterval is the number of seconds between simulated blocks.
	BlockInterval = 15
	// DefaultGasLimit is used for blocks without a gas limit.
	DefaultGasLimit = 30_000_000
)

// Phase is the position of an Env in the block cycle.
type Phase uint8

const (
	Idle Phase = iota
	AdvanceClock
	OrderTransactions
	ExecuteSequentially
	CaptureEvents
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AdvanceClock:
		return "advance-clock"
	case OrderTransactions:
		return "order-transactions"
	case ExecuteSequentially:
		return "execute-sequentially"
	case CaptureEvents:
		return "capture-events"
	}
	return "unknown"
}

// Env owns a state database and advances it one block at a time. It is not
// safe for concurrent use.
type Env struct {
	db        state.Backend
	engine    Engine
	validator Validator
	seed      uint64

	block   state.BlockContext
	step    uint64
	phase   Phase
	queue   []Transaction
	last    []Event
	history []Event
}

// Option configures an Env.
type Option func(*Env)

// WithValidator replaces the default RandomValidator.
func WithValidator(v Validator) Option {
	return func(e *Env) { e.validator = v }
}

// WithSeed sets the seed of the per step generators.
func WithSeed(seed uint64) Option {
	return func(e *Env) { e.seed = seed }
}

// NewEnv creates an Env over db, starting after block.
func NewEnv(db state.Backend, engine Engine, block state.BlockContext, opts ...Option) *Env {
	if block.GasLimit == 0 {
		block.GasLimit = DefaultGasLimit
	}
	e := &Env{
		db:        db,
		engine:    engine,
		validator: RandomValidator{},
		block:     block,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEnvFromSnapshot creates an Env over the state and block of snap.
func NewEnvFromSnapshot(snap *state.Snapshot, engine Engine, opts ...Option) *Env {
	return NewEnv(state.NewLocalDBFromSnapshot(snap), engine, snap.Block, opts...)
}

// NewEnvFromRequests creates an offline Env holding the values recorded by a fork.
func NewEnvFromRequests(c *state.RequestCache, engine Engine, opts ...Option) (*Env, error) {
	db, err := state.NewLocalDBFromRequests(c)
	if err != nil {
		return nil, errors.Wrap(err, "load request cache")
	}
	block := state.BlockContext{Number: c.StartBlockNumber, Timestamp: c.StartTimestamp}
	return NewEnv(db, engine, block, opts...), nil
}

// NewForkEnv creates an Env over a fork, starting after its pinned block.
func NewForkEnv(db *fork.DB, engine Engine, opts ...Option) *Env {
	return NewEnv(db, engine, db.StartBlock(), opts...)
}

func (e *Env) DB() state.Backend         { return e.db }
func (e *Env) Block() state.BlockContext { return e.block }
func (e *Env) Phase() Phase              { return e.phase }
func (e *Env) Step() uint64              { return e.step }
func (e *Env) LastEvents() []Event       { return e.last }
func (e *Env) EventHistory() []Event     { return e.history }
func (e *Env) Pending() []Transaction    { return e.queue }
func (e *Env) Validator() Validator      { return e.validator }
func (e *Env) Snapshot() *state.Snapshot { return e.db.Store().Snapshot(e.block) }

// Submit queues transactions for the next block.
func (e *Env) Submit(txs ...Transaction) {
	e.queue = append(e.queue, txs...)
}

// stepRand returns the generator of the current step.
func (e *Env) stepRand() *rand.Rand {
	return rand.New(rand.NewPCG(e.seed, e.step))
}

// ProcessBlock runs one step over the queued transactions. A returned error
// is fatal: the Env stays in the phase that failed.
func (e *Env) ProcessBlock() error {
	start := time.Now()
	rng := e.stepRand()

	e.phase = AdvanceClock
	e.block.Number++
	e.block.Timestamp += BlockInterval
	for i := 0; i < len(e.block.PrevRandao); i += 8 {
		v := rng.Uint64()
		for j := range 8 {
			e.block.PrevRandao[i+j] = byte(v >> (8 * j))
		}
	}

	e.phase = OrderTransactions
	txs := e.validator.Order(rng, e.queue)
	e.queue = nil

	e.phase = ExecuteSequentially
	var (
		events   = make([]Event, 0, len(txs))
		logIndex uint
	)
	for seq := range txs {
		ev, err := e.execute(&txs[seq], seq, &logIndex)
		if err != nil {
			return err
		}
		events = append(events, ev)
	}

	e.phase = CaptureEvents
	e.last = events
	e.history = append(e.history, events...)

	metricBlockNumber().Set(int64(e.block.Number))
	metricStepDuration().Observe(time.Since(start).Milliseconds())
	logger.Debug("processed block", "step", e.step, "number", e.block.Number, "txs", len(txs))

	e.step++
	e.phase = Idle
	return nil
}

func (e *Env) execute(tx *Transaction, seq int, logIndex *uint) (Event, error) {
	res, err := e.engine.Execute(e.db, e.block, tx.call())
	if err != nil {
		return Event{}, errors.Wrapf(err, "execute %v from %v", tx.Selector, tx.Caller)
	}
	metricTxCount().AddWithLabel(1, map[string]string{"status": res.Status.String()})

	ev := Event{Selector: tx.Selector, Step: e.step, Sequence: seq}
	switch res.Status {
	case Success:
		e.db.Commit(res.Changes)
		*logIndex = e.stampLogs(res.Logs, uint(seq), *logIndex)
		e.db.Store().AppendLogs(res.Logs...)
		ev.Success = true
		ev.Logs = res.Logs
		return ev, nil
	case Revert:
		reason := RevertReason(res.Output)
		if tx.Checked {
			return Event{}, &RevertedTransactionError{Selector: tx.Selector, Caller: tx.Caller, Reason: reason}
		}
		logger.Trace("unchecked transaction reverted", "selector", tx.Selector, "caller", tx.Caller, "reason", reason)
		return ev, nil
	default:
		return Event{}, &HaltedExecutionError{Selector: tx.Selector, Caller: tx.Caller, Reason: res.Reason}
	}
}

// stampLogs sets the position of logs within the current block, numbering
// them from first. It returns the next free index.
func (e *Env) stampLogs(logs []*types.Log, txIndex, first uint) uint {
	for _, l := range logs {
		l.BlockNumber = e.block.Number
		l.TxIndex = txIndex
		l.Index = first
		first++
	}
	return first
}

// blockLogCount counts the stored logs of the current block.
func (e *Env) blockLogCount() uint {
	var n uint
	for _, l := range e.db.Store().Logs {
		if l.BlockNumber == e.block.Number {
			n++
		}
	}
	return n
}

// run executes call at the current block, committing on success when commit is set.
func (e *Env) run(call Call, commit bool) (*ExecutionResult, error) {
	selector := SelectorOf(call.Data)
	res, err := e.engine.Execute(e.db, e.block, call)
	if err != nil {
		return nil, errors.Wrapf(err, "execute %v from %v", selector, call.Caller)
	}
	switch res.Status {
	case Success:
		if commit {
			e.db.Commit(res.Changes)
			e.stampLogs(res.Logs, 0, e.blockLogCount())
			e.db.Store().AppendLogs(res.Logs...)
		}
		return res, nil
	case Revert:
		return res, &RevertedTransactionError{Selector: selector, Caller: call.Caller, Reason: RevertReason(res.Output)}
	default:
		return res, &HaltedExecutionError{Selector: selector, Caller: call.Caller, Reason: res.Reason}
	}
}

// Execute runs a call outside of any block step and commits its changes.
func (e *Env) Execute(caller, target common.Address, calldata []byte, value *uint256.Int) (*ExecutionResult, error) {
	call := Call{Caller: caller, To: &target, Data: calldata}
	if value != nil {
		call.Value = *value
	}
	return e.run(call, true)
}

// Call runs a call without committing it.
func (e *Env) Call(caller, target common.Address, calldata []byte) (*ExecutionResult, error) {
	return e.run(Call{Caller: caller, To: &target, Data: calldata}, false)
}

// Deploy creates a contract from initCode and returns its address.
func (e *Env) Deploy(deployer common.Address, initCode []byte, value *uint256.Int) (common.Address, error) {
	call := Call{Caller: deployer, Data: initCode}
	if value != nil {
		call.Value = *value
	}
	res, err := e.run(call, true)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "deploy")
	}
	logger.Debug("deployed contract", "deployer", deployer, "address", res.ContractAddress)
	return res.ContractAddress, nil
}

// InsertAccount creates or replaces addr with the given balance.
func (e *Env) InsertAccount(addr common.Address, balance *uint256.Int) {
	info := state.DefaultAccountInfo()
	info.Balance = *balance
	e.db.InsertAccountInfo(addr, info)
}

// InsertAccounts creates every address with the same balance.
func (e *Env) InsertAccounts(balance *uint256.Int, addrs ...common.Address) {
	for _, addr := range addrs {
		e.InsertAccount(addr, balance)
	}
}
