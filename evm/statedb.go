// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evm

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethstate "github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/stateless"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/trie/utils"
	"github.com/holiman/uint256"

	"github.com/vechain/evmsim/state"
)

var _ vm.StateDB = (*StateDB)(nil)

// StateDB is the facade the interpreter runs against during one call. Reads
// go through a state.Database, writes stay in a stacked map until Changes
// collects them.
type StateDB struct {
	db       state.Database
	repo     *stackedMap
	accounts map[common.Address]*account
	origin   map[storageKey]common.Hash
	err      error
}

type account struct {
	info   state.AccountInfo
	exists bool
}

type (
	existKey     common.Address
	createdKey   common.Address
	contractKey  common.Address
	destructKey  common.Address
	balanceKey   common.Address
	nonceKey     common.Address
	codeKey      common.Address
	codeHashKey  common.Address
	accessKey    common.Address
	refundKey    struct{}
	logKey       struct{}
	storageKey   slotRef
	transientKey slotRef
	slotKey      slotRef
)

type slotRef struct {
	addr common.Address
	slot common.Hash
}

// NewStateDB creates a StateDB reading through db.
func NewStateDB(db state.Database) *StateDB {
	s := &StateDB{
		db:       db,
		accounts: make(map[common.Address]*account),
		origin:   make(map[storageKey]common.Hash),
	}
	s.repo = newStackedMap(s.load)
	s.repo.Push()
	return s
}

// Error returns the first database error met while executing.
func (s *StateDB) Error() error {
	return s.err
}

func (s *StateDB) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *StateDB) account(addr common.Address) *account {
	if acc, ok := s.accounts[addr]; ok {
		return acc
	}
	info, ok := s.db.Basic(addr)
	if info.CodeHash == (common.Hash{}) {
		info.CodeHash = state.EmptyCodeHash
	}
	acc := &account{info: info, exists: ok}
	s.accounts[addr] = acc
	return acc
}

// load returns the value a key has before the call.
func (s *StateDB) load(key any) (any, error) {
	switch k := key.(type) {
	case existKey:
		return s.account(common.Address(k)).exists, nil
	case createdKey, contractKey, destructKey, accessKey, slotKey:
		return false, nil
	case balanceKey:
		return s.account(common.Address(k)).info.Balance, nil
	case nonceKey:
		return s.account(common.Address(k)).info.Nonce, nil
	case codeHashKey:
		return s.account(common.Address(k)).info.CodeHash, nil
	case codeKey:
		info := &s.account(common.Address(k)).info
		if info.Code != nil || info.CodeHash == state.EmptyCodeHash {
			return info.Code, nil
		}
		code, err := s.db.CodeByHash(info.CodeHash)
		if err != nil {
			return []byte(nil), err
		}
		info.Code = code
		return code, nil
	case storageKey:
		return s.committed(k.addr, k.slot)
	case transientKey:
		return common.Hash{}, nil
	case refundKey:
		return uint64(0), nil
	case logKey:
		return (*types.Log)(nil), nil
	}
	panic(fmt.Sprintf("unknown key type %T", key))
}

// committed returns the value of a slot before the call. Accounts created
// by the call start with empty storage.
func (s *StateDB) committed(addr common.Address, slot common.Hash) (common.Hash, error) {
	if s.get(createdKey(addr)).(bool) {
		return common.Hash{}, nil
	}
	key := storageKey{addr, slot}
	if v, ok := s.origin[key]; ok {
		return v, nil
	}
	var k uint256.Int
	k.SetBytes32(slot[:])
	v, err := s.db.Storage(addr, k)
	if err != nil {
		return common.Hash{}, err
	}
	s.origin[key] = v.Bytes32()
	return s.origin[key], nil
}

func (s *StateDB) get(key any) any {
	v, err := s.repo.Get(key)
	if err != nil {
		s.fail(err)
	}
	return v
}

// touch creates addr when missing, as any write to an account does.
func (s *StateDB) touch(addr common.Address) {
	if !s.Exist(addr) {
		s.CreateAccount(addr)
	}
}

func (s *StateDB) CreateAccount(addr common.Address) {
	s.repo.Put(existKey(addr), true)
	s.repo.Put(createdKey(addr), true)
	s.repo.Put(balanceKey(addr), uint256.Int{})
	s.repo.Put(nonceKey(addr), uint64(0))
	s.repo.Put(codeKey(addr), []byte(nil))
	s.repo.Put(codeHashKey(addr), state.EmptyCodeHash)
}

func (s *StateDB) CreateContract(addr common.Address) {
	if !s.get(contractKey(addr)).(bool) {
		s.repo.Put(contractKey(addr), true)
	}
}

func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	s.touch(addr)
	prev := s.get(balanceKey(addr)).(uint256.Int)
	if amount.IsZero() {
		return prev
	}
	var v uint256.Int
	v.Sub(&prev, amount)
	s.repo.Put(balanceKey(addr), v)
	return prev
}

func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	s.touch(addr)
	prev := s.get(balanceKey(addr)).(uint256.Int)
	if amount.IsZero() {
		return prev
	}
	var v uint256.Int
	v.Add(&prev, amount)
	s.repo.Put(balanceKey(addr), v)
	return prev
}

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	v := s.get(balanceKey(addr)).(uint256.Int)
	return &v
}

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	return s.get(nonceKey(addr)).(uint64)
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64, _ tracing.NonceChangeReason) {
	s.touch(addr)
	s.repo.Put(nonceKey(addr), nonce)
}

// GetCodeHash returns the zero hash for missing accounts.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	if !s.Exist(addr) {
		return common.Hash{}
	}
	return s.get(codeHashKey(addr)).(common.Hash)
}

func (s *StateDB) GetCode(addr common.Address) []byte {
	return s.get(codeKey(addr)).([]byte)
}

func (s *StateDB) SetCode(addr common.Address, code []byte, _ tracing.CodeChangeReason) []byte {
	s.touch(addr)
	prev := s.GetCode(addr)
	hash := state.EmptyCodeHash
	if len(code) > 0 {
		hash = crypto.Keccak256Hash(code)
	}
	s.repo.Put(codeKey(addr), bytes.Clone(code))
	s.repo.Put(codeHashKey(addr), hash)
	return prev
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	return len(s.GetCode(addr))
}

func (s *StateDB) AddRefund(gas uint64) {
	s.repo.Put(refundKey{}, s.GetRefund()+gas)
}

func (s *StateDB) SubRefund(gas uint64) {
	refund := s.GetRefund()
	if gas > refund {
		panic(fmt.Sprintf("refund counter below zero (gas: %d > refund: %d)", gas, refund))
	}
	s.repo.Put(refundKey{}, refund-gas)
}

func (s *StateDB) GetRefund() uint64 {
	return s.get(refundKey{}).(uint64)
}

func (s *StateDB) GetStateAndCommittedState(addr common.Address, slot common.Hash) (common.Hash, common.Hash) {
	committed, err := s.committed(addr, slot)
	if err != nil {
		s.fail(err)
	}
	return s.GetState(addr, slot), committed
}

func (s *StateDB) GetState(addr common.Address, slot common.Hash) common.Hash {
	return s.get(storageKey{addr, slot}).(common.Hash)
}

func (s *StateDB) SetState(addr common.Address, slot, value common.Hash) common.Hash {
	s.touch(addr)
	prev := s.GetState(addr, slot)
	if prev != value {
		s.repo.Put(storageKey{addr, slot}, value)
	}
	return prev
}

// GetStorageRoot is only used to detect address collisions, where the
// code hash and nonce already tell a live contract apart.
func (s *StateDB) GetStorageRoot(common.Address) common.Hash {
	return common.Hash{}
}

func (s *StateDB) GetTransientState(addr common.Address, slot common.Hash) common.Hash {
	return s.get(transientKey{addr, slot}).(common.Hash)
}

func (s *StateDB) SetTransientState(addr common.Address, slot, value common.Hash) {
	if s.GetTransientState(addr, slot) != value {
		s.repo.Put(transientKey{addr, slot}, value)
	}
}

// SelfDestruct zeroes the balance of addr and marks it destroyed. It returns
// the balance before.
func (s *StateDB) SelfDestruct(addr common.Address) uint256.Int {
	if !s.Exist(addr) {
		return uint256.Int{}
	}
	prev := *s.GetBalance(addr)
	s.repo.Put(balanceKey(addr), uint256.Int{})
	s.repo.Put(destructKey(addr), true)
	return prev
}

func (s *StateDB) HasSelfDestructed(addr common.Address) bool {
	return s.get(destructKey(addr)).(bool)
}

// SelfDestruct6780 only destroys contracts created in the same call.
func (s *StateDB) SelfDestruct6780(addr common.Address) (uint256.Int, bool) {
	if !s.Exist(addr) {
		return uint256.Int{}, false
	}
	if s.get(contractKey(addr)).(bool) {
		return s.SelfDestruct(addr), true
	}
	return *s.GetBalance(addr), false
}

func (s *StateDB) Exist(addr common.Address) bool {
	return s.get(existKey(addr)).(bool)
}

func (s *StateDB) Empty(addr common.Address) bool {
	return !s.Exist(addr) ||
		(s.GetBalance(addr).IsZero() && s.GetNonce(addr) == 0 && s.GetCodeHash(addr) == state.EmptyCodeHash)
}

func (s *StateDB) AddressInAccessList(addr common.Address) bool {
	return s.get(accessKey(addr)).(bool)
}

func (s *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (addressOk bool, slotOk bool) {
	return s.AddressInAccessList(addr), s.get(slotKey{addr, slot}).(bool)
}

func (s *StateDB) AddAddressToAccessList(addr common.Address) {
	if !s.AddressInAccessList(addr) {
		s.repo.Put(accessKey(addr), true)
	}
}

func (s *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	s.AddAddressToAccessList(addr)
	if !s.get(slotKey{addr, slot}).(bool) {
		s.repo.Put(slotKey{addr, slot}, true)
	}
}

func (s *StateDB) PointCache() *utils.PointCache { return nil }

// Prepare warms the accounts and slots a transaction starts with.
func (s *StateDB) Prepare(rules params.Rules, sender, coinbase common.Address, dest *common.Address, precompiles []common.Address, txAccesses types.AccessList) {
	if !rules.IsEIP2929 {
		return
	}
	s.AddAddressToAccessList(sender)
	if dest != nil {
		s.AddAddressToAccessList(*dest)
	}
	for _, addr := range precompiles {
		s.AddAddressToAccessList(addr)
	}
	for _, el := range txAccesses {
		s.AddAddressToAccessList(el.Address)
		for _, key := range el.StorageKeys {
			s.AddSlotToAccessList(el.Address, key)
		}
	}
	if rules.IsShanghai {
		s.AddAddressToAccessList(coinbase)
	}
}

func (s *StateDB) Snapshot() int {
	return s.repo.Push()
}

func (s *StateDB) RevertToSnapshot(rev int) {
	if rev < 1 || rev > s.repo.Depth() {
		panic(fmt.Sprintf("invalid snapshot revision %d (depth:%d)", rev, s.repo.Depth()))
	}
	s.repo.PopTo(rev)
}

func (s *StateDB) AddLog(log *types.Log) {
	s.repo.Put(logKey{}, log)
}

func (s *StateDB) AddPreimage(common.Hash, []byte) {}

func (s *StateDB) Witness() *stateless.Witness { return nil }

func (s *StateDB) AccessEvents() *gethstate.AccessEvents { return nil }

func (s *StateDB) Finalise(bool) {}

// Logs returns the logs emitted by frames that were not reverted.
func (s *StateDB) Logs() (logs []*types.Log) {
	s.repo.Journal(func(k, v any) bool {
		if _, ok := k.(logKey); ok {
			logs = append(logs, v.(*types.Log))
		}
		return true
	})
	return
}

// Changes collects the final state of every account written by frames that
// were not reverted. Destroyed accounts and accounts left empty are reported
// as self-destructed.
func (s *StateDB) Changes() state.ChangeSet {
	var (
		order []common.Address
		slots = make(map[common.Address][]common.Hash)
		seen  = make(map[any]bool)
	)
	written := func(addr common.Address) {
		if _, ok := slots[addr]; !ok {
			slots[addr] = nil
			order = append(order, addr)
		}
	}
	s.repo.Journal(func(k, _ any) bool {
		switch k := k.(type) {
		case existKey:
			written(common.Address(k))
		case balanceKey:
			written(common.Address(k))
		case nonceKey:
			written(common.Address(k))
		case codeKey:
			written(common.Address(k))
		case contractKey:
			written(common.Address(k))
		case destructKey:
			written(common.Address(k))
		case storageKey:
			written(k.addr)
			if !seen[k] {
				seen[k] = true
				slots[k.addr] = append(slots[k.addr], k.slot)
			}
		}
		return true
	})

	changes := make(state.ChangeSet, len(order))
	for _, addr := range order {
		change := &state.AccountChange{Touched: true}
		changes[addr] = change
		if s.HasSelfDestructed(addr) || s.Empty(addr) {
			change.SelfDestructed = true
			continue
		}
		change.Created = s.get(createdKey(addr)).(bool) || s.get(contractKey(addr)).(bool)
		change.Info = state.AccountInfo{
			Balance:  *s.GetBalance(addr),
			Nonce:    s.GetNonce(addr),
			CodeHash: s.GetCodeHash(addr),
		}
		if code := s.GetCode(addr); code != nil || change.Created {
			change.Info.Code = bytes.Clone(code)
		}
		if len(slots[addr]) > 0 {
			change.Storage = make(map[uint256.Int]uint256.Int, len(slots[addr]))
			for _, slot := range slots[addr] {
				v := s.GetState(addr, slot)
				var k, value uint256.Int
				k.SetBytes32(slot[:])
				value.SetBytes32(v[:])
				change.Storage[k] = value
			}
		}
	}
	return changes
}
