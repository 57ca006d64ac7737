// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rpctest serves a small in-memory chain over JSON-RPC for tests.
package rpctest

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// BlockTime is the spacing of generated block timestamps.
const BlockTime = 12

// Server answers the read methods used by forks. State is the same at every
// block, only the requested block numbers are recorded.
type Server struct {
	URL string

	mu       sync.Mutex
	srv      *httptest.Server
	head     uint64
	headTime uint64
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	codes    map[common.Address][]byte
	storage  map[common.Address]map[common.Hash]common.Hash
	failures map[string]int
	calls    map[string]int
	blocks   []string
}

// NewServer starts a server whose latest block is head, stamped headTime.
func NewServer(t testing.TB, head, headTime uint64) *Server {
	s := &Server{
		head:     head,
		headTime: headTime,
		balances: make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		codes:    make(map[common.Address][]byte),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
	s.srv = httptest.NewServer(s)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) SetBalance(addr common.Address, v *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[addr] = v
}

func (s *Server) SetNonce(addr common.Address, n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[addr] = n
}

func (s *Server) SetCode(addr common.Address, code []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[addr] = code
}

func (s *Server) SetStorage(addr common.Address, key, value common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage[addr] == nil {
		s.storage[addr] = make(map[common.Hash]common.Hash)
	}
	s.storage[addr][key] = value
}

// FailNext makes the next n calls of method answer with an HTTP 503.
func (s *Server) FailNext(method string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = n
}

// Calls returns how many times method was requested, failures included.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() (n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		n += c
	}
	return
}

// Blocks returns the block arguments of the account and storage calls.
func (s *Server) Blocks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.blocks...)
}

// Header returns the header served for block n.
func (s *Server) Header(n uint64) *types.Header {
	return &types.Header{
		ParentHash: common.BigToHash(new(big.Int).SetUint64(n)),
		Number:     new(big.Int).SetUint64(n),
		Time:       s.headTime - (s.head-n)*BlockTime,
		GasLimit:   30_000_000,
		Difficulty: new(big.Int),
		BaseFee:    big.NewInt(1_000_000_000),
	}
}

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method]++
	if s.failures[req.Method] > 0 {
		s.failures[req.Method]--
		s.mu.Unlock()
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	result, err := s.handle(req.Method, req.Params)
	s.mu.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID, Result: result}
	if err != nil {
		resp.Error = &rpcError{Code: -32602, Message: err.Error()}
		resp.Result = nil
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(method string, params []json.RawMessage) (any, error) {
	str := func(i int) (string, error) {
		var v string
		if i >= len(params) {
			return "", fmt.Errorf("missing param %d", i)
		}
		return v, json.Unmarshal(params[i], &v)
	}

	switch method {
	case "eth_getBlockByNumber":
		arg, err := str(0)
		if err != nil {
			return nil, err
		}
		n, err := s.blockNumber(arg)
		if err != nil {
			return nil, err
		}
		if n > s.head {
			return nil, nil
		}
		return s.Header(n), nil
	case "eth_getBalance", "eth_getTransactionCount", "eth_getCode", "eth_getStorageAt":
	default:
		return nil, fmt.Errorf("method %s not supported", method)
	}

	a, err := str(0)
	if err != nil {
		return nil, err
	}
	addr := common.HexToAddress(a)
	blockIdx := 1
	if method == "eth_getStorageAt" {
		blockIdx = 2
	}
	block, err := str(blockIdx)
	if err != nil {
		return nil, err
	}
	s.blocks = append(s.blocks, block)

	switch method {
	case "eth_getBalance":
		b := s.balances[addr]
		if b == nil {
			b = new(big.Int)
		}
		return (*hexutil.Big)(b), nil
	case "eth_getTransactionCount":
		return hexutil.Uint64(s.nonces[addr]), nil
	case "eth_getCode":
		return hexutil.Bytes(s.codes[addr]), nil
	default:
		k, err := str(1)
		if err != nil {
			return nil, err
		}
		return s.storage[addr][common.HexToHash(k)], nil
	}
}

func (s *Server) blockNumber(arg string) (uint64, error) {
	if arg == "latest" {
		return s.head, nil
	}
	return hexutil.DecodeUint64(arg)
}
