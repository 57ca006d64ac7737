// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Validator orders the transactions of a block. rng is the generator of the
// step, so an order only depends on the seed, the step and the batch.
type Validator interface {
	Order(rng *rand.Rand, txs []Transaction) []Transaction
}

// RandomValidator shuffles the batch uniformly.
type RandomValidator struct{}

func (RandomValidator) Order(rng *rand.Rand, txs []Transaction) []Transaction {
	out := slices.Clone(txs)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// GasPriorityValidator keeps the transactions of each caller in nonce order,
// and orders callers by the priority fee of their first pending transaction,
// highest first. Ties keep submission order. Missing nonces sort last and
// missing fees count as zero.
type GasPriorityValidator struct{}

func (GasPriorityValidator) Order(_ *rand.Rand, txs []Transaction) []Transaction {
	var (
		index  = make(map[common.Address]int)
		groups [][]Transaction
	)
	for _, tx := range txs {
		i, ok := index[tx.Caller]
		if !ok {
			i = len(groups)
			index[tx.Caller] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], tx)
	}

	nonce := func(tx *Transaction) uint64 {
		if tx.Nonce == nil {
			return math.MaxUint64
		}
		return *tx.Nonce
	}
	for _, g := range groups {
		slices.SortStableFunc(g, func(a, b Transaction) int {
			return cmp.Compare(nonce(&a), nonce(&b))
		})
	}
	fee := func(tx *Transaction) *uint256.Int {
		if tx.GasPriorityFee == nil {
			return new(uint256.Int)
		}
		return tx.GasPriorityFee
	}
	slices.SortStableFunc(groups, func(a, b []Transaction) int {
		return fee(&b[0]).Cmp(fee(&a[0]))
	})

	out := make([]Transaction, 0, len(txs))
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ValidatorByName returns the validator registered under name.
func ValidatorByName(name string) (Validator, error) {
	switch name {
	case "", "random":
		return RandomValidator{}, nil
	case "gas-priority":
		return GasPriorityValidator{}, nil
	}
	return nil, fmt.Errorf("unknown validator %q", name)
}
