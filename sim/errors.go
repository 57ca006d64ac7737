// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RevertedTransactionError is returned when a checked transaction, or a
// direct execution, reverts.
type RevertedTransactionError struct {
	Selector Selector
	Caller   common.Address
	Reason   string
}

func (e *RevertedTransactionError) Error() string {
	return fmt.Sprintf("sim: transaction %v from %v reverted: %s", e.Selector, e.Caller, e.Reason)
}

// HaltedExecutionError is returned whenever the engine halts.
type HaltedExecutionError struct {
	Selector Selector
	Caller   common.Address
	Reason   string
}

func (e *HaltedExecutionError) Error() string {
	return fmt.Sprintf("sim: transaction %v from %v halted: %s", e.Selector, e.Caller, e.Reason)
}
