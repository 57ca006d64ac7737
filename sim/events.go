// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// FilterEvents returns the events of transactions calling selector.
func FilterEvents(events []Event, selector Selector) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Selector == selector {
			out = append(out, ev)
		}
	}
	return out
}

// DecodeEvent unpacks log as the event name of contract into out, indexed
// arguments included. out is a pointer to a struct whose fields are named
// after the event arguments.
func DecodeEvent(contract *abi.ABI, name string, log *types.Log, out any) error {
	event, ok := contract.Events[name]
	if !ok {
		return fmt.Errorf("event %s not in abi", name)
	}
	if len(log.Topics) == 0 || log.Topics[0] != event.ID {
		return fmt.Errorf("log is not a %s event", name)
	}
	if len(log.Data) > 0 {
		if err := contract.UnpackIntoInterface(out, name, log.Data); err != nil {
			return fmt.Errorf("unpack %s data: %w", name, err)
		}
	}
	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopics(out, indexed, log.Topics[1:]); err != nil {
		return fmt.Errorf("parse %s topics: %w", name, err)
	}
	return nil
}

// RevertReason decodes the Error(string) payload of a revert, falling back
// to the raw output.
func RevertReason(output []byte) string {
	if len(output) == 0 {
		return "execution reverted"
	}
	if reason, err := abi.UnpackRevert(output); err == nil {
		return reason
	}
	return hexutil.Encode(output)
}
