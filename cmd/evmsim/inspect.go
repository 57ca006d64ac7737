// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/state"
)

func inspectAction(ctx *cli.Context) error {
	w := ctx.App.Writer
	switch {
	case ctx.String(snapshotFlag.Name) != "":
		snap, err := state.LoadSnapshot(ctx.String(snapshotFlag.Name))
		if err != nil {
			return errors.Wrap(err, "load snapshot")
		}
		printSnapshot(w, snap)
	case ctx.String(cacheFlag.Name) != "":
		c, err := state.LoadRequestCache(ctx.String(cacheFlag.Name))
		if err != nil {
			return errors.Wrap(err, "load request cache")
		}
		printRequests(w, c)
	default:
		return errors.New("one of --snapshot or --cache is required")
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func printSnapshot(w io.Writer, snap *state.Snapshot) {
	fmt.Fprintf(w, "block %d  timestamp %d  gas limit %d\n\n", snap.Block.Number, snap.Block.Timestamp, snap.Block.GasLimit)

	accounts := newTable(w, "address", "state", "balance", "nonce", "code hash", "slots")
	for _, e := range snap.Accounts {
		acc := e.Account
		accounts.Append([]string{
			e.Address.Hex(),
			acc.State.String(),
			acc.Info.Balance.Dec(),
			strconv.FormatUint(acc.Info.Nonce, 10),
			acc.Info.CodeHash.TerminalString(),
			strconv.Itoa(len(acc.Storage)),
		})
	}
	accounts.Render()

	fmt.Fprintf(w, "\ncontracts %d  logs %d  block hashes %d\n", len(snap.Contracts), len(snap.Logs), len(snap.BlockHashes))
}

func printRequests(w io.Writer, c *state.RequestCache) {
	fmt.Fprintf(w, "block %d  timestamp %d  requests %d\n\n", c.StartBlockNumber, c.StartTimestamp, c.Len())

	accounts := newTable(w, "address", "balance", "nonce", "code size")
	for _, r := range c.Accounts {
		accounts.Append([]string{
			r.Address.Hex(),
			r.Info.Balance.Dec(),
			strconv.FormatUint(r.Info.Nonce, 10),
			strconv.Itoa(len(r.Info.Code)),
		})
	}
	accounts.Render()

	if len(c.Storage) > 0 {
		fmt.Fprintln(w)
		storage := newTable(w, "address", "slot", "value")
		for _, r := range c.Storage {
			storage.Append([]string{r.Address.Hex(), r.Slot.Hex(), r.Value.Hex()})
		}
		storage.Render()
	}

	if len(c.BlockHashes) > 0 {
		fmt.Fprintln(w)
		hashes := newTable(w, "number", "hash")
		for _, r := range c.BlockHashes {
			hashes.Append([]string{strconv.FormatUint(r.Number, 10), r.Hash.Hex()})
		}
		hashes.Render()
	}
}
