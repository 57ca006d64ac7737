// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/config"
	"github.com/vechain/evmsim/state"
)

func replayAction(ctx *cli.Context) error {
	cachePath, err := requireFlag(ctx, cacheFlag)
	if err != nil {
		return err
	}
	out := ctx.String(outFlag.Name)
	if out == "" {
		out = config.Default().Output.Snapshot
	}

	snap, err := replay(cachePath)
	if err != nil {
		return err
	}
	if err := state.SaveSnapshot(out, snap); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	logger.Info("snapshot saved", "path", out, "block", snap.Block.Number, "accounts", len(snap.Accounts))
	return nil
}

// replay rebuilds the state a fork read, at the block it was pinned to.
func replay(cachePath string) (*state.Snapshot, error) {
	c, err := state.LoadRequestCache(cachePath)
	if err != nil {
		return nil, errors.Wrap(err, "load request cache")
	}
	db, err := state.NewLocalDBFromRequests(c)
	if err != nil {
		return nil, errors.Wrap(err, "replay request cache")
	}
	block := state.BlockContext{Number: c.StartBlockNumber, Timestamp: c.StartTimestamp}
	return db.Store().Snapshot(block), nil
}
