// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/config"
	"github.com/vechain/evmsim/fork"
	"github.com/vechain/evmsim/state"
)

func warmAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Fork.URL == "" {
		return errors.New("no fork url, set fork.url or --fork-url")
	}

	db, err := fork.Dial(context.Background(), cfg.Fork.URL, cfg.Fork.Block, cfg.ClientOptions())
	if err != nil {
		return errors.Wrap(err, "fork")
	}
	defer db.Close()

	accounts, err := cfg.WarmAccounts()
	if err != nil {
		return errors.Wrap(err, "warm accounts")
	}
	storage, err := cfg.WarmStorage()
	if err != nil {
		return errors.Wrap(err, "warm storage")
	}
	if err := warm(db, accounts, storage, progressOutput(ctx)); err != nil {
		return err
	}

	if err := state.SaveRequestCache(cfg.Output.Cache, db.Requests()); err != nil {
		return errors.Wrap(err, "save request cache")
	}
	logger.Info("request cache saved", "path", cfg.Output.Cache, "block", db.Number(), "requests", db.Requests().Len())

	if ctx.IsSet(snapshotFlag.Name) {
		if err := state.SaveSnapshot(cfg.Output.Snapshot, db.Store().Snapshot(db.StartBlock())); err != nil {
			return errors.Wrap(err, "save snapshot")
		}
		logger.Info("snapshot saved", "path", cfg.Output.Snapshot)
	}
	return nil
}

// warm loads every listed account, then every listed slot. Accounts of the
// storage list are loaded first when missing from the account list.
func warm(db *fork.DB, accounts []common.Address, storage []config.SlotList, out io.Writer) error {
	total := len(accounts)
	for _, s := range storage {
		total += len(s.Slots)
	}

	var bar *pb.ProgressBar
	if out != nil && total > 0 {
		bar = pb.New64(int64(total)).SetMaxWidth(90)
		bar.Output = out
		bar.Start()
		defer func() { bar.NotPrint = true }()
	}
	step := func() {
		if bar != nil {
			bar.Add64(1)
		}
	}

	for _, addr := range accounts {
		if _, ok := db.Basic(addr); !ok {
			logger.Warn("account does not exist at fork block", "addr", addr)
		}
		step()
	}
	for _, s := range storage {
		db.Basic(s.Address)
		for _, slot := range s.Slots {
			if _, err := db.Storage(s.Address, slot); err != nil {
				return errors.Wrapf(err, "warm storage")
			}
			step()
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return nil
}
