// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/config"
	"github.com/vechain/evmsim/log"
)

func initLogger(ctx *cli.Context) {
	lvl := log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name))
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.SetDefault(log.NewTerminalHandler(os.Stderr, lvl, useColor))
}

// loadConfig reads --config when given, the defaults otherwise, then applies
// the command line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := ctx.String(configFlag.Name); path != "" {
		c, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		c := config.Default()
		cfg = &c
	}

	if ctx.IsSet(forkURLFlag.Name) {
		cfg.Fork.URL = ctx.String(forkURLFlag.Name)
	}
	if ctx.IsSet(forkBlockFlag.Name) {
		cfg.Fork.Block = ctx.Uint64(forkBlockFlag.Name)
	}
	if ctx.IsSet(cacheFlag.Name) {
		cfg.Output.Cache = ctx.String(cacheFlag.Name)
	}
	if ctx.IsSet(snapshotFlag.Name) {
		cfg.Output.Snapshot = ctx.String(snapshotFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return cfg, nil
}

// requireFlag returns the value of a string flag that must be set.
func requireFlag(ctx *cli.Context, flag cli.StringFlag) (string, error) {
	v := ctx.String(flag.Name)
	if v == "" {
		return "", errors.Errorf("missing --%v", flag.Name)
	}
	return v, nil
}

// progressOutput is where progress bars are drawn, nil to draw none.
func progressOutput(ctx *cli.Context) io.Writer {
	if ctx.Bool(noProgressFlag.Name) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}
	return ctx.App.Writer
}
