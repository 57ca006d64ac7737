// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/log"
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML run configuration",
	}
	forkURLFlag = cli.StringFlag{
		Name:  "fork-url",
		Usage: "JSON-RPC endpoint to fork from, overrides the configuration",
	}
	forkBlockFlag = cli.Uint64Flag{
		Name:  "fork-block",
		Usage: "block to fork at, overrides the configuration (0 is the latest block)",
	}
	cacheFlag = cli.StringFlag{
		Name:  "cache",
		Usage: "path to a request cache file",
	}
	snapshotFlag = cli.StringFlag{
		Name:  "snapshot",
		Usage: "path to a snapshot file",
	}
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "snapshot to start the simulation from",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "path of the file to write",
	}
	noProgressFlag = cli.BoolFlag{
		Name:  "no-progress",
		Usage: "do not draw progress bars",
	}
)
