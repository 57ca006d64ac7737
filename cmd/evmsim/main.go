// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/log"
)

var (
	version   = "0.1.0"
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "evmsim"
	app.Usage = "Deterministic EVM ledger state simulation tooling"
	app.Flags = []cli.Flag{
		verbosityFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:   "warm",
			Usage:  "fetch the accounts and slots listed in a run configuration and save the request cache",
			Flags:  []cli.Flag{configFlag, forkURLFlag, forkBlockFlag, cacheFlag, snapshotFlag, noProgressFlag},
			Action: withMetrics(warmAction),
		},
		{
			Name:   "run",
			Usage:  "drive the configured agents through simulated blocks and save the final snapshot",
			Flags:  []cli.Flag{configFlag, fromFlag, forkURLFlag, forkBlockFlag, cacheFlag, snapshotFlag, outFlag, noProgressFlag},
			Action: withMetrics(runAction),
		},
		{
			Name:   "replay",
			Usage:  "rebuild a local database from a request cache and save it as a snapshot",
			Flags:  []cli.Flag{cacheFlag, outFlag},
			Action: withMetrics(replayAction),
		},
		{
			Name:   "inspect",
			Usage:  "print the content of a snapshot or a request cache",
			Flags:  []cli.Flag{snapshotFlag, cacheFlag},
			Action: withMetrics(inspectAction),
		},
	}
	app.Before = func(ctx *cli.Context) error {
		initLogger(ctx)
		return nil
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
