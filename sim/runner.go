// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
)

// RunOptions tune Run.
type RunOptions struct {
	// Progress draws a progress bar on Output, stderr when nil.
	Progress bool
	Output   io.Writer
}

// Run advances env by steps blocks. Each step collects the transactions of
// every set in order, processes the block, then lets every set record.
// Agents draw from a generator seeded with seed, independent of the
// generators env uses to order blocks.
func Run(env *Env, sets []AgentSet, seed uint64, steps uint64) error {
	return RunWithOptions(env, sets, seed, steps, RunOptions{})
}

// RunWithOptions is Run with options.
func RunWithOptions(env *Env, sets []AgentSet, seed uint64, steps uint64, opts RunOptions) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.New64(int64(steps)).SetMaxWidth(90)
		if opts.Output != nil {
			bar.Output = opts.Output
		}
		bar.Start()
		defer bar.Finish()
	}

	start := time.Now()
	for step := range steps {
		for _, set := range sets {
			env.Submit(set.Call(rng, env)...)
		}
		if err := env.ProcessBlock(); err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
		for _, set := range sets {
			set.Record(env)
		}
		if bar != nil {
			bar.Add64(1)
		}
	}
	logger.Info("simulation finished", "steps", steps, "block", env.Block().Number,
		"events", len(env.EventHistory()), "elapsed", time.Since(start))
	return nil
}
