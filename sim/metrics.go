// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import "github.com/vechain/evmsim/metrics"

var (
	metricTxCount      = metrics.LazyLoadCounterVec("sim_tx_count", []string{"status"})
	metricStepDuration = metrics.LazyLoadHistogram("sim_step_duration_ms", metrics.BucketStepMs)
	metricBlockNumber  = metrics.LazyLoadGauge("sim_block_number")
)
