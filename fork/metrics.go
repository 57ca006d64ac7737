// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fork

import "github.com/vechain/evmsim/metrics"

const (
	kindBalance = "balance"
	kindNonce   = "nonce"
	kindCode    = "code"
	kindStorage = "storage"
	kindBlock   = "block"
)

var (
	metricFetchCount    = metrics.LazyLoadCounterVec("fork_fetch_count", []string{"kind", "result"})
	metricFetchDuration = metrics.LazyLoadHistogramVec("fork_fetch_duration_ms", []string{"kind"}, metrics.BucketFetchMs)
)
