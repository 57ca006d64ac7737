// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMeters(t *testing.T) {
	r := defaultNoopRegistry()

	assert.Nil(t, r.Handler())

	// none of these must panic, whatever labels are passed
	r.Counter("c").Add(1)
	r.CounterVec("cv", []string{"kind"}).AddWithLabel(1, map[string]string{"unknown": "x"})
	r.Gauge("g").Set(3)
	r.GaugeVec("gv", nil).SetWithLabel(2, nil)
	r.Histogram("h", nil).Observe(10)
	r.HistogramVec("hv", []string{"kind"}, BucketFetchMs).ObserveWithLabels(5, map[string]string{"kind": "a"})

	assert.Same(t, noop, r.Counter("other"))
}
