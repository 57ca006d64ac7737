// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noopRegistry struct{}

func defaultNoopRegistry() Registry { return noopRegistry{} }

func (noopRegistry) Counter(string) CountMeter                 { return noop }
func (noopRegistry) CounterVec(string, []string) CountVecMeter { return noop }
func (noopRegistry) Gauge(string) GaugeMeter                   { return noop }
func (noopRegistry) GaugeVec(string, []string) GaugeVecMeter   { return noop }
func (noopRegistry) Histogram(string, []int64) HistogramMeter  { return noop }
func (noopRegistry) Handler() http.Handler                     { return nil }
func (noopRegistry) HistogramVec(string, []string, []int64) HistogramVecMeter {
	return noop
}

var noop = &noopMeter{}

// noopMeter satisfies every meter interface.
type noopMeter struct{}

func (*noopMeter) Add(int64)                                  {}
func (*noopMeter) Set(int64)                                  {}
func (*noopMeter) Observe(int64)                              {}
func (*noopMeter) AddWithLabel(int64, map[string]string)      {}
func (*noopMeter) SetWithLabel(int64, map[string]string)      {}
func (*noopMeter) ObserveWithLabels(int64, map[string]string) {}
