// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes process wide meters. Until InitializePrometheusMetrics
// is called every meter is a no-op, so packages can define and use them freely.
package metrics

import (
	"net/http"
	"sync"
)

// registry is swapped once from noop to prometheus, never back.
var registry = defaultNoopRegistry()

// Registry creates or returns meters by name.
type Registry interface {
	Counter(name string) CountMeter
	CounterVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	GaugeVec(name string, labels []string) GaugeVecMeter
	Histogram(name string, buckets []int64) HistogramMeter
	HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

// HTTPHandler returns the handler serving the collected metrics, nil when disabled.
func HTTPHandler() http.Handler {
	return registry.Handler()
}

// Enabled reports whether a real metrics backend is installed.
func Enabled() bool {
	_, ok := registry.(*promRegistry)
	return ok
}

// Buckets in milliseconds.
var (
	BucketFetchMs = []int64{0, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10_000}
	BucketStepMs  = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 5000}
)

// HistogramMeter aggregates observations into buckets.
type HistogramMeter interface {
	Observe(int64)
}

// HistogramVecMeter is a HistogramMeter partitioned by labels.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

// CountMeter only increases.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a CountMeter partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// GaugeVecMeter is a GaugeMeter partitioned by labels.
type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

func Counter(name string) CountMeter { return registry.Counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return registry.CounterVec(name, labels)
}

func Gauge(name string) GaugeMeter { return registry.Gauge(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return registry.GaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return registry.Histogram(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return registry.HistogramVec(name, labels, buckets)
}

// LazyLoad defers creating a meter until its first use, which lets package
// level meter variables pick up the backend chosen later in main.
func LazyLoad[T any](f func() T) func() T {
	var (
		once   sync.Once
		result T
	)
	return func() T {
		once.Do(func() { result = f() })
		return result
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
