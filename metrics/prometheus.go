// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vechain/evmsim/log"
)

const namespace = "evmsim"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics installs the prometheus backend. Calling it
// more than once keeps the first instance.
func InitializePrometheusMetrics() {
	if !Enabled() {
		registry = &promRegistry{}
	}
}

type promRegistry struct {
	meters sync.Map // name -> meter
}

// loadOrCreate returns the meter stored under key, building and registering
// it on first use.
func loadOrCreate[T any](r *promRegistry, key string, build func() (prometheus.Collector, T)) T {
	if m, ok := r.meters.Load(key); ok {
		return m.(T)
	}
	collector, meter := build()
	if err := prometheus.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			logger.Warn("unable to register metric", "name", key, "err", err)
		}
	}
	actual, _ := r.meters.LoadOrStore(key, meter)
	return actual.(T)
}

func floatBuckets(buckets []int64) []float64 {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, float64(b))
	}
	return out
}

func (r *promRegistry) Handler() http.Handler { return promhttp.Handler() }

func (r *promRegistry) Counter(name string) CountMeter {
	return loadOrCreate(r, "counter/"+name, func() (prometheus.Collector, CountMeter) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, &promCounter{c}
	})
}

func (r *promRegistry) CounterVec(name string, labels []string) CountVecMeter {
	return loadOrCreate(r, "countervec/"+name, func() (prometheus.Collector, CountVecMeter) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, &promCounterVec{c}
	})
}

func (r *promRegistry) Gauge(name string) GaugeMeter {
	return loadOrCreate(r, "gauge/"+name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, &promGauge{g}
	})
}

func (r *promRegistry) GaugeVec(name string, labels []string) GaugeVecMeter {
	return loadOrCreate(r, "gaugevec/"+name, func() (prometheus.Collector, GaugeVecMeter) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		return g, &promGaugeVec{g}
	})
}

func (r *promRegistry) Histogram(name string, buckets []int64) HistogramMeter {
	return loadOrCreate(r, "histogram/"+name, func() (prometheus.Collector, HistogramMeter) {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		})
		return h, &promHistogram{h}
	})
}

func (r *promRegistry) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return loadOrCreate(r, "histogramvec/"+name, func() (prometheus.Collector, HistogramVecMeter) {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		}, labels)
		return h, &promHistogramVec{h}
	})
}

type promCounter struct{ c prometheus.Counter }

func (m *promCounter) Add(i int64) { m.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (m *promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	m.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (m *promGauge) Add(i int64) { m.g.Add(float64(i)) }
func (m *promGauge) Set(i int64) { m.g.Set(float64(i)) }

type promGaugeVec struct{ g *prometheus.GaugeVec }

func (m *promGaugeVec) AddWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Add(float64(i))
}

func (m *promGaugeVec) SetWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Set(float64(i))
}

type promHistogram struct{ h prometheus.Histogram }

func (m *promHistogram) Observe(i int64) { m.h.Observe(float64(i)) }

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (m *promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	m.h.With(labels).Observe(float64(i))
}
