// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsPrefix = "pharmasage_research_"

// Metrics records research activity. A nil *Metrics records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	cache       *prometheus.CounterVec
	strategies  *prometheus.CounterVec
	skippedRows prometheus.Counter
	buyers      prometheus.Histogram
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the research collectors and registers them with
// registerer, or with the default registerer when it is nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "requests_total",
			Help: "Deep research requests by backend and outcome.",
		}, []string{"backend", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "cache_access_total",
			Help: "Research response cache lookups.",
		}, []string{"result"}),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "extraction_strategy_total",
			Help: "Composed results by buyer extraction strategy.",
		}, []string{"strategy"}),
		skippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "skipped_table_rows_total",
			Help: "Table rows dropped because their cell count did not match the header.",
		}),
		buyers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricsPrefix + "discovered_buyers",
			Help:    "Buyers discovered per composed result.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricsPrefix + "backend_duration_seconds",
			Help:    "Latency of deep research backend calls.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"backend"}),
	}

	collectors := []prometheus.Collector{m.requests, m.cache, m.strategies, m.skippedRows, m.buyers, m.duration}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("registering research metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) request(backend, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(backend, outcome).Inc()
}

func (m *Metrics) cacheAccess(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

func (m *Metrics) backendCall(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) composed(r Report) {
	if m == nil {
		return
	}
	m.strategies.WithLabelValues(string(r.Strategy)).Inc()
	m.skippedRows.Add(float64(r.SkippedRows))
	m.buyers.Observe(float64(r.Buyers))
}
