// Package metrics defines the Prometheus collectors for the search
// pipeline and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the backend.
type Metrics struct {
	SearchesTotal          *prometheus.CounterVec
	SearchLatency          *prometheus.HistogramVec
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	ConnectorFailuresTotal *prometheus.CounterVec
	ClustersPerSearch      prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by cache status (hit, miss).",
			},
			[]string{"cache_status"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "End-to-end search latency in seconds.",
				Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"cache_status"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "result_cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "result_cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		ConnectorFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connector_failures_total",
				Help: "Total connector failures (timeouts and errors) by platform.",
			},
			[]string{"platform"},
		),
		ClustersPerSearch: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clusters_per_search",
				Help:    "Number of product clusters produced per fresh search.",
				Buckets: []float64{0, 1, 5, 10, 20, 30, 50},
			},
		),
	}

	prometheus.MustRegister(
		m.SearchesTotal,
		m.SearchLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ConnectorFailuresTotal,
		m.ClustersPerSearch,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
