// Package metrics exposes Prometheus instrumentation for the recommendation
// pipeline and the catalog sources feeding it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes
const (
	OutcomeServed       = "served"
	OutcomeEmpty        = "empty"
	OutcomeMissingQuery = "missing_query"
	OutcomeCatalogError = "catalog_error"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Time spent interpreting, loading the catalog and ranking",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of products returned per recommendation",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Catalog snapshot loads by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	CatalogMalformedEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_malformed_entries_total",
			Help: "Catalog records skipped because a required field was missing or invalid",
		},
		[]string{"source"},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Catalog snapshot cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Catalog snapshot cache misses",
		},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_requests_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)
)

// RecordRecommendation records the outcome, latency and result size of one request
func RecordRecommendation(outcome string, duration time.Duration, results int) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if outcome == OutcomeServed || outcome == OutcomeEmpty {
		RecommendResults.Observe(float64(results))
	}
}

// RecordCatalogLoad records a catalog load attempt
func RecordCatalogLoad(source string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CatalogLoads.WithLabelValues(source, outcome).Inc()
}
