// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"status"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_recommendation_duration_seconds",
			Help:    "Duration of a full recommendation request in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PropertiesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_properties_scored_total",
			Help: "Total number of candidate properties scored",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_cache_hits_total",
			Help: "Recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_cache_misses_total",
			Help: "Recommendation cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_cache_evictions_total",
			Help: "Entries evicted from the recommendation cache",
		},
	)

	IndexRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_spatial_index_rebuilds_total",
			Help: "Spatial index rebuilds triggered by service refreshes",
		},
	)

	IndexedServices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_spatial_index_services",
			Help: "Services currently held by the published spatial index",
		},
	)
)
