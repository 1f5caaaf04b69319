package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DetailCacheHits tracks detail lookups served from memory
	DetailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeapi_detail_cache_hits_total",
			Help: "Total number of detail cache hits",
		},
	)

	// DetailCacheMisses tracks detail lookups not found in memory
	DetailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeapi_detail_cache_misses_total",
			Help: "Total number of detail cache misses",
		},
	)

	// DetailCacheRecords tracks the number of distinct cached records
	DetailCacheRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeapi_detail_cache_records",
			Help: "Number of distinct Pokémon records in the detail cache",
		},
	)

	// ResponseCacheHits tracks Redis hits by freshness
	ResponseCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeapi_response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"state"}, // "fresh", "stale"
	)

	// ResponseCacheMisses tracks Redis misses
	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeapi_response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// NotModifiedResponses tracks 304 Not Modified responses
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeapi_304_responses_total",
			Help: "Total number of 304 Not Modified responses",
		},
	)

	// ResponseCacheErrors tracks cache operation errors
	ResponseCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeapi_response_cache_errors_total",
			Help: "Total number of response cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
