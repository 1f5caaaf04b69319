// Package metrics exposes the Prometheus gatherer used by pokedex and the
// HTTP instrumentation for the serve command. Client, cache and batch
// metrics are registered via promauto in their own packages.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer is the gatherer served on /metrics.
var Gatherer = prometheus.DefaultGatherer

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_http_requests_total",
			Help: "HTTP requests served by route and status",
		},
		[]string{"route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokedex_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and duration per chi route pattern.
// Requests that match no route are labelled "unmatched".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Available metrics:
//
// HTTP (pkg/metrics):
//   - pokedex_http_requests_total{route, status} (Counter)
//   - pokedex_http_request_duration_seconds{route} (Histogram)
//
// Requests (pkg/client):
//   - pokeapi_requests_total{endpoint, status} (Counter)
//   - pokeapi_request_duration_seconds{endpoint} (Histogram)
//   - pokeapi_errors_total{class} (Counter): client, server, network, decode
//
// Caches (pkg/cache):
//   - pokeapi_detail_cache_hits_total, pokeapi_detail_cache_misses_total (Counter)
//   - pokeapi_detail_cache_records (Gauge)
//   - pokeapi_response_cache_hits_total{state} (Counter): fresh, stale
//   - pokeapi_response_cache_misses_total (Counter)
//   - pokeapi_304_responses_total (Counter)
//   - pokeapi_response_cache_errors_total{operation} (Counter)
//
// Batches (pkg/pagination):
//   - pokeapi_batch_fetches_in_flight (Gauge): detail fetches held by batch workers
//   - pokeapi_batch_fetch_failures_total (Counter)
//   - pokeapi_batch_duration_seconds (Histogram)
//
// Example queries:
//
//	# Detail cache hit rate
//	sum(rate(pokeapi_detail_cache_hits_total[5m])) /
//	(sum(rate(pokeapi_detail_cache_hits_total[5m])) + sum(rate(pokeapi_detail_cache_misses_total[5m])))
//
//	# P95 upstream latency
//	histogram_quantile(0.95, rate(pokeapi_request_duration_seconds_bucket[5m]))
