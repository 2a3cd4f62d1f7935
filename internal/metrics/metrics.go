// Package metrics holds the service's Prometheus collectors, registered on
// the default registry and exposed by the /metrics handler mounted in main.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIRequests counts handled API requests. The route label is curried in by
// the handler package; method and code are filled by the promhttp middleware.
var APIRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cruxlens_api_requests_total",
		Help: "API requests handled, by route, method and status code.",
	},
	[]string{"route", "method", "code"},
)

// UpstreamFetches counts CrUX fetch attempts by outcome:
// ok | invalid_url | connection_error | response_error | decode_error.
var UpstreamFetches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cruxlens_upstream_fetches_total",
		Help: "CrUX API fetch attempts, by outcome.",
	},
	[]string{"outcome"},
)

// UpstreamLatency observes the wall time of CrUX round-trips that produced
// an HTTP response (timeouts and transport failures are not observed here).
var UpstreamLatency = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "cruxlens_upstream_fetch_duration_seconds",
		Help:    "CrUX API round-trip latency in seconds.",
		Buckets: prometheus.DefBuckets,
	},
)
