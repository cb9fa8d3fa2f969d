// Package metrics exposes prometheus metrics of searches, verdict caches and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "watersort"

var (
	// searchesTotal counts finished searches by outcome
	// ("solved", "unsolvable", "exhausted", "invalid", "canceled").
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Total searches by outcome",
		},
		[]string{"outcome"},
	)

	searchNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "nodes",
			Help:      "Nodes visited per search",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 10),
		},
	)

	searchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// verdictCacheTotal counts verdict cache lookups ("hit", "miss", "error").
	verdictCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verdict_cache",
			Name:      "total",
			Help:      "Verdict cache lookups by result",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// ObserveSearch records a finished search.
func ObserveSearch(outcome string, nodes int, d time.Duration) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchNodes.Observe(float64(nodes))
	searchDurationSeconds.Observe(d.Seconds())
}

// ObserveCache records a verdict cache lookup.
func ObserveCache(result string) { verdictCacheTotal.WithLabelValues(result).Inc() }

// ObserveRequest records a served HTTP request.
func ObserveRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
