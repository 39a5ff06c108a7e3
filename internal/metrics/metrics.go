// Package metrics holds the Prometheus instruments of the planner. Every
// method is safe on a nil *Metrics so collaborators can run without them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripplanner"

// Metrics owns a private registry so tests and embedded servers never collide
// on the default one.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OptimizerRuns     *prometheus.CounterVec
	OptimizerDuration prometheus.Histogram
	ItineraryCost     prometheus.Histogram

	SourceFetches *prometheus.CounterVec
	SourceLatency *prometheus.HistogramVec
	BreakerState  *prometheus.GaugeVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		OptimizerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimizer_runs_total",
				Help:      "Itinerary optimizations by result",
			},
			[]string{"result"},
		),
		OptimizerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "optimizer_duration_seconds",
				Help:      "Time spent building an itinerary from candidates",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		ItineraryCost: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "itinerary_total_cost",
				Help:      "Total cost of produced itineraries",
				Buckets:   []float64{500, 1000, 2000, 3000, 5000, 7500, 10000, 20000},
			},
		),

		SourceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fetches_total",
				Help:      "Candidate fetches by source, kind and result",
			},
			[]string{"source", "kind", "result"},
		),
		SourceLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "source_fetch_duration_seconds",
				Help:      "Candidate fetch latency including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source", "kind"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "source_breaker_state",
				Help:      "Circuit breaker state per source (0 closed, 1 half-open, 2 open)",
			},
			[]string{"source"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Candidate cache hits by kind",
			},
			[]string{"kind"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Candidate cache misses by kind",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.OptimizerRuns, m.OptimizerDuration, m.ItineraryCost,
		m.SourceFetches, m.SourceLatency, m.BreakerState,
		m.CacheHits, m.CacheMisses,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the private registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveOptimization records one optimizer run. totalCost is ignored on failure.
func (m *Metrics) ObserveOptimization(err error, elapsed time.Duration, totalCost float64) {
	if m == nil {
		return
	}
	if err != nil {
		m.OptimizerRuns.WithLabelValues("error").Inc()
		return
	}
	m.OptimizerRuns.WithLabelValues("ok").Inc()
	m.OptimizerDuration.Observe(elapsed.Seconds())
	m.ItineraryCost.Observe(totalCost)
}

func (m *Metrics) ObserveFetch(source, kind, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(source, kind, result).Inc()
	m.SourceLatency.WithLabelValues(source, kind).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCache(kind string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(kind).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetBreakerState(source string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(source).Set(state)
}
