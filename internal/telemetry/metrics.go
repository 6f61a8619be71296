// Package telemetry exports a single engine's observable state over
// Prometheus: the C1 statistics counters (via cache.Stats, which is
// itself a prometheus.Collector), a live entry-count gauge, and HTTP
// request instrumentation for the cmd/server front end.
//
// A dedicated registry (not prometheus.DefaultRegisterer) is used
// deliberately: embedding this library, or importing this package from
// another program, must never pollute a host process's default
// registry.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ryandielhenn/lrucache/pkg/cache"
)

// Metrics bundles a registry with the HTTP-request instrumentation a
// front end needs; the cache's own C1 counters are added to it via
// RegisterCache rather than living here as package-level state, so a
// process that runs more than one cache instance isn't forced to share
// one global collector set.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
}

// New builds a Metrics with its own registry and HTTP-latency
// instrumentation already registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lrucache",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled by the cache front end.",
			},
			[]string{"op", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lrucache",
				Name:      "request_duration_seconds",
				Help:      "Latency of HTTP requests handled by the cache front end.",
				// 1ms .. ~4s.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 13),
			},
			[]string{"op"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lrucache",
				Name:      "in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.inFlight)
	return m
}

// RegisterCache adds a Cache's observable state to the registry: its C1
// statistics (hits, misses, evictions, ... plus the derived rates,
// collected directly off the live counters since cache.Stats implements
// prometheus.Collector) and a gauge tracking its current entry count,
// sampled on every scrape via size rather than pushed on every Put.
func (m *Metrics) RegisterCache(stats *cache.Stats, size func() int) error {
	if err := m.registry.Register(stats); err != nil {
		return err
	}
	entries := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "lrucache",
			Name:      "entries",
			Help:      "Current number of live entries in the cache.",
		},
		func() float64 { return float64(size()) },
	)
	return m.registry.Register(entries)
}

// Handler exposes /metrics. Mount it with mux.Handle("/metrics", m.Handler()).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record request count, latency,
// and in-flight gauge under the provided "op" label.
func (m *Metrics) Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		m.inFlight.WithLabelValues(op).Inc()
		defer m.inFlight.WithLabelValues(op).Dec()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		m.requestsTotal.WithLabelValues(op, class).Inc()
		m.requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
