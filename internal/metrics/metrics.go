// Package metrics exposes tled's Prometheus instrumentation: HTTP request
// counts and latencies, parse outcomes, and catalog refresh results.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several daemons (or tests) can live in
// one process without colliding on the default registerer.
type Metrics struct {
	reg *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpDurationSeconds *prometheus.HistogramVec
	parsesTotal         *prometheus.CounterVec
	refreshesTotal      *prometheus.CounterVec
	catalogEntries      prometheus.Gauge
	catalogRejected     prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tled_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "code"},
		),
		httpDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tled_http_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tled_parses_total",
				Help: "Element sets parsed through the API, by result kind.",
			},
			[]string{"result"},
		),
		refreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tled_catalog_refreshes_total",
				Help: "Catalog loads, by source (network, cache, stale_cache, embedded) or error.",
			},
			[]string{"source"},
		),
		catalogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tled_catalog_entries",
			Help: "Element sets in the current catalog snapshot.",
		}),
		catalogRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tled_catalog_rejected",
			Help: "Element sets rejected by the last catalog load.",
		}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDurationSeconds,
		m.parsesTotal,
		m.refreshesTotal,
		m.catalogEntries,
		m.catalogRejected,
	)
	return m
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveParse counts one parse outcome. An empty kind means success.
func (m *Metrics) ObserveParse(kind string) {
	if kind == "" {
		kind = "ok"
	}
	m.parsesTotal.WithLabelValues(kind).Inc()
}

// ObserveRefresh records a successful catalog load.
func (m *Metrics) ObserveRefresh(source string, accepted, rejected int) {
	m.refreshesTotal.WithLabelValues(source).Inc()
	m.catalogEntries.Set(float64(accepted))
	m.catalogRejected.Set(float64(rejected))
}

// ObserveRefreshError records a failed catalog load. The gauges keep the
// values of the snapshot still being served.
func (m *Metrics) ObserveRefreshError() {
	m.refreshesTotal.WithLabelValues("error").Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(rw.ResponseWriter).Hijack()
}

func (rw *responseWriter) Flush() {
	_ = http.NewResponseController(rw.ResponseWriter).Flush()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := normalizeRoute(r.URL.Path)
		m.httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		m.httpDurationSeconds.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

var knownRoutes = map[string]bool{
	"/healthz":             true,
	"/metrics":             true,
	"/ws":                  true,
	"/api/status":          true,
	"/api/version":         true,
	"/api/config":          true,
	"/api/config/profiles": true,
	"/api/logs":            true,
	"/api/parse":           true,
	"/api/catalog":         true,
	"/api/catalog/info":    true,
	"/api/catalog/refresh": true,
	"/api/pause":           true,
	"/api/resume":          true,
}

// normalizeRoute maps a request path to a bounded label set. Catalog lookups
// collapse to one label; anything unknown becomes "other".
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if id, ok := strings.CutPrefix(path, "/api/catalog/"); ok && id != "" && !strings.Contains(id, "/") {
		return "/api/catalog/{id}"
	}
	return "other"
}
