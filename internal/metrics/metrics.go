// Package metrics exposes Prometheus collectors for the HTTP layer and for
// link issuance and redirects.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sundayezeilo/shortlink/internal/httpx"
)

const unmatchedRoute = "unmatched"

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	linksCreated *prometheus.CounterVec
	redirects    *prometheus.CounterVec
}

// New registers every collector on a fresh registry. service and version are
// reported through the build_info gauge.
func New(service, version string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests processed, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		linksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Short links issued, by code kind (generated or custom).",
		}, []string{"kind"}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_redirects_total",
			Help: "Redirect lookups, by outcome (redirected or not_found).",
		}, []string{"outcome"}),
	}

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "build_info",
		Help:        "Constant 1, labelled with the running service and version.",
		ConstLabels: prometheus.Labels{"service": service, "version": version},
	})
	buildInfo.Set(1)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
		m.requests,
		m.duration,
		m.linksCreated,
		m.redirects,
	)

	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency. Routes are labelled with the
// chi pattern (e.g. "/links/{code}") so codes never become label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := httpx.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// LinkCreated implements links.Observer.
func (m *Metrics) LinkCreated(custom bool) {
	kind := "generated"
	if custom {
		kind = "custom"
	}
	m.linksCreated.WithLabelValues(kind).Inc()
}

// LinkResolved implements links.Observer.
func (m *Metrics) LinkResolved(found bool) {
	outcome := "not_found"
	if found {
		outcome = "redirected"
	}
	m.redirects.WithLabelValues(outcome).Inc()
}
