// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mibolsillo"

// Metrics groups every collector the web client records into.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	APIRequests         *prometheus.CounterVec
	APIDuration         *prometheus.HistogramVec
	AuthRedirects       *prometheus.CounterVec
	RateLimited         prometheus.Counter
	SuspiciousRequests  prometheus.Counter
	JWKSRefreshes       *prometheus.CounterVec
	ActiveRateLimitKeys prometheus.Gauge
}

// New registers all collectors on a fresh registry. Each call is independent,
// so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Browser requests by route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Browser request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Calls to the remote API by endpoint and status code.",
		}, []string{"method", "endpoint", "status"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Remote API latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		AuthRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "login_redirects_total",
			Help:      "Redirects to the login page by cause.",
		}, []string{"cause"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		SuspiciousRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "suspicious_requests_total",
			Help:      "Requests flagged by the security detector.",
		}),
		JWKSRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "jwks_refreshes_total",
			Help:      "JWKS fetches by outcome.",
		}, []string{"outcome"}),
		ActiveRateLimitKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_clients",
			Help:      "Clients currently tracked by the rate limiter.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.APIRequests, m.APIDuration,
		m.AuthRedirects, m.RateLimited, m.SuspiciousRequests,
		m.JWKSRefreshes, m.ActiveRateLimitKeys,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one browser request. route is the matched route
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveAPI records one remote API call; status 0 means a transport failure.
func (m *Metrics) ObserveAPI(method, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.APIDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// LoginRedirect counts a redirect to /login.
func (m *Metrics) LoginRedirect(cause string) {
	if m == nil {
		return
	}
	m.AuthRedirects.WithLabelValues(cause).Inc()
}

// JWKSRefresh counts a key set fetch.
func (m *Metrics) JWKSRefresh(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.JWKSRefreshes.WithLabelValues(outcome).Inc()
}

// RateLimitHit counts a rejected request.
func (m *Metrics) RateLimitHit() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// Suspicious counts a request flagged by the detector.
func (m *Metrics) Suspicious() {
	if m == nil {
		return
	}
	m.SuspiciousRequests.Inc()
}
