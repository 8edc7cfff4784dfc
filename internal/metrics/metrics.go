// Package metrics exposes Prometheus collectors for the HTTP API and recipe
// operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the global one. Recording methods are no-ops on
// a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestCount     *prometheus.CounterVec
	recipesGenerated *prometheus.CounterVec
	recipesCreated   prometheus.Counter
	recipesExported  prometheus.Counter
	rateLimited      prometheus.Counter
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		recipesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipes_generated_total",
				Help: "Recipes generated, by dog size",
			},
			[]string{"dog_size"},
		),
		recipesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Recipes persisted to the store",
		}),
		recipesExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_exported_total",
			Help: "Recipes exported to object storage",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestCount,
		m.recipesGenerated,
		m.recipesCreated,
		m.recipesExported,
		m.rateLimited,
	)
	return m
}

// RecordRequest records request metrics. path should be the route template,
// not the raw URL, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, statusStr).Inc()
}

func (m *Metrics) RecipeGenerated(dogSize string) {
	if m == nil {
		return
	}
	m.recipesGenerated.WithLabelValues(dogSize).Inc()
}

func (m *Metrics) RecipeCreated() {
	if m == nil {
		return
	}
	m.recipesCreated.Inc()
}

func (m *Metrics) RecipeExported() {
	if m == nil {
		return
	}
	m.recipesExported.Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
