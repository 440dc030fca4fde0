// Package metrics holds the Prometheus collectors of the designer.
//
// Collectors live on their own registry so tests and several servers in
// one process do not collide on the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "designer"

// Metrics groups the designer's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	runs       *prometheus.CounterVec
	skipped    *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// New creates the collectors together with Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_runs_total",
			Help:      "Exports and imports by direction, format and result.",
		}, []string{"direction", "format", "result"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_skipped_total",
			Help:      "Entities left out of exported documents, by entity type.",
		}, []string{"entity"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_rejections_total",
			Help:      "Interactive allocations refused, by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		m.requests, m.runs, m.skipped, m.rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, status).Inc()
}

// ObserveRun counts one export or import. result is "ok" or "error".
func (m *Metrics) ObserveRun(direction, format, result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(direction, format, result).Inc()
}

// ObserveSkipped counts entities skipped during an export.
func (m *Metrics) ObserveSkipped(entity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skipped.WithLabelValues(entity).Add(float64(n))
}

// ObserveRejection counts one refused allocation.
func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}
