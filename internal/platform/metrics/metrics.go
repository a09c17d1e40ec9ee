// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todo"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics owns a registry and the application counters registered on it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	auth     *prometheus.CounterVec
	todos    *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the application counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_operations_total",
			Help:      "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		todos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todo_operations_total",
			Help:      "Todo operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.auth,
		m.todos,
	)
	return m
}

// Auth records one auth operation.
func (m *Metrics) Auth(operation, outcome string) {
	if m == nil {
		return
	}
	m.auth.WithLabelValues(operation, outcome).Inc()
}

// Todo records one todo operation.
func (m *Metrics) Todo(operation, outcome string) {
	if m == nil {
		return
	}
	m.todos.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
