package todo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "todo"

// Metrics counts task mutations on a private registry, so several handlers
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	created  prometheus.Counter
	updated  prometheus.Counter
	deleted  prometheus.Counter
}

// NewMetrics registers the counters on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		created: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tasks_created_total",
			Help:      "Count of tasks created",
		}),
		updated: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tasks_updated_total",
			Help:      "Count of tasks updated",
		}),
		deleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tasks_deleted_total",
			Help:      "Count of tasks deleted",
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
