// Package metrics provides Prometheus collectors for the generation server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

const defaultNamespace = "folio"

type Manager struct {
	namespace string
	registry  *prometheus.Registry

	generations *prometheus.CounterVec
	fallbacks   prometheus.Counter
	duration    prometheus.Histogram
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers collectors on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "generations_total",
		Help:      "Portfolio generation requests by outcome.",
	}, []string{"outcome"})
	m.fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "categorization_fallbacks_total",
		Help:      "Generations whose categorization degraded to the catch-all bucket.",
	})
	m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "generation_duration_seconds",
		Help:      "Wall time of successful generations.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	m.registry.MustRegister(m.generations, m.fallbacks, m.duration)
	return m
}

// ObserveGeneration records one finished request.
func (m *Manager) ObserveGeneration(outcome string, fallback bool, elapsed time.Duration) {
	m.generations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSuccess {
		return
	}
	if fallback {
		m.fallbacks.Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
