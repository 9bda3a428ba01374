// Package telemetry holds the Prometheus metrics and OpenTelemetry spans
// recorded by the model server.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gibbs"

// Metrics counts model builds and database reloads on a private registry.
type Metrics struct {
	modelsBuilt   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	reloads       *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		modelsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "models_built_total",
				Help:      "Model construction requests by phase and result",
			},
			[]string{"phase", "result"},
		),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_build_duration_seconds",
				Help:      "Time spent building one model",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"phase"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "database_reloads_total",
				Help:      "Database reloads triggered by file changes",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.modelsBuilt, m.buildDuration, m.reloads)
	return m
}

// RecordBuild counts one model build. result is "ok" or an error class.
func (m *Metrics) RecordBuild(phase, result string, d time.Duration) {
	m.modelsBuilt.WithLabelValues(phase, result).Inc()
	if result == "ok" {
		m.buildDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
}

func (m *Metrics) RecordReload(ok bool) {
	if ok {
		m.reloads.WithLabelValues("ok").Inc()
		return
	}
	m.reloads.WithLabelValues("error").Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
