package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bebsworthy/devbench/internal/bench"
)

// Metrics holds the gauges exported for a run
type Metrics struct {
	registry  *prometheus.Registry
	bootstrap *prometheus.GaugeVec
	reload    *prometheus.GaugeVec
	failures  *prometheus.GaugeVec
}

// NewMetrics creates the gauges on a private registry
func NewMetrics() *Metrics {
	labels := []string{"flake", "shell"}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bootstrap: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "devbench",
			Name:      "bootstrap_seconds",
			Help:      "Elapsed seconds of one cold dev shell activation.",
		}, labels),
		reload: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "devbench",
			Name:      "reload_seconds",
			Help:      "Cumulative elapsed seconds of the repeated dev shell activations.",
		}, labels),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "devbench",
			Name:      "invocation_failures",
			Help:      "Measured invocations that did not exit cleanly.",
		}, labels),
	}
	m.registry.MustRegister(m.bootstrap, m.reload, m.failures)
	return m
}

// Observe records every result of the run
func (m *Metrics) Observe(run *bench.Run) {
	for _, set := range run.Sets {
		for _, e := range set.Entries {
			m.bootstrap.WithLabelValues(set.Flake, e.Shell).Set(e.Record.Bootstrap)
			m.reload.WithLabelValues(set.Flake, e.Shell).Set(e.Record.Reload)
			m.failures.WithLabelValues(set.Flake, e.Shell).Set(float64(e.Record.Failures))
		}
	}
}

// Gatherer exposes the registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, for node_exporter's textfile collector
func (m *Metrics) WriteTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
