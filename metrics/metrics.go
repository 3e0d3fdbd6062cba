// Package metrics exposes provisioning run counters on a dedicated
// Prometheus endpoint, separate from the API listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves a private registry on /metrics.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server

	runsTotal    *prometheus.CounterVec
	entriesTotal *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

// New creates a metrics server bound to listenAddr. All metrics live under
// the given namespace.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &MetricsServer{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provisioning",
				Name:      "runs_total",
				Help:      "Total number of provisioning runs by result",
			},
			[]string{"result"},
		),
		entriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provisioning",
				Name:      "entries_total",
				Help:      "Total number of report entries by resource kind and status",
			},
			[]string{"kind", "status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provisioning",
				Name:      "run_duration_seconds",
				Help:      "Duration of provisioning runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
	}
	registry.MustRegister(m.runsTotal, m.entriesTotal, m.runDuration)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.srv = &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return m, nil
}

// RecordRun counts one completed run and its duration.
func (m *MetricsServer) RecordRun(succeeded bool, duration time.Duration) {
	result := "success"
	if !succeeded {
		result = "failure"
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// RecordEntry counts one report entry.
func (m *MetricsServer) RecordEntry(kind, status string) {
	m.entriesTotal.WithLabelValues(kind, status).Inc()
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
