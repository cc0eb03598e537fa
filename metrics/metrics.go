// Package metrics exposes Prometheus counters for registry operations and a
// standalone metrics listener, kept off the API listener so scraping never
// competes with traffic.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves the Prometheus scrape endpoint on its own listener.
type MetricsServer struct {
	srv        *http.Server
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// New creates a metrics server for the given namespace listening on addr.
func New(namespace, addr string) (*MetricsServer, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty metrics listen address")
	}

	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: sanitize(namespace),
		Name:      "registry_operations_total",
		Help:      "Registry operations by operation name and outcome.",
	}, []string{"operation", "outcome"})

	if err := registry.Register(operations); err != nil {
		return nil, fmt.Errorf("could not register operation counter: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		registry:   registry,
		operations: operations,
	}, nil
}

// RecordOperation counts one registry operation with its outcome, either
// "success" or the error kind.
func (m *MetricsServer) RecordOperation(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ListenAndServe runs the metrics listener until shutdown.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

// sanitize maps a package name onto a legal Prometheus namespace.
func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
