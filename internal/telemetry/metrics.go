// Package telemetry exposes Prometheus metrics for the analysis pipeline.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds the pipeline counters. A nil *Metrics is a valid no-op
// receiver so the core can run unobserved.
type Metrics struct {
	registry *prometheus.Registry

	Simulations    prometheus.Counter
	Intersections  *prometheus.CounterVec
	RecordsFailed  prometheus.Counter
	ActiveRuns     prometheus.Gauge
	RecordDuration prometheus.Histogram
}

// NewMetrics builds and registers the pipeline metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asfrava_simulations_total",
			Help: "Total single-period simulator invocations",
		}),
		Intersections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asfrava_intersections_total",
			Help: "Intersection outcomes per (record, scale) step",
		}, []string{"status"}),
		RecordsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asfrava_records_failed_total",
			Help: "Ground-motion records dropped after a simulation error",
		}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asfrava_active_runs",
			Help: "Analysis sweeps currently in flight",
		}),
		RecordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asfrava_record_duration_seconds",
			Help:    "Wall time spent per ground-motion record",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
	m.registry.MustRegister(
		m.Simulations, m.Intersections, m.RecordsFailed, m.ActiveRuns, m.RecordDuration,
	)
	return m
}

// SimulationDone counts one simulator call.
func (m *Metrics) SimulationDone() {
	if m != nil {
		m.Simulations.Inc()
	}
}

// IntersectionOutcome counts one (record, scale) step by status label.
func (m *Metrics) IntersectionOutcome(status string) {
	if m != nil {
		m.Intersections.WithLabelValues(status).Inc()
	}
}

// RecordFailed counts one dropped record.
func (m *Metrics) RecordFailed() {
	if m != nil {
		m.RecordsFailed.Inc()
	}
}

// RunStarted marks a sweep in flight; the returned func ends it.
func (m *Metrics) RunStarted() func() {
	if m == nil {
		return func() {}
	}
	m.ActiveRuns.Inc()
	return m.ActiveRuns.Dec
}

// ObserveRecord records the wall time spent on one ground-motion record.
func (m *Metrics) ObserveRecord(d time.Duration) {
	if m != nil {
		m.RecordDuration.Observe(d.Seconds())
	}
}

// Serve exposes the registry on /metrics until ctx is done. Errors other than
// server shutdown are logged, not fatal: metrics are best-effort.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	if m == nil || addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}
