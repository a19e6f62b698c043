// Package metrics exposes the engine's Prometheus metrics (orchestrator
// counters, per-case pipeline latency, worker pool occupancy) and an
// optional /metrics HTTP endpoint, grounded in semaj90-mau5law's
// cmd/metrics-server/main.go (promhttp.Handler on a dedicated mux).
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CasesAttempted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_cases_attempted_total", Help: "Cases the orchestrator dispatched to a worker.",
	})
	CasesSucceeded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_cases_succeeded_total", Help: "Cases committed successfully.",
	})
	CasesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_cases_failed_total", Help: "Cases that failed extraction, assembly, or insert.",
	})
	CasesSkippedNoMetadata = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_cases_skipped_no_metadata_total", Help: "PDFs with no matching metadata-sheet row.",
	})
	WorkersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_workers_active", Help: "Workers currently processing a case.",
	})
	CaseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "ingest_case_duration_seconds", Help: "Wall-clock time for one case's full pipeline.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s .. ~34min
	})
	LLMCallDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "ingest_llm_call_duration_seconds", Help: "LLM extraction round-trip latency.",
		Buckets: prometheus.DefBuckets,
	})
	EmbeddingCallDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "ingest_embedding_call_duration_seconds", Help: "Embedding service round-trip latency.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		CasesAttempted, CasesSucceeded, CasesFailed, CasesSkippedNoMetadata,
		WorkersActive, CaseDuration, LLMCallDuration, EmbeddingCallDuration,
	)
}

// Serve starts the /metrics and /healthz HTTP endpoint in the background
// and returns the *http.Server so the caller can shut it down on exit.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.ListenAndServe() //nolint:errcheck // shutdown via srv.Shutdown logs its own error

	return srv
}

// ObserveDuration is a small helper for the orchestrator's per-case timing:
// `defer metrics.ObserveDuration(metrics.CaseDuration, time.Now())`.
func ObserveDuration(h prometheus.Histogram, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Shutdown gracefully stops the metrics server, if one is running.
func Shutdown(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
