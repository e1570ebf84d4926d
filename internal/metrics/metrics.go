// Package metrics exposes Prometheus collectors for the pipeline service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	articlesTotal           *prometheus.CounterVec
	searchTermsTotal        *prometheus.CounterVec
	fetchAttemptsTotal      *prometheus.CounterVec
	cacheLookupsTotal       *prometheus.CounterVec
	activeFetchWorkers      prometheus.Gauge
	pipelineDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		articlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_articles_total",
				Help: "Total number of articles processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		searchTermsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_search_terms_total",
				Help: "Total number of search-term queries issued, labeled by status.",
			},
			[]string{"status"},
		)

		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_fetch_attempts_total",
				Help: "Total number of HTTP fetch attempts, labeled by failure class or ok.",
			},
			[]string{"class"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_cache_lookups_total",
				Help: "Total number of result cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		activeFetchWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newspulse_active_fetch_workers",
				Help: "Number of workers currently fetching an article.",
			},
		)

		pipelineDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newspulse_pipeline_duration_seconds",
				Help:    "Histogram of end-to-end pipeline run durations.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveArticle increments the article counter for the given outcome
// (full, fallback, skipped).
func ObserveArticle(outcome string) {
	articlesTotal.WithLabelValues(outcome).Inc()
}

// ObserveSearchTerm increments the per-term query counter (ok, empty, error).
func ObserveSearchTerm(status string) {
	searchTermsTotal.WithLabelValues(status).Inc()
}

// ObserveFetchAttempt increments the attempt counter for a failure class or
// "ok".
func ObserveFetchAttempt(class string) {
	fetchAttemptsTotal.WithLabelValues(class).Inc()
}

// ObserveCacheLookup increments the cache lookup counter (hit, miss).
func ObserveCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	activeFetchWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	activeFetchWorkers.Dec()
}

// ObservePipelineDuration records one end-to-end run duration.
func ObservePipelineDuration(d time.Duration) {
	pipelineDurationSeconds.Observe(d.Seconds())
}
