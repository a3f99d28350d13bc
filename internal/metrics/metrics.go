// Package metrics exposes Prometheus instrumentation for the acquisition
// pipeline. Collectors are registered at init and exported through Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scintgo_fetch_requests_total",
			Help: "Total HTTP requests issued to remote element-set sources.",
		},
		[]string{"method", "code"},
	)

	cacheReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scintgo_cache_reads_total",
			Help: "Cache file reads by source and result.",
		},
		[]string{"source", "result"},
	)

	cacheWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scintgo_cache_writes_total",
			Help: "Cache file overwrites by source.",
		},
		[]string{"source"},
	)

	recordsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scintgo_records_dropped_total",
			Help: "Duplicate element-set records dropped during consolidation.",
		},
	)

	pipelineDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scintgo_pipeline_duration_seconds",
			Help:    "End-to-end acquisition pipeline duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(fetchRequestsTotal)
	prometheus.MustRegister(cacheReadsTotal)
	prometheus.MustRegister(cacheWritesTotal)
	prometheus.MustRegister(recordsDroppedTotal)
	prometheus.MustRegister(pipelineDurationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one remote request and its response code.
func ObserveFetch(method string, code int) {
	fetchRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// ObserveCacheRead records one cache read attempt.
func ObserveCacheRead(source string, hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	cacheReadsTotal.WithLabelValues(source, result).Inc()
}

// ObserveCacheWrite records one successful cache overwrite.
func ObserveCacheWrite(source string) {
	cacheWritesTotal.WithLabelValues(source).Inc()
}

// AddRecordsDropped adds n to the consolidation drop counter.
func AddRecordsDropped(n int) {
	if n > 0 {
		recordsDroppedTotal.Add(float64(n))
	}
}

// ObservePipelineDuration records one pipeline invocation's wall time.
func ObservePipelineDuration(d time.Duration) {
	pipelineDurationSeconds.Observe(d.Seconds())
}
