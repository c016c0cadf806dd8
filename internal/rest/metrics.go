package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentic-research/docket/internal/registry"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docket",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served.",
		},
		[]string{"route", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docket",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		},
		[]string{"route"},
	)

	hookErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docket",
			Subsystem: "hook",
			Name:      "errors_total",
			Help:      "Total number of hook invocations that returned an error.",
		},
		[]string{"kind"},
	)

	scansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docket",
			Subsystem: "registry",
			Name:      "scans_total",
			Help:      "Total number of registry scans.",
		},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docket",
			Subsystem: "registry",
			Name:      "scan_duration_seconds",
			Help:      "Registry scan duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~2s
		},
	)

	documentsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docket",
			Subsystem: "registry",
			Name:      "documents",
			Help:      "Number of documents in the current snapshot.",
		},
	)

	skippedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docket",
			Subsystem: "registry",
			Name:      "skipped_files",
			Help:      "Number of files skipped by the last scan.",
		},
	)
)

// ObserveScan records scan statistics. Pass it as the registry's OnScan
// callback.
func ObserveScan(stats registry.ScanStats) {
	scansTotal.Inc()
	scanDuration.Observe(stats.Elapsed.Seconds())
	documentsGauge.Set(float64(stats.Documents))
	skippedGauge.Set(float64(stats.Skipped))
}
