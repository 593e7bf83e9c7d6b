// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	pollCycles      *prometheus.CounterVec
	downloadedBytes prometheus.Counter
	bundlesWritten  prometheus.Counter
	aoisProcessed   *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector registered
// against reg. Pass prometheus.DefaultRegisterer outside of tests.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "satclip"
	}

	factory := promauto.With(reg)

	return &Collector{
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of provider API requests",
			},
			[]string{"endpoint", "status"},
		),

		apiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Provider API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		pollCycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_polls_total",
				Help:      "Total number of order status polls",
			},
			[]string{"state"},
		),

		downloadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloaded_bytes_total",
				Help:      "Total bytes downloaded from order results",
			},
		),

		bundlesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bundles_written_total",
				Help:      "Total number of committed result archives",
			},
		),

		aoisProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aois_processed_total",
				Help:      "Total number of processed AOI records",
			},
			[]string{"status"},
		),
	}
}

// IncAPIRequest increments the provider request counter.
func (c *Collector) IncAPIRequest(endpoint string, success bool) {
	c.apiRequests.WithLabelValues(endpoint, statusLabel(success)).Inc()
}

// ObserveAPIDuration records provider request duration.
func (c *Collector) ObserveAPIDuration(endpoint string, duration time.Duration) {
	c.apiDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncPollCycle increments the poll counter for the observed order state.
func (c *Collector) IncPollCycle(state string) {
	c.pollCycles.WithLabelValues(state).Inc()
}

// AddDownloadedBytes accumulates downloaded result-file bytes.
func (c *Collector) AddDownloadedBytes(n int64) {
	if n > 0 {
		c.downloadedBytes.Add(float64(n))
	}
}

// IncBundlesWritten increments the committed archive counter.
func (c *Collector) IncBundlesWritten() {
	c.bundlesWritten.Inc()
}

// IncAOIProcessed increments the processed AOI counter.
func (c *Collector) IncAOIProcessed(success bool) {
	c.aoisProcessed.WithLabelValues(statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
