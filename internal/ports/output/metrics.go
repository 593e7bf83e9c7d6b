package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncAPIRequest counts one provider API request by endpoint.
	IncAPIRequest(endpoint string, success bool)

	// ObserveAPIDuration records provider request duration.
	ObserveAPIDuration(endpoint string, duration time.Duration)

	// IncPollCycle counts one order status poll.
	IncPollCycle(state string)

	// AddDownloadedBytes accumulates downloaded result-file bytes.
	AddDownloadedBytes(n int64)

	// IncBundlesWritten counts one committed archive.
	IncBundlesWritten()

	// IncAOIProcessed counts one processed AOI record.
	IncAOIProcessed(success bool)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncAPIRequest implements MetricsCollector.
func (n *NoOpMetrics) IncAPIRequest(_ string, _ bool) {}

// ObserveAPIDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveAPIDuration(_ string, _ time.Duration) {}

// IncPollCycle implements MetricsCollector.
func (n *NoOpMetrics) IncPollCycle(_ string) {}

// AddDownloadedBytes implements MetricsCollector.
func (n *NoOpMetrics) AddDownloadedBytes(_ int64) {}

// IncBundlesWritten implements MetricsCollector.
func (n *NoOpMetrics) IncBundlesWritten() {}

// IncAOIProcessed implements MetricsCollector.
func (n *NoOpMetrics) IncAOIProcessed(_ bool) {}
