package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records outbox dispatcher activity per target system.
type DispatchMetrics struct {
	batchDuration *prometheus.HistogramVec
	delivered     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	exhausted     *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox dispatch batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"worker"})
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_entries_delivered",
		Help: "Outbox entries delivered successfully.",
	}, []string{"target"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_entries_failed",
		Help: "Outbox delivery attempts that failed and will be retried.",
	}, []string{"target"})
	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_entries_exhausted",
		Help: "Outbox entries that ran out of delivery attempts.",
	}, []string{"target"})
	reg.MustRegister(batchDuration, delivered, failed, exhausted)
	return &DispatchMetrics{
		batchDuration: batchDuration,
		delivered:     delivered,
		failed:        failed,
		exhausted:     exhausted,
	}
}

// ObserveBatch records the duration of one dispatch batch.
func (d *DispatchMetrics) ObserveBatch(worker string, duration time.Duration) {
	if d == nil || d.batchDuration == nil {
		return
	}
	d.batchDuration.WithLabelValues(normalizeLabel(worker)).Observe(duration.Seconds())
}

// IncDelivered increments the delivered counter for the target system.
func (d *DispatchMetrics) IncDelivered(target string) {
	if d == nil || d.delivered == nil {
		return
	}
	d.delivered.WithLabelValues(normalizeLabel(target)).Inc()
}

// IncFailed increments the failed counter for the target system.
func (d *DispatchMetrics) IncFailed(target string) {
	if d == nil || d.failed == nil {
		return
	}
	d.failed.WithLabelValues(normalizeLabel(target)).Inc()
}

// IncExhausted increments the exhausted counter for the target system.
func (d *DispatchMetrics) IncExhausted(target string) {
	if d == nil || d.exhausted == nil {
		return
	}
	d.exhausted.WithLabelValues(normalizeLabel(target)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
