package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDispatchMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDispatchMetrics(reg)

	metrics.ObserveBatch("dispatcher", 250*time.Millisecond)
	metrics.IncDelivered("accounting")
	metrics.IncFailed("notification")
	metrics.IncExhausted("notification")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "outbox_entries_delivered", "target", "accounting"); err != nil {
		t.Fatalf("fetch delivered: %v", err)
	} else if got != 1 {
		t.Fatalf("expected delivered=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_entries_failed", "target", "notification"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_entries_exhausted", "target", "notification"); err != nil {
		t.Fatalf("fetch exhausted: %v", err)
	} else if got != 1 {
		t.Fatalf("expected exhausted=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "outbox_batch_duration_seconds", "worker", "dispatcher"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestDispatchMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewDispatchMetrics(nil)
	metrics.ObserveBatch("dispatcher", time.Second)
	metrics.IncDelivered("accounting")
	metrics.IncFailed("accounting")
	metrics.IncExhausted("accounting")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, labelKey, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelKey && lp.GetValue() == labelValue {
					return m.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelKey, labelValue)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, labelKey, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelKey && lp.GetValue() == labelValue {
					return m.GetHistogram().GetSampleSum(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelKey, labelValue)
}
