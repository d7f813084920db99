package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestReceivingMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReceivingMetrics(reg)

	metrics.IncReceiptApplied()
	metrics.IncLineClamped()
	metrics.IncVersionRetry()
	metrics.IncVersionRetry()
	metrics.IncConflictExhausted()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	expectations := map[string]float64{
		"receiving_receipts_applied_total":    1,
		"receiving_lines_clamped_total":       1,
		"receiving_version_retries_total":     2,
		"receiving_conflicts_exhausted_total": 1,
	}

	for name, want := range expectations {
		mf := findMetricFamily(mfs, name)
		if mf == nil {
			t.Fatalf("metric %q not found", name)
		}
		got := mf.GetMetric()[0].GetCounter().GetValue()
		if got != want {
			t.Fatalf("metric %q expected %f got %f", name, want, got)
		}
	}
}

func TestReceivingMetricsNilSafe(t *testing.T) {
	var metrics *ReceivingMetrics
	metrics.IncReceiptApplied()
	metrics.IncVersionRetry()

	empty := NewReceivingMetrics(nil)
	empty.IncConflictExhausted()
}
