package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReceivingMetrics tracks goods-receipt outcomes, including how often the
// optimistic stock update had to retry or gave up.
type ReceivingMetrics struct {
	receiptsApplied    prometheus.Counter
	linesClamped       prometheus.Counter
	versionRetries     prometheus.Counter
	conflictsExhausted prometheus.Counter
}

// NewReceivingMetrics registers the receiving metrics on the provided registerer.
func NewReceivingMetrics(reg prometheus.Registerer) *ReceivingMetrics {
	if reg == nil {
		return &ReceivingMetrics{}
	}
	receiptsApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiving_receipts_applied_total",
		Help: "Receipts applied to purchase orders.",
	})
	linesClamped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiving_lines_clamped_total",
		Help: "Receipt lines whose quantity was clamped to the outstanding remainder.",
	})
	versionRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiving_version_retries_total",
		Help: "Optimistic stock update retries during receiving.",
	})
	conflictsExhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiving_conflicts_exhausted_total",
		Help: "Receipts rejected after exhausting the retry budget.",
	})
	reg.MustRegister(receiptsApplied, linesClamped, versionRetries, conflictsExhausted)
	return &ReceivingMetrics{
		receiptsApplied:    receiptsApplied,
		linesClamped:       linesClamped,
		versionRetries:     versionRetries,
		conflictsExhausted: conflictsExhausted,
	}
}

// IncReceiptApplied counts a successfully applied receipt.
func (r *ReceivingMetrics) IncReceiptApplied() {
	if r == nil || r.receiptsApplied == nil {
		return
	}
	r.receiptsApplied.Inc()
}

// IncLineClamped counts a receipt line clamped to its remaining quantity.
func (r *ReceivingMetrics) IncLineClamped() {
	if r == nil || r.linesClamped == nil {
		return
	}
	r.linesClamped.Inc()
}

// IncVersionRetry counts one optimistic-lock retry.
func (r *ReceivingMetrics) IncVersionRetry() {
	if r == nil || r.versionRetries == nil {
		return
	}
	r.versionRetries.Inc()
}

// IncConflictExhausted counts a receipt rejected after the retry budget ran out.
func (r *ReceivingMetrics) IncConflictExhausted() {
	if r == nil || r.conflictsExhausted == nil {
		return
	}
	r.conflictsExhausted.Inc()
}
