package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics holds the counters emitted by the property ledger services.
// All methods are safe on a nil receiver.
type LedgerMetrics struct {
	deletions        *Counter
	deletionDuration *Histogram
	auditFailures    *Counter
	deliveries       *Counter
	upserts          *Counter
	billsGenerated   *Counter
	statusChanges    *Counter
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	if m.deletions, err = NewCounter(meter, "proptax_property_deletions_total",
		"Cascading property deletions by outcome", "{deletion}"); err != nil {
		return nil, err
	}
	if m.deletionDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "proptax_property_deletion_duration_seconds",
		Description: "Wall time of cascading property deletions",
		Unit:        "s",
		Boundaries:  DeletionDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.auditFailures, err = NewCounter(meter, "proptax_audit_write_failures_total",
		"Audit entries that could not be persisted", "{entry}"); err != nil {
		return nil, err
	}
	if m.deliveries, err = NewCounter(meter, "proptax_bill_delivery_transitions_total",
		"Bill delivery status transitions by target status", "{transition}"); err != nil {
		return nil, err
	}
	if m.upserts, err = NewCounter(meter, "proptax_property_upserts_total",
		"Property creates and updates", "{property}"); err != nil {
		return nil, err
	}
	if m.billsGenerated, err = NewCounter(meter, "proptax_bills_generated_total",
		"Annual bills generated", "{bill}"); err != nil {
		return nil, err
	}
	if m.statusChanges, err = NewCounter(meter, "proptax_bill_status_changes_total",
		"Bill lifecycle statuses rewritten by the overdue sweep", "{bill}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordDeletion counts one deletion attempt. outcome is "deleted" or an error code.
func (m *LedgerMetrics) RecordDeletion(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.deletions.Inc(ctx, AttrOutcome.String(outcome))
	m.deletionDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
}

func (m *LedgerMetrics) RecordAuditFailure(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.auditFailures.Inc(ctx, AttrAction.String(action))
}

func (m *LedgerMetrics) RecordDelivery(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.deliveries.Inc(ctx, AttrDeliveryStatus.String(status))
}

// RecordUpsert counts a property write. action is "create" or "update".
func (m *LedgerMetrics) RecordUpsert(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.upserts.Inc(ctx, AttrAction.String(action))
}

func (m *LedgerMetrics) RecordBillGenerated(ctx context.Context) {
	if m == nil {
		return
	}
	m.billsGenerated.Inc(ctx)
}

// RecordStatusChange counts a bill moved to status by the overdue sweep
func (m *LedgerMetrics) RecordStatusChange(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.statusChanges.Inc(ctx, AttrBillStatus.String(status))
}
