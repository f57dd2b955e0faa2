package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ReceiveOutcome labels the result of a receiving request
type ReceiveOutcome string

const (
	ReceiveOutcomeSuccess   ReceiveOutcome = "success"
	ReceiveOutcomeRejected  ReceiveOutcome = "rejected"
	ReceiveOutcomeConflict  ReceiveOutcome = "conflict"
	ReceiveOutcomeDuplicate ReceiveOutcome = "duplicate"
)

// ProcurementMetrics tracks purchase order lifecycle and receiving activity.
type ProcurementMetrics struct {
	logger *zap.Logger

	ordersCreated     *Counter
	orderAmountCents  *Counter
	statusTransitions *Counter
	receiveRequests   *Counter
	unitsReceived     *Counter
	receiveRetries    *Counter
	ledgerAdjustments *Counter
	ledgerMismatches  *Gauge
	receiveDuration   *Histogram
}

// ProcurementMetricsConfig holds configuration for procurement metrics.
type ProcurementMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewProcurementMetrics registers every procurement instrument on the meter.
func NewProcurementMetrics(cfg ProcurementMetricsConfig) (*ProcurementMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &ProcurementMetrics{logger: logger}
	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&pm.ordersCreated, "procurement_orders_created_total", "Purchase orders created", "{orders}"},
		{&pm.orderAmountCents, "procurement_order_amount_total", "Tax-inclusive amount of created orders in cents", "{cents}"},
		{&pm.statusTransitions, "procurement_order_status_transitions_total", "Purchase order status changes", "{transitions}"},
		{&pm.receiveRequests, "procurement_receive_requests_total", "Receiving requests by outcome", "{requests}"},
		{&pm.unitsReceived, "procurement_units_received_total", "Units posted to store inventory", "{units}"},
		{&pm.receiveRetries, "procurement_receive_retries_total", "Receiving attempts retried after a version conflict", "{retries}"},
		{&pm.ledgerAdjustments, "procurement_ledger_adjustments_total", "Manual stock adjustments written to the ledger", "{entries}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	pm.ledgerMismatches, err = NewGauge(cfg.Meter,
		"procurement_ledger_mismatches",
		"Store inventory rows that disagree with the ledger at the last verification",
		"{rows}",
	)
	if err != nil {
		return nil, err
	}

	pm.receiveDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "procurement_receive_duration_seconds",
		Description: "Wall time of a receiving request including retries",
		Unit:        "s",
		Boundaries:  ReceiveDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// RecordOrderCreated counts a new order and its tax-inclusive total
func (pm *ProcurementMetrics) RecordOrderCreated(ctx context.Context, total decimal.Decimal) {
	pm.ordersCreated.Inc(ctx)
	pm.orderAmountCents.Add(ctx, total.Mul(decimal.NewFromInt(100)).IntPart())
}

// RecordStatusTransition counts an order entering status
func (pm *ProcurementMetrics) RecordStatusTransition(ctx context.Context, status string) {
	pm.statusTransitions.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordReceive records one receiving request
func (pm *ProcurementMetrics) RecordReceive(ctx context.Context, outcome ReceiveOutcome, elapsed time.Duration) {
	pm.receiveRequests.Inc(ctx, AttrOutcome.String(string(outcome)))
	pm.receiveDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(string(outcome)))
}

// RecordUnitsReceived counts units posted into a store
func (pm *ProcurementMetrics) RecordUnitsReceived(ctx context.Context, storeID uuid.UUID, units int64) {
	if units <= 0 {
		return
	}
	pm.unitsReceived.Add(ctx, units, AttrStoreID.String(storeID.String()))
}

// RecordRetry counts one retried receiving attempt
func (pm *ProcurementMetrics) RecordRetry(ctx context.Context) {
	pm.receiveRetries.Inc(ctx)
}

// RecordAdjustment counts a manual ledger adjustment
func (pm *ProcurementMetrics) RecordAdjustment(ctx context.Context, storeID uuid.UUID) {
	pm.ledgerAdjustments.Inc(ctx, AttrStoreID.String(storeID.String()), AttrEntryType.String("adjustment"))
}

// RecordLedgerMismatches records the result of the last ledger verification
func (pm *ProcurementMetrics) RecordLedgerMismatches(ctx context.Context, count int) {
	pm.ledgerMismatches.Record(ctx, int64(count))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewProcurementMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
