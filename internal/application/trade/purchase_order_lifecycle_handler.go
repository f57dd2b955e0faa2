package trade

import (
	"context"
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleRecorder receives lifecycle measurements.
// *telemetry.ProcurementMetrics satisfies it.
type LifecycleRecorder interface {
	RecordStatusTransition(ctx context.Context, status string)
	RecordUnitsReceived(ctx context.Context, storeID uuid.UUID, units int64)
}

// PurchaseOrderLifecycleHandler turns purchase order events into status
// transition and received-unit measurements plus an audit log line
type PurchaseOrderLifecycleHandler struct {
	recorder LifecycleRecorder
	logger   *zap.Logger
}

// NewPurchaseOrderLifecycleHandler creates a new lifecycle handler
func NewPurchaseOrderLifecycleHandler(recorder LifecycleRecorder, logger *zap.Logger) *PurchaseOrderLifecycleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderLifecycleHandler{recorder: recorder, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseOrderLifecycleHandler) EventTypes() []string {
	return []string{
		trade.EventTypePurchaseOrderSent,
		trade.EventTypePurchaseOrderReceived,
		trade.EventTypePurchaseOrderCancelled,
	}
}

// Handle processes one purchase order event
func (h *PurchaseOrderLifecycleHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.PurchaseOrderSentEvent:
		h.transition(ctx, e.OrderNumber, trade.PurchaseOrderStatusSent)
	case *trade.PurchaseOrderCancelledEvent:
		h.transition(ctx, e.OrderNumber, trade.PurchaseOrderStatusCancelled,
			zap.String("previous_status", e.PreviousStatus.String()),
			zap.String("reason", e.CancelReason),
		)
	case *trade.PurchaseOrderReceivedEvent:
		units := e.TotalQuantity()
		if h.recorder != nil {
			h.recorder.RecordUnitsReceived(ctx, e.StoreID, units)
		}
		h.transition(ctx, e.OrderNumber, e.Status,
			zap.String("store_id", e.StoreID.String()),
			zap.Int64("units", units),
		)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

func (h *PurchaseOrderLifecycleHandler) transition(ctx context.Context, orderNumber string, status trade.PurchaseOrderStatus, fields ...zap.Field) {
	if h.recorder != nil {
		h.recorder.RecordStatusTransition(ctx, status.String())
	}
	h.logger.Info("purchase order status changed",
		append([]zap.Field{zap.String("order_number", orderNumber), zap.String("status", status.String())}, fields...)...,
	)
}

var _ shared.EventHandler = (*PurchaseOrderLifecycleHandler)(nil)
