package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLocker serializes receiving per purchase order across processes.
// Lock returns a release function; it fails with a CONCURRENCY_CONFLICT error
// when the lock cannot be obtained in time.
type OrderLocker interface {
	Lock(ctx context.Context, orderID uuid.UUID) (func(context.Context) error, error)
}

// ReceivingConfig tunes the receiving retry and idempotency behaviour
type ReceivingConfig struct {
	// MaxAttempts bounds how often a receive is retried after a version conflict
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between retries
	RetryBackoff   time.Duration
	IdempotencyTTL time.Duration
}

// DefaultReceivingConfig returns the receiving defaults
func DefaultReceivingConfig() ReceivingConfig {
	return ReceivingConfig{
		MaxAttempts:    3,
		RetryBackoff:   50 * time.Millisecond,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// ReceivingService posts goods received against a purchase order into a store.
// Each request updates the order lines, appends ledger entries and moves the
// store projection in one transaction.
type ReceivingService struct {
	txScope        appinv.TransactionScope
	config         ReceivingConfig
	locker         OrderLocker
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProcurementMetrics
	logger         *zap.Logger
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(txScope appinv.TransactionScope, cfg ReceivingConfig) *ReceivingService {
	defaults := DefaultReceivingConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaults.IdempotencyTTL
	}
	return &ReceivingService{
		txScope: txScope,
		config:  cfg,
		logger:  zap.NewNop(),
	}
}

// SetOrderLocker sets the distributed per-order lock
func (s *ReceivingService) SetOrderLocker(locker OrderLocker) {
	s.locker = locker
}

// SetIdempotencyStore sets the store used to reject replayed requests
func (s *ReceivingService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReceivingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the procurement metrics collector
func (s *ReceivingService) SetMetrics(metrics *telemetry.ProcurementMetrics) {
	s.metrics = metrics
}

// SetLogger sets the logger
func (s *ReceivingService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

type receiveOutcome struct {
	order    *trade.PurchaseOrder
	received []trade.ReceivedItemInfo
	entries  []*inventory.InventoryReceipt
	events   []shared.DomainEvent
}

// Receive records goods received for an order into one store.
// A request is all or nothing: when any line is rejected nothing is written.
func (s *ReceivingService) Receive(ctx context.Context, orderID uuid.UUID, req ReceiveItemsRequest) (result *ReceivingResultResponse, err error) {
	started := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "receiving", "receive",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrStoreID, req.StoreID,
		telemetry.SpanAttrLineCount, len(req.Items),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		s.recordOutcome(ctx, err, time.Since(started))
	}()

	if req.StoreID == uuid.Nil {
		return nil, shared.NewValidationError("store is required")
	}
	ctx = logger.WithScope(ctx, logger.Scope{OrderID: orderID.String(), StoreID: req.StoreID.String()})
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("at least one item is required")
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("receive:%s:%s", orderID, req.IdempotencyKey)
		fresh, markErr := s.idempotency.MarkProcessed(ctx, key, s.config.IdempotencyTTL)
		if markErr != nil {
			return nil, fmt.Errorf("check idempotency key: %w", markErr)
		}
		if !fresh {
			return nil, shared.NewDomainError(shared.CodeDuplicateRequest,
				fmt.Sprintf("receiving request %s was already processed", req.IdempotencyKey))
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}()
	}

	if s.locker != nil {
		release, lockErr := s.locker.Lock(ctx, orderID)
		if lockErr != nil {
			return nil, lockErr
		}
		defer func() {
			if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
				s.logger.Warn("failed to release order lock", zap.String("order_id", orderID.String()), zap.Error(relErr))
			}
		}()
	}

	outcome, err := s.receiveWithRetry(ctx, orderID, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, outcome)
	s.logger.Info("goods received",
		zap.String("order_number", outcome.order.OrderNumber),
		zap.String("store_id", req.StoreID.String()),
		zap.Int("lines", len(outcome.received)),
		zap.String("status", outcome.order.Status.String()),
	)

	return &ReceivingResultResponse{
		Order:           ToPurchaseOrderResponse(outcome.order),
		StoreID:         req.StoreID,
		ReceivedItems:   ToReceivedItemResponses(outcome.received),
		Receipts:        toLedgerEntryResponses(outcome.entries),
		IsFullyReceived: outcome.order.Status == trade.PurchaseOrderStatusReceived,
	}, nil
}

// receiveWithRetry reruns the transaction when the order version moved underneath it
func (s *ReceivingService) receiveWithRetry(ctx context.Context, orderID uuid.UUID, req ReceiveItemsRequest) (*receiveOutcome, error) {
	for attempt := 1; ; attempt++ {
		outcome, err := s.receiveOnce(ctx, orderID, req)
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		if attempt >= s.config.MaxAttempts {
			s.logger.Warn("receiving gave up after version conflicts",
				zap.String("order_id", orderID.String()),
				zap.Int("attempts", attempt),
			)
			return nil, shared.NewConcurrencyError(
				fmt.Sprintf("purchase order %s was modified concurrently; retry the request", orderID))
		}

		if s.metrics != nil {
			s.metrics.RecordRetry(ctx)
		}
		telemetry.AddEvent(telemetry.SpanFromContext(ctx), "retry", telemetry.SpanAttrAttempt, attempt)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.config.RetryBackoff * time.Duration(attempt)):
		}
	}
}

func (s *ReceivingService) receiveOnce(ctx context.Context, orderID uuid.UUID, req ReceiveItemsRequest) (*receiveOutcome, error) {
	outcome := &receiveOutcome{}
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError(fmt.Sprintf("purchase order %s not found", orderID))
			}
			return err
		}
		if !order.CanReceiveGoods() {
			return shared.NewInvalidStateError(fmt.Sprintf("cannot receive goods for order in %s status", order.Status))
		}

		store, err := repos.StoreRepo().FindByID(ctx, req.StoreID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError(fmt.Sprintf("store %s not found", req.StoreID))
			}
			return err
		}
		if !store.IsActive {
			return shared.NewNotFoundError(fmt.Sprintf("store %s is not active", store.Code))
		}

		lines := make([]trade.ReceiveLine, len(req.Items))
		for i, item := range req.Items {
			lines[i] = trade.ReceiveLine{
				ItemID:   item.ItemID,
				Quantity: item.Quantity,
				UnitCost: item.UnitCostExclusive,
			}
		}
		received, err := order.Receive(store.ID, lines)
		if err != nil {
			return err
		}

		entries := make([]*inventory.InventoryReceipt, 0, len(received))
		for _, info := range received {
			entry, err := inventory.NewReceiptEntry(order.ID, info.ItemID, store.ID, info.ProductID,
				info.Quantity, info.UnitCost, req.Notes, req.ActorID)
			if err != nil {
				return err
			}
			if err := repos.ReceiptRepo().Create(ctx, entry); err != nil {
				return err
			}
			if err := repos.StockRepo().Increment(ctx, store.ID, info.ProductID, info.Quantity, entry.UnitCost); err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}

		outcome.order = order
		outcome.received = received
		outcome.entries = entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.events = outcome.order.GetDomainEvents()
	outcome.order.ClearDomainEvents()
	return outcome, nil
}

func (s *ReceivingService) publish(ctx context.Context, outcome *receiveOutcome) {
	if s.eventPublisher == nil || len(outcome.events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, outcome.events...); err != nil {
		s.logger.Warn("failed to publish receiving events",
			zap.String("order_number", outcome.order.OrderNumber),
			zap.Error(err),
		)
	}
}

func (s *ReceivingService) recordOutcome(ctx context.Context, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := telemetry.ReceiveOutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrDuplicateRequest):
		outcome = telemetry.ReceiveOutcomeDuplicate
	case errors.Is(err, shared.ErrConcurrencyConflict):
		outcome = telemetry.ReceiveOutcomeConflict
	default:
		outcome = telemetry.ReceiveOutcomeRejected
	}
	s.metrics.RecordReceive(ctx, outcome, elapsed)
}
