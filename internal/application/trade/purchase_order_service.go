package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/tax"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// orderNumberAttempts bounds how often Create re-allocates a number taken by a concurrent create
const orderNumberAttempts = 5

// PurchaseOrderService handles purchase order lifecycle operations outside receiving
type PurchaseOrderService struct {
	orderRepo      trade.PurchaseOrderRepository
	receiptRepo    inventory.ReceiptRepository
	supplierRepo   partner.SupplierRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProcurementMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	receiptRepo inventory.ReceiptRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		receiptRepo:  receiptRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the procurement metrics collector
func (s *PurchaseOrderService) SetMetrics(metrics *telemetry.ProcurementMetrics) {
	s.metrics = metrics
}

// SetLogger sets the logger
func (s *PurchaseOrderService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock overrides the clock used for relative date ranges
func (s *PurchaseOrderService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create creates a draft purchase order with a freshly allocated order number
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if req.SupplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier is required")
	}
	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("supplier %s not found", req.SupplierID))
		}
		return nil, err
	}

	lines, err := s.buildLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	orderDate := s.now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	build := func(orderNumber string) (*trade.PurchaseOrder, error) {
		order, err := trade.NewPurchaseOrder(orderNumber, supplier.ID, supplier.Name, orderDate, lines)
		if err != nil {
			return nil, err
		}
		if err := order.SetExpectedDeliveryDate(req.ExpectedDeliveryDate); err != nil {
			return nil, err
		}
		if req.Notes != "" {
			if err := order.SetNotes(strings.TrimSpace(req.Notes)); err != nil {
				return nil, err
			}
		}
		if req.CreatedBy != nil {
			order.SetCreatedBy(*req.CreatedBy)
		}
		return order, nil
	}

	// Two creates can read the same highest number; the unique index rejects
	// the loser, which takes the next free number.
	var order *trade.PurchaseOrder
	for attempt := 1; ; attempt++ {
		orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		if order, err = build(orderNumber); err != nil {
			return nil, err
		}
		err = s.orderRepo.Save(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, trade.ErrOrderNumberTaken) {
			return nil, err
		}
		if attempt >= orderNumberAttempts {
			return nil, shared.NewConcurrencyError(fmt.Sprintf("could not allocate an order number after %d attempts", attempt))
		}
		s.logger.Debug("order number taken, allocating another", zap.String("order_number", orderNumber))
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, order.TotalAmount)
	}
	s.publish(ctx, order)

	s.logger.Info("purchase order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
	)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves a purchase order by its PO number
func (s *PurchaseOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("purchase order %s not found", orderNumber))
		}
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetWithReceipts returns an order together with its ledger entries
func (s *PurchaseOrderService) GetWithReceipts(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderWithReceiptsResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	entries, err := s.receiptRepo.FindByPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	receipts := make([]*inventory.InventoryReceipt, len(entries))
	for i := range entries {
		receipts[i] = &entries[i]
	}
	return &PurchaseOrderWithReceiptsResponse{
		PurchaseOrderResponse: ToPurchaseOrderResponse(order),
		Receipts:              toLedgerEntryResponses(receipts),
	}, nil
}

// GetReceivableItems lists the lines of an order that still have quantity outstanding
func (s *PurchaseOrderService) GetReceivableItems(ctx context.Context, orderID uuid.UUID) ([]PurchaseOrderItemResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanReceiveGoods() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("cannot receive goods for order in %s status", order.Status))
	}

	responses := make([]PurchaseOrderItemResponse, 0, len(order.Items))
	for i := range order.Items {
		if order.Items[i].CanReceive() {
			responses = append(responses, ToPurchaseOrderItemResponse(&order.Items[i]))
		}
	}
	return responses, nil
}

// List filters, sorts and paginates purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	query, err := toQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	orders, err := s.orderRepo.FindAll(ctx, query.Statuses...)
	if err != nil {
		return nil, 0, err
	}

	matched := query.Apply(orders, s.now())
	page := shared.Paginate(matched, filter.Page, pageSizeOrDefault(filter.PageSize))
	return ToPurchaseOrderListItemResponses(page.Items), page.Total, nil
}

// StatusSummary counts orders per status
func (s *PurchaseOrderService) StatusSummary(ctx context.Context) (*PurchaseOrderStatusSummaryResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	response := ToStatusSummaryResponse(trade.SummarizeByStatus(orders))
	return &response, nil
}

// Update replaces the lines, notes and dates of a draft order
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanModify() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("cannot update order in %s status", order.Status))
	}

	lines, err := s.buildLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	if err := order.Update(lines, strings.TrimSpace(req.Notes), orderDate, req.ExpectedDeliveryDate); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Send moves a draft order to sent
func (s *PurchaseOrderService) Send(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Send(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order)
	s.logger.Info("purchase order sent", zap.String("order_number", order.OrderNumber))

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order. Stock already received stays in the ledger.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(strings.TrimSpace(req.Reason)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order)
	s.logger.Info("purchase order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", order.CancelReason),
	)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

func (s *PurchaseOrderService) findOrder(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("purchase order %s not found", orderID))
		}
		return nil, err
	}
	return order, nil
}

// buildLines resolves products and fills in names, codes and default tax classes
func (s *PurchaseOrderService) buildLines(ctx context.Context, inputs []PurchaseOrderItemInput) ([]trade.ItemLine, error) {
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("at least one item is required")
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("product is required")
		}
		if _, ok := seen[in.ProductID]; !ok {
			seen[in.ProductID] = struct{}{}
			ids = append(ids, in.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]trade.ItemLine, len(inputs))
	for i, in := range inputs {
		product, ok := byID[in.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError(fmt.Sprintf("product %s not found", in.ProductID))
		}

		class := product.DefaultTaxClass
		if in.TaxClass != "" {
			class, err = tax.ParseClass(in.TaxClass)
			if err != nil {
				return nil, err
			}
		}

		lines[i] = trade.ItemLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductCode: product.Code,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TaxClass:    class,
		}
	}
	return lines, nil
}

// publish hands pending events to the bus. Publishing happens after the write
// succeeded, so a failure here is logged and does not fail the request.
func (s *PurchaseOrderService) publish(ctx context.Context, order *trade.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}

func toQuery(filter PurchaseOrderListFilter) (trade.PurchaseOrderQuery, error) {
	query := trade.PurchaseOrderQuery{
		Search:    filter.Search,
		DateRange: trade.DateRange(filter.DateRange),
		From:      filter.From,
		To:        filter.To,
		SortBy:    trade.SortKey(filter.SortBy),
		SortDesc:  !strings.EqualFold(filter.SortOrder, "asc"),
	}
	if !query.DateRange.IsValid() {
		return query, shared.NewValidationError(fmt.Sprintf("unsupported date range %q", filter.DateRange))
	}
	if query.DateRange == trade.DateRangeCustom {
		if query.From == nil || query.To == nil {
			return query, shared.NewValidationError("custom date range needs both from and to")
		}
		if query.To.Before(*query.From) {
			return query, shared.NewValidationError("date range end is before its start")
		}
	}
	if query.SortBy == "" {
		query.SortBy = trade.SortByDate
	}
	if !query.SortBy.IsValid() {
		return query, shared.NewValidationError(fmt.Sprintf("unsupported sort key %q", filter.SortBy))
	}

	for _, raw := range filter.Statuses {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status := trade.PurchaseOrderStatus(part)
			if !status.IsValid() {
				return query, shared.NewValidationError(fmt.Sprintf("unsupported status %q", part))
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	return query, nil
}

func pageSizeOrDefault(size int) int {
	if size <= 0 {
		return 20
	}
	return size
}
