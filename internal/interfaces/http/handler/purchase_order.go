package handler

import (
	"context"
	"strings"

	tradeapp "github.com/erp/procurement/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderService is the order lifecycle the handler depends on
type PurchaseOrderService interface {
	Create(ctx context.Context, req tradeapp.CreatePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*tradeapp.PurchaseOrderResponse, error)
	GetWithReceipts(ctx context.Context, orderID uuid.UUID) (*tradeapp.PurchaseOrderWithReceiptsResponse, error)
	GetReceivableItems(ctx context.Context, orderID uuid.UUID) ([]tradeapp.PurchaseOrderItemResponse, error)
	List(ctx context.Context, filter tradeapp.PurchaseOrderListFilter) ([]tradeapp.PurchaseOrderListItemResponse, int64, error)
	StatusSummary(ctx context.Context) (*tradeapp.PurchaseOrderStatusSummaryResponse, error)
	Update(ctx context.Context, orderID uuid.UUID, req tradeapp.UpdatePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)
	Send(ctx context.Context, orderID uuid.UUID) (*tradeapp.PurchaseOrderResponse, error)
	Cancel(ctx context.Context, orderID uuid.UUID, req tradeapp.CancelPurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)
}

// Receiver records goods received against an order
type Receiver interface {
	Receive(ctx context.Context, orderID uuid.UUID, req tradeapp.ReceiveItemsRequest) (*tradeapp.ReceivingResultResponse, error)
}

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService PurchaseOrderService
	receiver     Receiver
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService PurchaseOrderService, receiver Receiver) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
		receiver:     receiver,
	}
}

// Create godoc
// @Summary      Create a draft purchase order
// @Tags         purchase-orders
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}
	req.CreatedBy = actor

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID returns an order together with its ledger entries
// @Router /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetWithReceipts(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByOrderNumber looks an order up by its PO-YYYY-NNNNN number
// @Router /purchase-orders/by-number/{order_number} [get]
func (h *PurchaseOrderHandler) GetByOrderNumber(c *gin.Context) {
	orderNumber := strings.TrimSpace(c.Param("order_number"))
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List purchase orders
// @Description  Filter by status (repeatable), free text search and date range; sort by date, order_number or total
// @Tags         purchase-orders
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter tradeapp.PurchaseOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Summary returns order counts per status and the value still open
// @Router /purchase-orders/summary [get]
func (h *PurchaseOrderHandler) Summary(c *gin.Context) {
	summary, err := h.orderService.StatusSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Update godoc
// @Summary      Replace the lines of a draft order
// @Tags         purchase-orders
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Send moves a draft order to sent
// @Router /purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Send(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order. The body is optional.
// @Router /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelPurchaseOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receive godoc
// @Summary      Receive goods into a store
// @Description  All lines are applied or none. Send an Idempotency-Key header to make retries safe.
// @Tags         purchase-orders
// @Param        Idempotency-Key header string false "Client generated key"
// @Router       /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ReceiveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}
	req.ActorID = actor

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	req.IdempotencyKey = key

	result, err := h.receiver.Receive(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReceivableItems lists the lines that still have units outstanding
// @Router /purchase-orders/{id}/receivable-items [get]
func (h *PurchaseOrderHandler) ReceivableItems(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	items, err := h.orderService.GetReceivableItems(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
