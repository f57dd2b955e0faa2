package handler

import (
	"context"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryService serves per-store stock levels
type InventoryService interface {
	QuantityOf(ctx context.Context, storeID, productID uuid.UUID) (*appinv.StoreInventoryResponse, error)
	AllForStore(ctx context.Context, storeID uuid.UUID) ([]appinv.StoreInventoryResponse, error)
	AllForProduct(ctx context.Context, productID uuid.UUID) ([]appinv.StoreInventoryResponse, error)
	SummaryByStore(ctx context.Context) ([]appinv.StoreSummaryResponse, error)
	AdjustStock(ctx context.Context, req appinv.AdjustStockRequest) (*appinv.StockAdjustmentResponse, error)
	VerifyLedger(ctx context.Context) (*appinv.LedgerVerificationResponse, error)
}

// InventoryHandler handles stock level endpoints
type InventoryHandler struct {
	BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// StoreStock lists every product held in a store
// @Router /inventory/stores/{store_id} [get]
func (h *InventoryHandler) StoreStock(c *gin.Context) {
	storeID, ok := h.parseUUIDParam(c, "store_id")
	if !ok {
		return
	}

	rows, err := h.service.AllForStore(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// QuantityOf returns the stock of one product in one store. A pair that never
// received stock reports zero.
// @Router /inventory/stores/{store_id}/products/{product_id} [get]
func (h *InventoryHandler) QuantityOf(c *gin.Context) {
	storeID, ok := h.parseUUIDParam(c, "store_id")
	if !ok {
		return
	}
	productID, ok := h.parseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	row, err := h.service.QuantityOf(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// ProductStock lists a product's stock across stores
// @Router /inventory/products/{product_id} [get]
func (h *InventoryHandler) ProductStock(c *gin.Context) {
	productID, ok := h.parseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	rows, err := h.service.AllForProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Summary aggregates stock per store
// @Router /inventory/summary [get]
func (h *InventoryHandler) Summary(c *gin.Context) {
	summary, err := h.service.SummaryByStore(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Adjust godoc
// @Summary      Set the counted quantity of a product in a store
// @Description  Writes a compensating adjustment entry to the ledger. A count equal to the current stock writes nothing.
// @Tags         inventory
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req appinv.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}
	req.ActorID = actor

	result, err := h.service.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Entry == nil {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Reconciliation compares the stock projection against the ledger
// @Router /inventory/reconciliation [get]
func (h *InventoryHandler) Reconciliation(c *gin.Context) {
	report, err := h.service.VerifyLedger(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
