package trade

import (
	"time"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Requests
// ============================================================================

// PurchaseOrderItemInput is one ordered line in a create or update request
type PurchaseOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"` // tax-inclusive
	// TaxClass defaults to the product's class when empty
	TaxClass string `json:"tax_class" binding:"omitempty,oneof=16% zero_rated exempted"`
}

// CreatePurchaseOrderRequest represents a request to create a draft purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID           uuid.UUID                `json:"supplier_id" binding:"required"`
	OrderDate            *time.Time               `json:"order_date"`
	ExpectedDeliveryDate *time.Time               `json:"expected_delivery_date"`
	Notes                string                   `json:"notes" binding:"max=2000"`
	Items                []PurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
	CreatedBy            *uuid.UUID               `json:"-"`
}

// UpdatePurchaseOrderRequest replaces the lines, notes and dates of a draft order
type UpdatePurchaseOrderRequest struct {
	OrderDate            *time.Time               `json:"order_date"`
	ExpectedDeliveryDate *time.Time               `json:"expected_delivery_date"`
	Notes                string                   `json:"notes" binding:"max=2000"`
	Items                []PurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReceiveItemInput is one line of a receiving request
type ReceiveItemInput struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"min=0"`
	// UnitCostExclusive defaults to the line's tax-exclusive unit price
	UnitCostExclusive *decimal.Decimal `json:"unit_cost_exclusive"`
}

// ReceiveItemsRequest represents a request to receive goods into a store
type ReceiveItemsRequest struct {
	StoreID        uuid.UUID          `json:"store_id" binding:"required"`
	Items          []ReceiveItemInput `json:"items" binding:"required,min=1,dive"`
	Notes          string             `json:"notes" binding:"max=500"`
	ActorID        *uuid.UUID         `json:"-"`
	IdempotencyKey string             `json:"-"`
}

// PurchaseOrderListFilter represents filter options for the purchase order list
type PurchaseOrderListFilter struct {
	Search    string     `form:"search"`
	Statuses  []string   `form:"status"`
	DateRange string     `form:"date_range" binding:"omitempty,oneof=today 7d 30d 90d custom"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	SortBy    string     `form:"sort_by" binding:"omitempty,oneof=date order_number total"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ============================================================================
// Responses
// ============================================================================

// PurchaseOrderItemResponse represents a purchase order line in API responses.
// Exclusive price, tax and totals are derived from the stored inclusive price.
type PurchaseOrderItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	ProductName        string          `json:"product_name"`
	ProductCode        string          `json:"product_code"`
	Quantity           int64           `json:"quantity"`
	ReceivedQuantity   int64           `json:"received_quantity"`
	RemainingQuantity  int64           `json:"remaining_quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	UnitPriceExclusive decimal.Decimal `json:"unit_price_exclusive"`
	TaxClass           string          `json:"tax_class"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	OrderNumber          string                      `json:"order_number"`
	SupplierID           uuid.UUID                   `json:"supplier_id"`
	SupplierName         string                      `json:"supplier_name"`
	OrderDate            time.Time                   `json:"order_date"`
	ExpectedDeliveryDate *time.Time                  `json:"expected_delivery_date,omitempty"`
	Status               string                      `json:"status"`
	Items                []PurchaseOrderItemResponse `json:"items"`
	ItemCount            int                         `json:"item_count"`
	TotalQuantity        int64                       `json:"total_quantity"`
	ReceivedQuantity     int64                       `json:"received_quantity"`
	ReceiveProgress      decimal.Decimal             `json:"receive_progress"`
	Subtotal             decimal.Decimal             `json:"subtotal"`
	TaxAmount            decimal.Decimal             `json:"tax_amount"`
	TotalAmount          decimal.Decimal             `json:"total_amount"`
	Notes                string                      `json:"notes,omitempty"`
	CreatedBy            *uuid.UUID                  `json:"created_by,omitempty"`
	SentAt               *time.Time                  `json:"sent_at,omitempty"`
	ReceivedAt           *time.Time                  `json:"received_at,omitempty"`
	CancelledAt          *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason         string                      `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	Version              int                         `json:"version"`
}

// PurchaseOrderListItemResponse represents a purchase order in list responses
type PurchaseOrderListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name"`
	OrderDate        time.Time       `json:"order_date"`
	Status           string          `json:"status"`
	ItemCount        int             `json:"item_count"`
	TotalQuantity    int64           `json:"total_quantity"`
	ReceivedQuantity int64           `json:"received_quantity"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PurchaseOrderWithReceiptsResponse is an order plus every ledger entry posted against it
type PurchaseOrderWithReceiptsResponse struct {
	PurchaseOrderResponse
	Receipts []appinv.LedgerEntryResponse `json:"receipts"`
}

// ReceivedItemResponse is one line accepted by a receiving request
type ReceivedItemResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// ReceivingResultResponse is the result of a receiving request
type ReceivingResultResponse struct {
	Order           PurchaseOrderResponse        `json:"order"`
	StoreID         uuid.UUID                    `json:"store_id"`
	ReceivedItems   []ReceivedItemResponse       `json:"received_items"`
	Receipts        []appinv.LedgerEntryResponse `json:"receipts"`
	IsFullyReceived bool                         `json:"is_fully_received"`
}

// PurchaseOrderStatusSummaryResponse counts orders per status
type PurchaseOrderStatusSummaryResponse struct {
	Draft             int             `json:"draft"`
	Sent              int             `json:"sent"`
	PartiallyReceived int             `json:"partially_received"`
	Received          int             `json:"received"`
	Cancelled         int             `json:"cancelled"`
	Total             int             `json:"total"`
	OpenValue         decimal.Decimal `json:"open_value"`
}

// ============================================================================
// Converters
// ============================================================================

// ToPurchaseOrderItemResponse converts a domain item to its response DTO
func ToPurchaseOrderItemResponse(item *trade.PurchaseOrderItem) PurchaseOrderItemResponse {
	return PurchaseOrderItemResponse{
		ID:                 item.ID,
		ProductID:          item.ProductID,
		ProductName:        item.ProductName,
		ProductCode:        item.ProductCode,
		Quantity:           item.Quantity,
		ReceivedQuantity:   item.ReceivedQuantity,
		RemainingQuantity:  item.RemainingQuantity(),
		UnitPrice:          item.UnitPrice,
		UnitPriceExclusive: item.UnitPriceExclusive(),
		TaxClass:           item.TaxClass.String(),
		TaxAmount:          item.TaxAmount(),
		Subtotal:           item.Subtotal(),
		LineTotal:          item.LineTotal(),
	}
}

// ToPurchaseOrderResponse converts a domain order to its response DTO
func ToPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToPurchaseOrderItemResponse(&order.Items[i])
	}

	return PurchaseOrderResponse{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		SupplierID:           order.SupplierID,
		SupplierName:         order.SupplierName,
		OrderDate:            order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		Status:               order.Status.String(),
		Items:                items,
		ItemCount:            order.ItemCount(),
		TotalQuantity:        order.TotalOrderedQuantity(),
		ReceivedQuantity:     order.TotalReceivedQuantity(),
		ReceiveProgress:      order.ReceiveProgress(),
		Subtotal:             order.Subtotal,
		TaxAmount:            order.TaxAmount,
		TotalAmount:          order.TotalAmount,
		Notes:                order.Notes,
		CreatedBy:            order.CreatedBy,
		SentAt:               order.SentAt,
		ReceivedAt:           order.ReceivedAt,
		CancelledAt:          order.CancelledAt,
		CancelReason:         order.CancelReason,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Version:              order.Version,
	}
}

// ToPurchaseOrderListItemResponse converts a domain order to a list row
func ToPurchaseOrderListItemResponse(order *trade.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		SupplierID:       order.SupplierID,
		SupplierName:     order.SupplierName,
		OrderDate:        order.OrderDate,
		Status:           order.Status.String(),
		ItemCount:        order.ItemCount(),
		TotalQuantity:    order.TotalOrderedQuantity(),
		ReceivedQuantity: order.TotalReceivedQuantity(),
		TotalAmount:      order.TotalAmount,
		CreatedAt:        order.CreatedAt,
	}
}

// ToPurchaseOrderListItemResponses converts domain orders to list rows
func ToPurchaseOrderListItemResponses(orders []trade.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderListItemResponse(&orders[i])
	}
	return responses
}

// ToReceivedItemResponses converts accepted receive lines
func ToReceivedItemResponses(infos []trade.ReceivedItemInfo) []ReceivedItemResponse {
	responses := make([]ReceivedItemResponse, len(infos))
	for i, info := range infos {
		responses[i] = ReceivedItemResponse{
			ItemID:      info.ItemID,
			ProductID:   info.ProductID,
			ProductName: info.ProductName,
			ProductCode: info.ProductCode,
			Quantity:    info.Quantity,
			UnitCost:    info.UnitCost,
			TotalCost:   info.TotalCost(),
		}
	}
	return responses
}

// ToStatusSummaryResponse flattens a domain status summary
func ToStatusSummaryResponse(summary trade.StatusSummary) PurchaseOrderStatusSummaryResponse {
	return PurchaseOrderStatusSummaryResponse{
		Draft:             summary.Counts[trade.PurchaseOrderStatusDraft],
		Sent:              summary.Counts[trade.PurchaseOrderStatusSent],
		PartiallyReceived: summary.Counts[trade.PurchaseOrderStatusPartiallyReceived],
		Received:          summary.Counts[trade.PurchaseOrderStatusReceived],
		Cancelled:         summary.Counts[trade.PurchaseOrderStatusCancelled],
		Total:             summary.Total,
		OpenValue:         summary.OpenValue,
	}
}

func toLedgerEntryResponses(entries []*inventory.InventoryReceipt) []appinv.LedgerEntryResponse {
	responses := make([]appinv.LedgerEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = appinv.ToLedgerEntryResponse(entry)
	}
	return responses
}
