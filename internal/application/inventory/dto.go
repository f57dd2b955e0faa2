package inventory

import (
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreInventoryResponse is one projection row
type StoreInventoryResponse struct {
	StoreID   uuid.UUID       `json:"store_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Value     decimal.Decimal `json:"value"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// StoreSummaryResponse aggregates one store
type StoreSummaryResponse struct {
	StoreID       uuid.UUID       `json:"store_id"`
	StoreCode     string          `json:"store_code"`
	StoreName     string          `json:"store_name"`
	ProductCount  int64           `json:"product_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// AdjustStockRequest sets the counted quantity of a product in a store
type AdjustStockRequest struct {
	StoreID        uuid.UUID        `json:"store_id" binding:"required"`
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	ActualQuantity int64            `json:"actual_quantity" binding:"min=0"`
	UnitCost       *decimal.Decimal `json:"unit_cost"`
	Reason         string           `json:"reason" binding:"required,max=500"`
	ActorID        *uuid.UUID       `json:"-"`
}

// LedgerEntryResponse is one ledger entry
type LedgerEntryResponse struct {
	ID                  uuid.UUID       `json:"id"`
	EntryType           string          `json:"entry_type"`
	PurchaseOrderID     *uuid.UUID      `json:"purchase_order_id,omitempty"`
	PurchaseOrderItemID *uuid.UUID      `json:"purchase_order_item_id,omitempty"`
	StoreID             uuid.UUID       `json:"store_id"`
	ProductID           uuid.UUID       `json:"product_id"`
	Quantity            int64           `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	Notes               string          `json:"notes,omitempty"`
	ActorID             *uuid.UUID      `json:"actor_id,omitempty"`
	ReceivedAt          time.Time       `json:"received_at"`
}

// StockAdjustmentResponse is the result of AdjustStock
type StockAdjustmentResponse struct {
	Stock StoreInventoryResponse `json:"stock"`
	// Entry is nil when the counted quantity already matched
	Entry *LedgerEntryResponse `json:"entry,omitempty"`
}

// LedgerMismatchResponse is one inconsistent (store, product) pair
type LedgerMismatchResponse struct {
	StoreID            uuid.UUID `json:"store_id"`
	ProductID          uuid.UUID `json:"product_id"`
	LedgerQuantity     int64     `json:"ledger_quantity"`
	ProjectionQuantity int64     `json:"projection_quantity"`
	Difference         int64     `json:"difference"`
}

// LedgerVerificationResponse reports whether the projection matches the ledger
type LedgerVerificationResponse struct {
	Consistent bool                     `json:"consistent"`
	CheckedAt  time.Time                `json:"checked_at"`
	Mismatches []LedgerMismatchResponse `json:"mismatches"`
}

// ToStoreInventoryResponse converts a projection row
func ToStoreInventoryResponse(row *inventory.StoreInventory) StoreInventoryResponse {
	updated := row.UpdatedAt
	return StoreInventoryResponse{
		StoreID:   row.StoreID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		UnitCost:  row.UnitCost,
		Value:     row.Value(),
		UpdatedAt: &updated,
	}
}

// ToStoreInventoryResponses converts projection rows
func ToStoreInventoryResponses(rows []inventory.StoreInventory) []StoreInventoryResponse {
	responses := make([]StoreInventoryResponse, len(rows))
	for i := range rows {
		responses[i] = ToStoreInventoryResponse(&rows[i])
	}
	return responses
}

// ToLedgerEntryResponse converts a ledger entry
func ToLedgerEntryResponse(entry *inventory.InventoryReceipt) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                  entry.ID,
		EntryType:           entry.EntryType.String(),
		PurchaseOrderID:     entry.PurchaseOrderID,
		PurchaseOrderItemID: entry.PurchaseOrderItemID,
		StoreID:             entry.StoreID,
		ProductID:           entry.ProductID,
		Quantity:            entry.Quantity,
		UnitCost:            entry.UnitCost,
		TotalCost:           entry.TotalCost,
		Notes:               entry.Notes,
		ActorID:             entry.ActorID,
		ReceivedAt:          entry.ReceivedAt,
	}
}

// ToLedgerEntryResponses converts ledger entries
func ToLedgerEntryResponses(entries []inventory.InventoryReceipt) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToLedgerEntryResponse(&entries[i])
	}
	return responses
}
