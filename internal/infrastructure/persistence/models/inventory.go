package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryReceiptModel is the persistence model for one ledger entry.
// Rows are only ever inserted.
type InventoryReceiptModel struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primary_key"`
	EntryType           inventory.EntryType `gorm:"type:varchar(20);not null;default:'receipt'"`
	PurchaseOrderID     *uuid.UUID          `gorm:"type:uuid;index"`
	PurchaseOrderItemID *uuid.UUID          `gorm:"type:uuid"`
	StoreID             uuid.UUID           `gorm:"type:uuid;not null;index:idx_receipt_store_product,priority:1"`
	ProductID           uuid.UUID           `gorm:"type:uuid;not null;index:idx_receipt_store_product,priority:2"`
	Quantity            int64               `gorm:"not null"`
	UnitCost            decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TotalCost           decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Notes               string              `gorm:"type:text"`
	ActorID             *uuid.UUID          `gorm:"type:uuid"`
	ReceivedAt          time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InventoryReceiptModel) TableName() string {
	return "inventory_receipts"
}

// ToDomain converts the persistence model to a domain ledger entry
func (m *InventoryReceiptModel) ToDomain() *inventory.InventoryReceipt {
	return &inventory.InventoryReceipt{
		ID:                  m.ID,
		EntryType:           m.EntryType,
		PurchaseOrderID:     m.PurchaseOrderID,
		PurchaseOrderItemID: m.PurchaseOrderItemID,
		StoreID:             m.StoreID,
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		UnitCost:            m.UnitCost,
		TotalCost:           m.TotalCost,
		Notes:               m.Notes,
		ActorID:             m.ActorID,
		ReceivedAt:          m.ReceivedAt,
	}
}

// FromDomain populates the persistence model from a domain ledger entry
func (m *InventoryReceiptModel) FromDomain(r *inventory.InventoryReceipt) {
	m.ID = r.ID
	m.EntryType = r.EntryType
	m.PurchaseOrderID = r.PurchaseOrderID
	m.PurchaseOrderItemID = r.PurchaseOrderItemID
	m.StoreID = r.StoreID
	m.ProductID = r.ProductID
	m.Quantity = r.Quantity
	m.UnitCost = r.UnitCost
	m.TotalCost = r.TotalCost
	m.Notes = r.Notes
	m.ActorID = r.ActorID
	m.ReceivedAt = r.ReceivedAt
}

// InventoryReceiptModelFromDomain creates a new persistence model from a domain ledger entry
func InventoryReceiptModelFromDomain(r *inventory.InventoryReceipt) *InventoryReceiptModel {
	m := &InventoryReceiptModel{}
	m.FromDomain(r)
	return m
}

// StoreInventoryModel is the persistence model for one projection row.
// (store_id, product_id) is unique and quantity never drops below zero.
type StoreInventoryModel struct {
	BaseModel
	StoreID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_store_inventory_store_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_store_inventory_store_product,priority:2;index"`
	Quantity  int64           `gorm:"not null;default:0;check:chk_store_inventory_quantity,quantity >= 0"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StoreInventoryModel) TableName() string {
	return "store_inventory"
}

// ToDomain converts the persistence model to a domain projection row
func (m *StoreInventoryModel) ToDomain() *inventory.StoreInventory {
	return &inventory.StoreInventory{
		ID:        m.ID,
		StoreID:   m.StoreID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
