package inventory

import (
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType distinguishes ledger entries
type EntryType string

const (
	// EntryTypeReceipt is stock received against a purchase order line
	EntryTypeReceipt EntryType = "receipt"
	// EntryTypeAdjustment is a manual, signed correction
	EntryTypeAdjustment EntryType = "adjustment"
)

// IsValid returns true if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeReceipt || t == EntryTypeAdjustment
}

func (t EntryType) String() string {
	return string(t)
}

// InventoryReceipt is one immutable ledger entry: a quantity of one product moved
// into (or, for adjustments, out of) one store at one cost.
// Entries are never edited; corrections are new offsetting entries.
type InventoryReceipt struct {
	ID                  uuid.UUID
	EntryType           EntryType
	PurchaseOrderID     *uuid.UUID
	PurchaseOrderItemID *uuid.UUID
	StoreID             uuid.UUID
	ProductID           uuid.UUID
	Quantity            int64           // signed for adjustments, always positive for receipts
	UnitCost            decimal.Decimal // tax-exclusive
	TotalCost           decimal.Decimal
	Notes               string
	ActorID             *uuid.UUID
	ReceivedAt          time.Time
}

// NewReceiptEntry creates the ledger entry for one received order line
func NewReceiptEntry(orderID, itemID, storeID, productID uuid.UUID, quantity int64, unitCost decimal.Decimal, notes string, actorID *uuid.UUID) (*InventoryReceipt, error) {
	if orderID == uuid.Nil || itemID == uuid.Nil {
		return nil, shared.NewValidationError("receipt must reference a purchase order line")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewValidationError("store is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product is required")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("receipt quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("unit cost cannot be negative")
	}

	return &InventoryReceipt{
		ID:                  uuid.New(),
		EntryType:           EntryTypeReceipt,
		PurchaseOrderID:     &orderID,
		PurchaseOrderItemID: &itemID,
		StoreID:             storeID,
		ProductID:           productID,
		Quantity:            quantity,
		UnitCost:            tax.RoundMoney(unitCost),
		TotalCost:           tax.RoundMoney(unitCost.Mul(decimal.NewFromInt(quantity))),
		Notes:               notes,
		ActorID:             actorID,
		ReceivedAt:          time.Now(),
	}, nil
}

// NewAdjustmentEntry creates a signed manual adjustment entry. A reason is mandatory.
func NewAdjustmentEntry(storeID, productID uuid.UUID, delta int64, unitCost decimal.Decimal, reason string, actorID *uuid.UUID) (*InventoryReceipt, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewValidationError("store is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product is required")
	}
	if delta == 0 {
		return nil, shared.NewValidationError("adjustment quantity cannot be zero")
	}
	if reason == "" {
		return nil, shared.NewValidationError("adjustment reason is required")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("unit cost cannot be negative")
	}

	return &InventoryReceipt{
		ID:         uuid.New(),
		EntryType:  EntryTypeAdjustment,
		StoreID:    storeID,
		ProductID:  productID,
		Quantity:   delta,
		UnitCost:   tax.RoundMoney(unitCost),
		TotalCost:  tax.RoundMoney(unitCost.Mul(decimal.NewFromInt(delta))),
		Notes:      reason,
		ActorID:    actorID,
		ReceivedAt: time.Now(),
	}, nil
}

// String is used in logs
func (r *InventoryReceipt) String() string {
	return fmt.Sprintf("%s %d of %s into %s", r.EntryType, r.Quantity, r.ProductID, r.StoreID)
}
