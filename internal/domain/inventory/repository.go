package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptRepository is the append-only ledger
type ReceiptRepository interface {
	// Create appends an entry. There is no update or delete.
	Create(ctx context.Context, receipt *InventoryReceipt) error

	FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]InventoryReceipt, error)

	FindByStoreAndProduct(ctx context.Context, storeID, productID uuid.UUID) ([]InventoryReceipt, error)

	// Balances sums entry quantities per (store, product)
	Balances(ctx context.Context) ([]LedgerBalance, error)
}

// StoreInventoryRepository maintains the per-store projection
type StoreInventoryRepository interface {
	// Increment adds delta to the (store, product) row, creating it on first use,
	// and overwrites the unit cost with unitCost. The update is a single atomic statement.
	Increment(ctx context.Context, storeID, productID uuid.UUID, delta int64, unitCost decimal.Decimal) error

	// FindForUpdate loads one row and locks it for the rest of the transaction
	FindForUpdate(ctx context.Context, storeID, productID uuid.UUID) (*StoreInventory, error)

	Find(ctx context.Context, storeID, productID uuid.UUID) (*StoreInventory, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]StoreInventory, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StoreInventory, error)
	FindAll(ctx context.Context) ([]StoreInventory, error)

	// SummaryByStore aggregates product count, quantity and value per store
	SummaryByStore(ctx context.Context) ([]StoreSummary, error)
}
