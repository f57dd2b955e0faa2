package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements the append-only ledger using GORM.
// It deliberately exposes no update or delete.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Create appends a ledger entry
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *inventory.InventoryReceipt) error {
	return r.db.WithContext(ctx).Create(models.InventoryReceiptModelFromDomain(receipt)).Error
}

// FindByPurchaseOrder returns every entry posted against an order, oldest first
func (r *GormReceiptRepository) FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.InventoryReceipt, error) {
	return r.find(r.db.WithContext(ctx).Where("purchase_order_id = ?", orderID))
}

// FindByStoreAndProduct returns every entry for one (store, product) pair, oldest first
func (r *GormReceiptRepository) FindByStoreAndProduct(ctx context.Context, storeID, productID uuid.UUID) ([]inventory.InventoryReceipt, error) {
	return r.find(r.db.WithContext(ctx).Where("store_id = ? AND product_id = ?", storeID, productID))
}

func (r *GormReceiptRepository) find(query *gorm.DB) ([]inventory.InventoryReceipt, error) {
	var receiptModels []models.InventoryReceiptModel
	if err := query.Order("received_at ASC, id ASC").Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	receipts := make([]inventory.InventoryReceipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = *receiptModels[i].ToDomain()
	}
	return receipts, nil
}

// Balances sums entry quantities per (store, product)
func (r *GormReceiptRepository) Balances(ctx context.Context) ([]inventory.LedgerBalance, error) {
	var rows []struct {
		StoreID   uuid.UUID
		ProductID uuid.UUID
		Quantity  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryReceiptModel{}).
		Select("store_id, product_id, SUM(quantity) AS quantity").
		Group("store_id, product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]inventory.LedgerBalance, len(rows))
	for i, row := range rows {
		balances[i] = inventory.LedgerBalance{
			StoreID:   row.StoreID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		}
	}
	return balances, nil
}

var _ inventory.ReceiptRepository = (*GormReceiptRepository)(nil)
