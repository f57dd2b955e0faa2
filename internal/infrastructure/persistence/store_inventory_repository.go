package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStoreInventoryRepository maintains the per-store stock projection using GORM
type GormStoreInventoryRepository struct {
	db *gorm.DB
}

// NewGormStoreInventoryRepository creates a new GormStoreInventoryRepository
func NewGormStoreInventoryRepository(db *gorm.DB) *GormStoreInventoryRepository {
	return &GormStoreInventoryRepository{db: db}
}

// Increment adds delta to a (store, product) row in one upsert statement:
//
//	INSERT ... ON CONFLICT (store_id, product_id)
//	DO UPDATE SET quantity = store_inventory.quantity + delta, unit_cost = ...
//
// The row is created on first receipt. The quantity >= 0 check constraint
// rejects deltas that would take stock negative.
func (r *GormStoreInventoryRepository) Increment(ctx context.Context, storeID, productID uuid.UUID, delta int64, unitCost decimal.Decimal) error {
	now := time.Now()
	row := &models.StoreInventoryModel{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  delta,
		UnitCost:  unitCost,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("store_inventory.quantity + ?", delta),
			"unit_cost":  unitCost,
			"updated_at": now,
		}),
	}).Create(row).Error
}

// FindForUpdate loads one row with SELECT ... FOR UPDATE
func (r *GormStoreInventoryRepository) FindForUpdate(ctx context.Context, storeID, productID uuid.UUID) (*inventory.StoreInventory, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), storeID, productID)
}

// Find loads one row
func (r *GormStoreInventoryRepository) Find(ctx context.Context, storeID, productID uuid.UUID) (*inventory.StoreInventory, error) {
	return r.findOne(r.db.WithContext(ctx), storeID, productID)
}

func (r *GormStoreInventoryRepository) findOne(query *gorm.DB, storeID, productID uuid.UUID) (*inventory.StoreInventory, error) {
	var model models.StoreInventoryModel
	if err := query.
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStore lists every product row of a store
func (r *GormStoreInventoryRepository) FindByStore(ctx context.Context, storeID uuid.UUID) ([]inventory.StoreInventory, error) {
	return r.findMany(r.db.WithContext(ctx).Where("store_id = ?", storeID))
}

// FindByProduct lists every store row holding a product
func (r *GormStoreInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StoreInventory, error) {
	return r.findMany(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// FindAll lists the whole projection
func (r *GormStoreInventoryRepository) FindAll(ctx context.Context) ([]inventory.StoreInventory, error) {
	return r.findMany(r.db.WithContext(ctx))
}

func (r *GormStoreInventoryRepository) findMany(query *gorm.DB) ([]inventory.StoreInventory, error) {
	var rowModels []models.StoreInventoryModel
	if err := query.Order("store_id, product_id").Find(&rowModels).Error; err != nil {
		return nil, err
	}
	rows := make([]inventory.StoreInventory, len(rowModels))
	for i := range rowModels {
		rows[i] = *rowModels[i].ToDomain()
	}
	return rows, nil
}

// SummaryByStore aggregates product count, quantity and value per store
func (r *GormStoreInventoryRepository) SummaryByStore(ctx context.Context) ([]inventory.StoreSummary, error) {
	var rows []struct {
		StoreID       uuid.UUID
		StoreName     string
		StoreCode     string
		ProductCount  int64
		TotalQuantity int64
		TotalValue    decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("store_inventory").
		Select(`stores.id AS store_id, stores.name AS store_name, stores.code AS store_code,
			COUNT(store_inventory.id) AS product_count,
			COALESCE(SUM(store_inventory.quantity), 0) AS total_quantity,
			COALESCE(SUM(store_inventory.quantity * store_inventory.unit_cost), 0) AS total_value`).
		Joins("JOIN stores ON stores.id = store_inventory.store_id").
		Group("stores.id, stores.name, stores.code").
		Order("stores.code").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]inventory.StoreSummary, len(rows))
	for i, row := range rows {
		summaries[i] = inventory.StoreSummary{
			StoreID:       row.StoreID,
			StoreName:     row.StoreName,
			StoreCode:     row.StoreCode,
			ProductCount:  row.ProductCount,
			TotalQuantity: row.TotalQuantity,
			TotalValue:    row.TotalValue,
		}
	}
	return summaries, nil
}

var _ inventory.StoreInventoryRepository = (*GormStoreInventoryRepository)(nil)
