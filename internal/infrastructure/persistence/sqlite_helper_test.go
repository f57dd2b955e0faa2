package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/tax"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with the full schema.
// A single connection keeps every query on the same in-memory database and
// serializes concurrent transactions.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

type seededData struct {
	supplier *partner.Supplier
	product  *catalog.Product
	nairobi  *partner.Store
	mombasa  *partner.Store
	order    *trade.PurchaseOrder
}

// seedSentOrder stores a supplier, a product, two stores and a sent order for
// quantity units at 116.00 inclusive of 16% tax
func seedSentOrder(t *testing.T, db *gorm.DB, quantity int64) seededData {
	t.Helper()
	ctx := context.Background()

	supplier, err := partner.NewSupplier("ACME", "Acme Supplies")
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierRepository(db).Save(ctx, supplier))

	product, err := catalog.NewProduct("SKU-1", "Maize Flour 2kg", tax.ClassStandard)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, product))

	stores := NewGormStoreRepository(db)
	nairobi, err := partner.NewStore("NRB-01", "Nairobi CBD")
	require.NoError(t, err)
	require.NoError(t, stores.Save(ctx, nairobi))
	mombasa, err := partner.NewStore("MSA-01", "Mombasa Road")
	require.NoError(t, err)
	require.NoError(t, stores.Save(ctx, mombasa))

	order, err := trade.NewPurchaseOrder("PO-2026-00001", supplier.ID, supplier.Name, time.Now(), []trade.ItemLine{{
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductCode: product.Code,
		Quantity:    quantity,
		UnitPrice:   decimal.RequireFromString("116.00"),
		TaxClass:    tax.ClassStandard,
	}})
	require.NoError(t, err)
	require.NoError(t, order.Send())
	order.ClearDomainEvents()
	require.NoError(t, NewGormPurchaseOrderRepository(db).Save(ctx, order))

	return seededData{
		supplier: supplier,
		product:  product,
		nairobi:  nairobi,
		mombasa:  mombasa,
		order:    order,
	}
}
