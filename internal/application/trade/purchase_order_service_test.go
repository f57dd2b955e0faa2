package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/tax"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, statuses ...trade.PurchaseOrderStatus) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of ReceiptRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, receipt *inventory.InventoryReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.InventoryReceipt, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryReceipt), args.Error(1)
}

func (m *MockLedgerRepository) FindByStoreAndProduct(ctx context.Context, storeID, productID uuid.UUID) ([]inventory.InventoryReceipt, error) {
	args := m.Called(ctx, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryReceipt), args.Error(1)
}

func (m *MockLedgerRepository) Balances(ctx context.Context) ([]inventory.LedgerBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.LedgerBalance), args.Error(1)
}

type orderServiceFixture struct {
	service   *PurchaseOrderService
	orders    *MockPurchaseOrderRepository
	suppliers *MockSupplierRepository
	products  *MockProductRepository
	ledger    *MockLedgerRepository
	supplier  *partner.Supplier
	product   *catalog.Product
	now       time.Time
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	t.Helper()
	supplier, err := partner.NewSupplier("ACME", "Acme Supplies")
	require.NoError(t, err)
	product, err := catalog.NewProduct("MF-2", "Maize Flour 2kg", tax.ClassStandard)
	require.NoError(t, err)

	f := &orderServiceFixture{
		orders:    new(MockPurchaseOrderRepository),
		suppliers: new(MockSupplierRepository),
		products:  new(MockProductRepository),
		ledger:    new(MockLedgerRepository),
		supplier:  supplier,
		product:   product,
		now:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	f.service = NewPurchaseOrderService(f.orders, f.ledger, f.suppliers, f.products)
	f.service.SetClock(func() time.Time { return f.now })
	return f
}

func (f *orderServiceFixture) existingOrder(t *testing.T, number string, status trade.PurchaseOrderStatus) *trade.PurchaseOrder {
	t.Helper()
	order, err := trade.NewPurchaseOrder(number, f.supplier.ID, f.supplier.Name, f.now, []trade.ItemLine{{
		ProductID:   f.product.ID,
		ProductName: f.product.Name,
		ProductCode: f.product.Code,
		Quantity:    10,
		UnitPrice:   decimal.RequireFromString("116.00"),
		TaxClass:    tax.ClassStandard,
	}})
	require.NoError(t, err)
	switch status {
	case trade.PurchaseOrderStatusSent:
		require.NoError(t, order.Send())
	case trade.PurchaseOrderStatusCancelled:
		require.NoError(t, order.Cancel("no longer needed"))
	}
	order.ClearDomainEvents()
	return order
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives totals from inclusive prices", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.suppliers.On("FindByID", ctx, f.supplier.ID).Return(f.supplier, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{f.product.ID}).Return([]catalog.Product{*f.product}, nil)
		f.orders.On("GenerateOrderNumber", ctx).Return("PO-2026-00001", nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)

		creator := uuid.New()
		resp, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: f.supplier.ID,
			Notes:      "  deliver to back door  ",
			CreatedBy:  &creator,
			Items: []PurchaseOrderItemInput{{
				ProductID: f.product.ID,
				Quantity:  100,
				UnitPrice: decimal.RequireFromString("116.00"),
			}},
		})
		require.NoError(t, err)

		assert.Equal(t, "PO-2026-00001", resp.OrderNumber)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "Acme Supplies", resp.SupplierName)
		assert.Equal(t, "deliver to back door", resp.Notes)
		assert.Equal(t, &creator, resp.CreatedBy)
		assert.True(t, resp.OrderDate.Equal(f.now))
		require.Len(t, resp.Items, 1)
		item := resp.Items[0]
		assert.Equal(t, "16%", item.TaxClass)
		assert.Equal(t, "MF-2", item.ProductCode)
		assert.Equal(t, "100.00", item.UnitPriceExclusive.StringFixed(2))
		assert.Equal(t, "10000.00", resp.Subtotal.StringFixed(2))
		assert.Equal(t, "1600.00", resp.TaxAmount.StringFixed(2))
		assert.Equal(t, "11600.00", resp.TotalAmount.StringFixed(2))

		f.orders.AssertExpectations(t)
	})

	t.Run("explicit tax class overrides the product default", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.suppliers.On("FindByID", ctx, f.supplier.ID).Return(f.supplier, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{f.product.ID}).Return([]catalog.Product{*f.product}, nil)
		f.orders.On("GenerateOrderNumber", ctx).Return("PO-2026-00002", nil)
		f.orders.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: f.supplier.ID,
			Items: []PurchaseOrderItemInput{{
				ProductID: f.product.ID,
				Quantity:  3,
				UnitPrice: decimal.RequireFromString("50.00"),
				TaxClass:  "exempted",
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, "exempted", resp.Items[0].TaxClass)
		assert.Equal(t, "150.00", resp.TotalAmount.StringFixed(2))
		assert.True(t, resp.TaxAmount.IsZero())
	})

	t.Run("takes the next number when a concurrent create won", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.suppliers.On("FindByID", ctx, f.supplier.ID).Return(f.supplier, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{f.product.ID}).Return([]catalog.Product{*f.product}, nil)
		f.orders.On("GenerateOrderNumber", ctx).Return("PO-2026-00007", nil).Once()
		f.orders.On("GenerateOrderNumber", ctx).Return("PO-2026-00008", nil).Once()
		f.orders.On("Save", ctx, mock.MatchedBy(func(o *trade.PurchaseOrder) bool {
			return o.OrderNumber == "PO-2026-00007"
		})).Return(trade.ErrOrderNumberTaken).Once()
		f.orders.On("Save", ctx, mock.MatchedBy(func(o *trade.PurchaseOrder) bool {
			return o.OrderNumber == "PO-2026-00008"
		})).Return(nil).Once()

		resp, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: f.supplier.ID,
			Items:      []PurchaseOrderItemInput{{ProductID: f.product.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("116.00")}},
		})
		require.NoError(t, err)
		assert.Equal(t, "PO-2026-00008", resp.OrderNumber)
		f.orders.AssertExpectations(t)
	})

	t.Run("gives up when every number is taken", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.suppliers.On("FindByID", ctx, f.supplier.ID).Return(f.supplier, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{f.product.ID}).Return([]catalog.Product{*f.product}, nil)
		f.orders.On("GenerateOrderNumber", ctx).Return("PO-2026-00009", nil)
		f.orders.On("Save", ctx, mock.Anything).Return(trade.ErrOrderNumberTaken)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: f.supplier.ID,
			Items:      []PurchaseOrderItemInput{{ProductID: f.product.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("116.00")}},
		})
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		f.orders.AssertNumberOfCalls(t, "Save", orderNumberAttempts)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.suppliers.On("FindByID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: uuid.New(),
			Items:      []PurchaseOrderItemInput{{ProductID: f.product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing supplier", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		missing := uuid.New()
		f.suppliers.On("FindByID", ctx, f.supplier.ID).Return(f.supplier, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{missing}).Return([]catalog.Product{}, nil)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: f.supplier.ID,
			Items:      []PurchaseOrderItemInput{{ProductID: missing, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("unsupported tax class", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.suppliers.On("FindByID", ctx, f.supplier.ID).Return(f.supplier, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{f.product.ID}).Return([]catalog.Product{*f.product}, nil)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID: f.supplier.ID,
			Items: []PurchaseOrderItemInput{{
				ProductID: f.product.ID,
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(1),
				TaxClass:  "8%",
			}},
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestPurchaseOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusDraft)

	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("FindByID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

	resp, err := f.service.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, resp.ID)
	assert.Equal(t, int64(10), resp.TotalQuantity)

	_, err = f.service.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestPurchaseOrderService_GetWithReceipts(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusSent)

	entry, err := inventory.NewReceiptEntry(order.ID, order.Items[0].ID, uuid.New(), f.product.ID, 4,
		decimal.RequireFromString("100.00"), "", nil)
	require.NoError(t, err)

	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.ledger.On("FindByPurchaseOrder", ctx, order.ID).Return([]inventory.InventoryReceipt{*entry}, nil)

	resp, err := f.service.GetWithReceipts(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, resp.OrderNumber)
	require.Len(t, resp.Receipts, 1)
	assert.Equal(t, int64(4), resp.Receipts[0].Quantity)
}

func TestPurchaseOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)

	orders := []trade.PurchaseOrder{
		*f.existingOrder(t, "PO-2026-00003", trade.PurchaseOrderStatusSent),
		*f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusSent),
		*f.existingOrder(t, "PO-2026-00002", trade.PurchaseOrderStatusDraft),
	}
	f.orders.On("FindAll", ctx, []trade.PurchaseOrderStatus{trade.PurchaseOrderStatusSent}).Return(orders, nil)
	f.orders.On("FindAll", ctx, []trade.PurchaseOrderStatus(nil)).Return(orders, nil)

	t.Run("filters by status and sorts", func(t *testing.T) {
		items, total, err := f.service.List(ctx, PurchaseOrderListFilter{
			Statuses:  []string{"sent"},
			SortBy:    "order_number",
			SortOrder: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		assert.Equal(t, "PO-2026-00001", items[0].OrderNumber)
		assert.Equal(t, "PO-2026-00003", items[1].OrderNumber)
	})

	t.Run("paginates", func(t *testing.T) {
		items, total, err := f.service.List(ctx, PurchaseOrderListFilter{
			SortBy:    "order_number",
			SortOrder: "desc",
			Page:      2,
			PageSize:  2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 1)
		assert.Equal(t, "PO-2026-00001", items[0].OrderNumber)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, _, err := f.service.List(ctx, PurchaseOrderListFilter{Statuses: []string{"shipped"}})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects inverted custom range", func(t *testing.T) {
		from := f.now
		to := f.now.AddDate(0, 0, -3)
		_, _, err := f.service.List(ctx, PurchaseOrderListFilter{DateRange: "custom", From: &from, To: &to})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("custom range needs both bounds", func(t *testing.T) {
		from := f.now.AddDate(0, 0, -3)
		to := f.now
		for _, filter := range []PurchaseOrderListFilter{
			{DateRange: "custom"},
			{DateRange: "custom", From: &from},
			{DateRange: "custom", To: &to},
		} {
			items, total, err := f.service.List(ctx, filter)
			assert.True(t, errors.Is(err, shared.ErrValidation))
			assert.Nil(t, items)
			assert.Zero(t, total)
		}
	})

	t.Run("custom range with both bounds", func(t *testing.T) {
		from := f.now.AddDate(0, 0, -1)
		to := f.now
		_, total, err := f.service.List(ctx, PurchaseOrderListFilter{DateRange: "custom", From: &from, To: &to})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestPurchaseOrderService_StatusSummary(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	orders := []trade.PurchaseOrder{
		*f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusDraft),
		*f.existingOrder(t, "PO-2026-00002", trade.PurchaseOrderStatusSent),
		*f.existingOrder(t, "PO-2026-00003", trade.PurchaseOrderStatusCancelled),
	}
	f.orders.On("FindAll", ctx, []trade.PurchaseOrderStatus(nil)).Return(orders, nil)

	summary, err := f.service.StatusSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Draft)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Cancelled)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, "1160.00", summary.OpenValue.StringFixed(2))
}

func TestPurchaseOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces lines of a draft", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusDraft)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{f.product.ID}).Return([]catalog.Product{*f.product}, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := f.service.Update(ctx, order.ID, UpdatePurchaseOrderRequest{
			Notes: "revised",
			Items: []PurchaseOrderItemInput{{
				ProductID: f.product.ID,
				Quantity:  20,
				UnitPrice: decimal.RequireFromString("116.00"),
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20), resp.TotalQuantity)
		assert.Equal(t, "2320.00", resp.TotalAmount.StringFixed(2))
		assert.Equal(t, "revised", resp.Notes)
		f.orders.AssertExpectations(t)
	})

	t.Run("sent orders are read only", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusSent)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.Update(ctx, order.ID, UpdatePurchaseOrderRequest{
			Items: []PurchaseOrderItemInput{{ProductID: f.product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_SendAndCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("send publishes the sent event", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		publisher := &recordingPublisher{}
		f.service.SetEventPublisher(publisher)
		order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusDraft)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := f.service.Send(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		assert.NotNil(t, resp.SentAt)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, trade.EventTypePurchaseOrderSent, publisher.events[0].EventType())
	})

	t.Run("cancelled draft cannot be sent", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusDraft)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := f.service.Cancel(ctx, order.ID, CancelPurchaseOrderRequest{Reason: " duplicate "})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "duplicate", resp.CancelReason)

		_, err = f.service.Send(ctx, order.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.orders.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("version conflict surfaces", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		order := f.existingOrder(t, "PO-2026-00001", trade.PurchaseOrderStatusDraft)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(shared.NewConcurrencyError("stale"))

		_, err := f.service.Send(ctx, order.ID)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})
}
