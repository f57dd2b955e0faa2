package handler

import (
	"context"

	appinv "github.com/erp/procurement/internal/application/inventory"
	tradeapp "github.com/erp/procurement/internal/application/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Create(ctx context.Context, req tradeapp.CreatePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderResponse), args.Error(1)
}

func (m *mockOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*tradeapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderResponse), args.Error(1)
}

func (m *mockOrderService) GetWithReceipts(ctx context.Context, orderID uuid.UUID) (*tradeapp.PurchaseOrderWithReceiptsResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderWithReceiptsResponse), args.Error(1)
}

func (m *mockOrderService) GetReceivableItems(ctx context.Context, orderID uuid.UUID) ([]tradeapp.PurchaseOrderItemResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tradeapp.PurchaseOrderItemResponse), args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, filter tradeapp.PurchaseOrderListFilter) ([]tradeapp.PurchaseOrderListItemResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]tradeapp.PurchaseOrderListItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderService) StatusSummary(ctx context.Context) (*tradeapp.PurchaseOrderStatusSummaryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderStatusSummaryResponse), args.Error(1)
}

func (m *mockOrderService) Update(ctx context.Context, orderID uuid.UUID, req tradeapp.UpdatePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderResponse), args.Error(1)
}

func (m *mockOrderService) Send(ctx context.Context, orderID uuid.UUID) (*tradeapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderResponse), args.Error(1)
}

func (m *mockOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req tradeapp.CancelPurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseOrderResponse), args.Error(1)
}

type mockReceiver struct {
	mock.Mock
}

func (m *mockReceiver) Receive(ctx context.Context, orderID uuid.UUID, req tradeapp.ReceiveItemsRequest) (*tradeapp.ReceivingResultResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.ReceivingResultResponse), args.Error(1)
}

type mockInventoryService struct {
	mock.Mock
}

func (m *mockInventoryService) QuantityOf(ctx context.Context, storeID, productID uuid.UUID) (*appinv.StoreInventoryResponse, error) {
	args := m.Called(ctx, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.StoreInventoryResponse), args.Error(1)
}

func (m *mockInventoryService) AllForStore(ctx context.Context, storeID uuid.UUID) ([]appinv.StoreInventoryResponse, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.StoreInventoryResponse), args.Error(1)
}

func (m *mockInventoryService) AllForProduct(ctx context.Context, productID uuid.UUID) ([]appinv.StoreInventoryResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.StoreInventoryResponse), args.Error(1)
}

func (m *mockInventoryService) SummaryByStore(ctx context.Context) ([]appinv.StoreSummaryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.StoreSummaryResponse), args.Error(1)
}

func (m *mockInventoryService) AdjustStock(ctx context.Context, req appinv.AdjustStockRequest) (*appinv.StockAdjustmentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.StockAdjustmentResponse), args.Error(1)
}

func (m *mockInventoryService) VerifyLedger(ctx context.Context) (*appinv.LedgerVerificationResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.LedgerVerificationResponse), args.Error(1)
}

var (
	_ PurchaseOrderService = (*tradeapp.PurchaseOrderService)(nil)
	_ Receiver             = (*tradeapp.ReceivingService)(nil)
	_ InventoryService     = (*appinv.StoreInventoryService)(nil)
)
