package handler

import (
	"errors"
	"net/http"
	"testing"

	tradeapp "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupPurchaseOrderRouter() (*gin.Engine, *mockOrderService, *mockReceiver) {
	orders := new(mockOrderService)
	receiver := new(mockReceiver)
	h := NewPurchaseOrderHandler(orders, receiver)

	r := newTestRouter()
	po := r.Group("/api/v1/purchase-orders")
	po.POST("", h.Create)
	po.GET("", h.List)
	po.GET("/summary", h.Summary)
	po.GET("/by-number/:order_number", h.GetByOrderNumber)
	po.GET("/:id", h.GetByID)
	po.PUT("/:id", h.Update)
	po.POST("/:id/send", h.Send)
	po.POST("/:id/cancel", h.Cancel)
	po.POST("/:id/receive", h.Receive)
	po.GET("/:id/receivable-items", h.ReceivableItems)
	return r, orders, receiver
}

func sampleOrder(status string) *tradeapp.PurchaseOrderResponse {
	return &tradeapp.PurchaseOrderResponse{
		ID:          uuid.New(),
		OrderNumber: "PO-2026-00007",
		SupplierID:  uuid.New(),
		Status:      status,
		TotalAmount: decimal.RequireFromString("1160"),
	}
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	supplierID := uuid.New()
	productID := uuid.New()
	actorID := uuid.New()

	t.Run("creates a draft with the acting user", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		order := sampleOrder("draft")
		orders.On("Create", mock.Anything, mock.MatchedBy(func(req tradeapp.CreatePurchaseOrderRequest) bool {
			return req.SupplierID == supplierID &&
				len(req.Items) == 1 &&
				req.Items[0].Quantity == 10 &&
				req.Items[0].UnitPrice.Equal(decimal.RequireFromString("116")) &&
				req.CreatedBy != nil && *req.CreatedBy == actorID
		})).Return(order, nil)

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"supplier_id": supplierID,
			"items": []map[string]any{
				{"product_id": productID, "quantity": 10, "unit_price": "116", "tax_class": "16%"},
			},
		}, withHeader("X-User-ID", actorID.String()))

		assert.Equal(t, http.StatusCreated, w.Code)
		var got tradeapp.PurchaseOrderResponse
		resp := decode(t, w, &got)
		assert.True(t, resp.Success)
		assert.Equal(t, "PO-2026-00007", got.OrderNumber)
		orders.AssertExpectations(t)
	})

	t.Run("missing items is a validation error", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{"supplier_id": supplierID})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "items", resp.Error.Details[0].Field)
		assert.NotEmpty(t, resp.Error.RequestID)
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		r, _, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"supplier_id": supplierID,
			"items":       []map[string]any{{"product_id": productID, "quantity": 0, "unit_price": "10"}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("malformed supplier id", func(t *testing.T) {
		r, _, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders", `{"supplier_id":"not-a-uuid","items":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("malformed actor header", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"supplier_id": supplierID,
			"items":       []map[string]any{{"product_id": productID, "quantity": 1, "unit_price": "10"}},
		}, withHeader("X-User-ID", "admin"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Create", mock.Anything, mock.Anything).Return(nil, shared.NewNotFoundError("supplier not found"))

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"supplier_id": supplierID,
			"items":       []map[string]any{{"product_id": productID, "quantity": 1, "unit_price": "10"}},
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, "supplier not found", resp.Error.Message)
	})
}

func TestPurchaseOrderHandler_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		order := sampleOrder("partially_received")
		orders.On("GetWithReceipts", mock.Anything, order.ID).
			Return(&tradeapp.PurchaseOrderWithReceiptsResponse{PurchaseOrderResponse: *order}, nil)

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders/"+order.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got tradeapp.PurchaseOrderWithReceiptsResponse
		decode(t, w, &got)
		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, "partially_received", got.Status)
	})

	t.Run("not found", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("GetWithReceipts", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		r, _, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders/42", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseOrderHandler_GetByOrderNumber(t *testing.T) {
	r, orders, _ := setupPurchaseOrderRouter()
	order := sampleOrder("sent")
	orders.On("GetByOrderNumber", mock.Anything, "PO-2026-00007").Return(order, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders/by-number/PO-2026-00007", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	orders.AssertExpectations(t)
}

func TestPurchaseOrderHandler_List(t *testing.T) {
	t.Run("binds filters and paginates", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		rows := []tradeapp.PurchaseOrderListItemResponse{{ID: uuid.New(), OrderNumber: "PO-2026-00011"}}
		orders.On("List", mock.Anything, mock.MatchedBy(func(f tradeapp.PurchaseOrderListFilter) bool {
			return assert.ObjectsAreEqual([]string{"sent", "partially_received"}, f.Statuses) &&
				f.Search == "acme" &&
				f.DateRange == "7d" &&
				f.SortBy == "total" && f.SortOrder == "asc" &&
				f.Page == 2 && f.PageSize == 10
		})).Return(rows, int64(11), nil)

		w := doRequest(t, r, http.MethodGet,
			"/api/v1/purchase-orders?status=sent&status=partially_received&search=acme&date_range=7d&sort_by=total&sort_order=asc&page=2&page_size=10", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []tradeapp.PurchaseOrderListItemResponse
		resp := decode(t, w, &got)
		require.Len(t, got, 1)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(11), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.TotalPages)
		orders.AssertExpectations(t)
	})

	t.Run("defaults page and size", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("List", mock.Anything, mock.MatchedBy(func(f tradeapp.PurchaseOrderListFilter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return([]tradeapp.PurchaseOrderListItemResponse{}, int64(0), nil)

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("custom range binds dates", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("List", mock.Anything, mock.MatchedBy(func(f tradeapp.PurchaseOrderListFilter) bool {
			return f.From != nil && f.From.Format("2006-01-02") == "2026-01-01" &&
				f.To != nil && f.To.Format("2006-01-02") == "2026-01-31"
		})).Return([]tradeapp.PurchaseOrderListItemResponse{}, int64(0), nil)

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders?date_range=custom&from=2026-01-01&to=2026-01-31", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("unknown date range", func(t *testing.T) {
		r, _, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders?date_range=yesterday", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "date_range", resp.Error.Details[0].Field)
	})

	t.Run("service validation error", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("List", mock.Anything, mock.Anything).
			Return(nil, int64(0), shared.NewValidationError("custom range needs from and to"))

		w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders?date_range=custom", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseOrderHandler_Summary(t *testing.T) {
	r, orders, _ := setupPurchaseOrderRouter()
	orders.On("StatusSummary", mock.Anything).Return(&tradeapp.PurchaseOrderStatusSummaryResponse{
		Draft: 2, Sent: 1, Total: 3, OpenValue: decimal.RequireFromString("580"),
	}, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders/summary", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got tradeapp.PurchaseOrderStatusSummaryResponse
	decode(t, w, &got)
	assert.Equal(t, 3, got.Total)
	assert.True(t, got.OpenValue.Equal(decimal.RequireFromString("580")))
}

func TestPurchaseOrderHandler_Update(t *testing.T) {
	orderID := uuid.New()

	t.Run("only drafts can be updated", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Update", mock.Anything, orderID, mock.Anything).
			Return(nil, shared.NewInvalidStateError("cannot update order in sent status"))

		w := doRequest(t, r, http.MethodPut, "/api/v1/purchase-orders/"+orderID.String(), map[string]any{
			"items": []map[string]any{{"product_id": uuid.New(), "quantity": 3, "unit_price": "50"}},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("stale version", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Update", mock.Anything, orderID, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		w := doRequest(t, r, http.MethodPut, "/api/v1/purchase-orders/"+orderID.String(), map[string]any{
			"items": []map[string]any{{"product_id": uuid.New(), "quantity": 3, "unit_price": "50"}},
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPurchaseOrderHandler_SendAndCancel(t *testing.T) {
	orderID := uuid.New()

	t.Run("send", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Send", mock.Anything, orderID).Return(sampleOrder("sent"), nil)

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/send", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("cancel without body", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Cancel", mock.Anything, orderID, tradeapp.CancelPurchaseOrderRequest{}).
			Return(sampleOrder("cancelled"), nil)

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/cancel", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("cancel with reason", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Cancel", mock.Anything, orderID, tradeapp.CancelPurchaseOrderRequest{Reason: "supplier out of stock"}).
			Return(sampleOrder("cancelled"), nil)

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/cancel",
			map[string]any{"reason": "supplier out of stock"})

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("cancel a received order", func(t *testing.T) {
		r, orders, _ := setupPurchaseOrderRouter()
		orders.On("Cancel", mock.Anything, orderID, mock.Anything).
			Return(nil, shared.NewInvalidStateError("cannot cancel order in received status"))

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/cancel", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPurchaseOrderHandler_Receive(t *testing.T) {
	orderID := uuid.New()
	storeID := uuid.New()
	itemID := uuid.New()
	body := map[string]any{
		"store_id": storeID,
		"items":    []map[string]any{{"item_id": itemID, "quantity": 4, "unit_cost_exclusive": "95.50"}},
	}

	t.Run("passes actor and idempotency key", func(t *testing.T) {
		r, _, receiver := setupPurchaseOrderRouter()
		actorID := uuid.New()
		receiver.On("Receive", mock.Anything, orderID, mock.MatchedBy(func(req tradeapp.ReceiveItemsRequest) bool {
			return req.StoreID == storeID &&
				req.IdempotencyKey == "rcv-001" &&
				req.ActorID != nil && *req.ActorID == actorID &&
				len(req.Items) == 1 && req.Items[0].ItemID == itemID && req.Items[0].Quantity == 4 &&
				req.Items[0].UnitCostExclusive != nil &&
				req.Items[0].UnitCostExclusive.Equal(decimal.RequireFromString("95.5"))
		})).Return(&tradeapp.ReceivingResultResponse{
			Order:           *sampleOrder("partially_received"),
			StoreID:         storeID,
			IsFullyReceived: false,
		}, nil)

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", body,
			withHeader(IdempotencyKeyHeader, "rcv-001"),
			withHeader("X-User-ID", actorID.String()))

		assert.Equal(t, http.StatusOK, w.Code)
		var got tradeapp.ReceivingResultResponse
		decode(t, w, &got)
		assert.Equal(t, storeID, got.StoreID)
		assert.Equal(t, "partially_received", got.Order.Status)
		receiver.AssertExpectations(t)
	})

	t.Run("quantity exceeded carries line details", func(t *testing.T) {
		r, _, receiver := setupPurchaseOrderRouter()
		receiver.On("Receive", mock.Anything, orderID, mock.Anything).
			Return(nil, shared.NewQuantityExceededError(itemID.String(), "Cooking oil 5L", 2, 4))

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeQuantityExceeded, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, itemID.String(), resp.Error.Details[0].ItemID)
		assert.Equal(t, int64(2), *resp.Error.Details[0].Remaining)
		assert.Equal(t, int64(4), *resp.Error.Details[0].Requested)
	})

	t.Run("replayed key", func(t *testing.T) {
		r, _, receiver := setupPurchaseOrderRouter()
		receiver.On("Receive", mock.Anything, orderID, mock.Anything).Return(nil, shared.ErrDuplicateRequest)

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", body,
			withHeader(IdempotencyKeyHeader, "rcv-001"))

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeDuplicateRequest, resp.Error.Code)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		r, _, receiver := setupPurchaseOrderRouter()
		receiver.On("Receive", mock.Anything, orderID, mock.Anything).
			Return(nil, shared.NewConcurrencyError("order kept changing, try again"))

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", body)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("store is required", func(t *testing.T) {
		r, _, receiver := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", map[string]any{
			"items": []map[string]any{{"item_id": itemID, "quantity": 1}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, "store_id", resp.Error.Details[0].Field)
		receiver.AssertNotCalled(t, "Receive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative quantity", func(t *testing.T) {
		r, _, _ := setupPurchaseOrderRouter()

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", map[string]any{
			"store_id": storeID,
			"items":    []map[string]any{{"item_id": itemID, "quantity": -1}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, "items[0].quantity", resp.Error.Details[0].Field)
	})

	t.Run("infrastructure failure is hidden", func(t *testing.T) {
		r, _, receiver := setupPurchaseOrderRouter()
		receiver.On("Receive", mock.Anything, orderID, mock.Anything).
			Return(nil, errors.New("pq: could not serialize access"))

		w := doRequest(t, r, http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq:")
	})
}

func TestPurchaseOrderHandler_ReceivableItems(t *testing.T) {
	r, orders, _ := setupPurchaseOrderRouter()
	orderID := uuid.New()
	orders.On("GetReceivableItems", mock.Anything, orderID).Return([]tradeapp.PurchaseOrderItemResponse{
		{ID: uuid.New(), Quantity: 10, ReceivedQuantity: 4, RemainingQuantity: 6},
	}, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/purchase-orders/"+orderID.String()+"/receivable-items", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []tradeapp.PurchaseOrderItemResponse
	decode(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, int64(6), got[0].RemainingQuantity)
}
