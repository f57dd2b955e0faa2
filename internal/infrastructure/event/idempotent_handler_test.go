package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/procurement/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newTestHandler("PurchaseOrderReceived")
	handler := NewIdempotentHandler(inner, store, 0, nil)
	assert.Equal(t, DefaultDeliveryTTL, handler.ttl)
	assert.Equal(t, []string{"PurchaseOrderReceived"}, handler.EventTypes())

	ctx := context.Background()
	event := newTestEvent("PurchaseOrderReceived")

	require.NoError(t, handler.Handle(ctx, event))
	require.NoError(t, handler.Handle(ctx, event))
	require.NoError(t, handler.Handle(ctx, newTestEvent("PurchaseOrderReceived")))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, DeliveryStats{Processed: 2, Duplicate: 1}, handler.Stats())

	processed, err := store.IsProcessed(ctx, "event:"+event.EventID().String())
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestIdempotentHandler_FailureReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newTestHandler("PurchaseOrderSent")
	inner.err = errors.New("metrics exporter down")
	handler := NewIdempotentHandler(inner, store, time.Hour, nil)

	ctx := context.Background()
	event := newTestEvent("PurchaseOrderSent")

	assert.Error(t, handler.Handle(ctx, event))

	inner.err = nil
	require.NoError(t, handler.Handle(ctx, event))
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, DeliveryStats{Processed: 1, Failed: 1}, handler.Stats())
}

func TestIdempotentHandler_StoreErrorStillHandles(t *testing.T) {
	store := new(mockIdempotencyStore)
	event := newTestEvent("PurchaseOrderCancelled")
	key := "event:" + event.EventID().String()
	store.On("MarkProcessed", mock.Anything, key, time.Minute).Return(false, errors.New("redis timeout"))

	inner := newTestHandler("PurchaseOrderCancelled")
	handler := NewIdempotentHandler(inner, store, time.Minute, nil)

	require.NoError(t, handler.Handle(context.Background(), event))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}
