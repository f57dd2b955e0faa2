package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrOrderNumberTaken is returned by Save when another order already holds the number
var ErrOrderNumberTaken = errors.New("order number already taken")

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID loads an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate loads an order with its items and holds a row lock on the
	// order until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindAll loads every order with its items, optionally restricted to the given statuses
	FindAll(ctx context.Context, statuses ...PurchaseOrderStatus) ([]PurchaseOrder, error)

	// Save inserts or fully rewrites an order and its items.
	// Returns ErrOrderNumberTaken when the order number is already in use.
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock persists header changes and item received quantities only if
	// the stored version still equals order.Version, then advances the version.
	// Returns a CONCURRENCY_CONFLICT error otherwise.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// GenerateOrderNumber allocates the next PO-YYYY-NNNNN number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
