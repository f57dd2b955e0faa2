package inventory

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories that take
// part in receiving and stock adjustment. Everything done through the repositories
// handed to fn commits or rolls back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories sharing one transaction.
//
//   - OrderRepo: purchase orders, including the row-locking read used by receiving
//   - ReceiptRepo: append-only ledger
//   - StockRepo: per-store projection, changed only by ledger-driven deltas
//   - StoreRepo: store lookups
type TransactionalRepositories interface {
	OrderRepo() trade.PurchaseOrderRepository
	ReceiptRepo() inventory.ReceiptRepository
	StockRepo() inventory.StoreInventoryRepository
	StoreRepo() partner.StoreRepository
}

// NoOpTransactionScope runs fn directly against the given repositories without a transaction.
// Useful in tests where the repositories are mocks.
type NoOpTransactionScope struct {
	orderRepo   trade.PurchaseOrderRepository
	receiptRepo inventory.ReceiptRepository
	stockRepo   inventory.StoreInventoryRepository
	storeRepo   partner.StoreRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo trade.PurchaseOrderRepository,
	receiptRepo inventory.ReceiptRepository,
	stockRepo inventory.StoreInventoryRepository,
	storeRepo partner.StoreRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		receiptRepo: receiptRepo,
		stockRepo:   stockRepo,
		storeRepo:   storeRepo,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() trade.PurchaseOrderRepository {
	return s.orderRepo
}

func (s *NoOpTransactionScope) ReceiptRepo() inventory.ReceiptRepository {
	return s.receiptRepo
}

func (s *NoOpTransactionScope) StockRepo() inventory.StoreInventoryRepository {
	return s.stockRepo
}

func (s *NoOpTransactionScope) StoreRepo() partner.StoreRepository {
	return s.storeRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
