package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StoreInventoryService serves stock-level reads from the per-store projection
// and owns the audited manual adjustment path.
type StoreInventoryService struct {
	stockRepo   inventory.StoreInventoryRepository
	receiptRepo inventory.ReceiptRepository
	storeRepo   partner.StoreRepository
	txScope     TransactionScope
	logger      *zap.Logger
}

// NewStoreInventoryService creates a new StoreInventoryService
func NewStoreInventoryService(
	stockRepo inventory.StoreInventoryRepository,
	receiptRepo inventory.ReceiptRepository,
	storeRepo partner.StoreRepository,
	txScope TransactionScope,
) *StoreInventoryService {
	return &StoreInventoryService{
		stockRepo:   stockRepo,
		receiptRepo: receiptRepo,
		storeRepo:   storeRepo,
		txScope:     txScope,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *StoreInventoryService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// QuantityOf returns the projection row for a pair. A pair that never received stock reports zero.
func (s *StoreInventoryService) QuantityOf(ctx context.Context, storeID, productID uuid.UUID) (*StoreInventoryResponse, error) {
	row, err := s.stockRepo.Find(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &StoreInventoryResponse{
				StoreID:   storeID,
				ProductID: productID,
				UnitCost:  decimal.Zero,
				Value:     decimal.Zero,
			}, nil
		}
		return nil, err
	}
	response := ToStoreInventoryResponse(row)
	return &response, nil
}

// AllForStore lists every product held by a store
func (s *StoreInventoryService) AllForStore(ctx context.Context, storeID uuid.UUID) ([]StoreInventoryResponse, error) {
	if _, err := s.findStore(ctx, s.storeRepo, storeID); err != nil {
		return nil, err
	}
	rows, err := s.stockRepo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return ToStoreInventoryResponses(rows), nil
}

// AllForProduct lists every store holding a product
func (s *StoreInventoryService) AllForProduct(ctx context.Context, productID uuid.UUID) ([]StoreInventoryResponse, error) {
	rows, err := s.stockRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToStoreInventoryResponses(rows), nil
}

// SummaryByStore aggregates product count, quantity and value per store
func (s *StoreInventoryService) SummaryByStore(ctx context.Context) ([]StoreSummaryResponse, error) {
	summaries, err := s.stockRepo.SummaryByStore(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]StoreSummaryResponse, len(summaries))
	for i, sum := range summaries {
		responses[i] = StoreSummaryResponse{
			StoreID:       sum.StoreID,
			StoreCode:     sum.StoreCode,
			StoreName:     sum.StoreName,
			ProductCount:  sum.ProductCount,
			TotalQuantity: sum.TotalQuantity,
			TotalValue:    sum.TotalValue,
		}
	}
	return responses, nil
}

// AdjustStock sets the counted quantity for a pair. The difference is written to
// the ledger as an adjustment entry and applied to the projection in the same transaction.
func (s *StoreInventoryService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockAdjustmentResponse, error) {
	if req.ActualQuantity < 0 {
		return nil, shared.NewValidationError("actual quantity cannot be negative")
	}
	if req.Reason == "" {
		return nil, shared.NewValidationError("adjustment reason is required")
	}
	if req.UnitCost != nil && req.UnitCost.IsNegative() {
		return nil, shared.NewValidationError("unit cost cannot be negative")
	}

	ctx = logger.WithScope(ctx, logger.Scope{StoreID: req.StoreID.String()})
	var response StockAdjustmentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		store, err := s.findStore(ctx, repos.StoreRepo(), req.StoreID)
		if err != nil {
			return err
		}
		if !store.IsActive {
			return shared.NewNotFoundError(fmt.Sprintf("store %s is not active", store.Code))
		}

		current := inventory.StoreInventory{StoreID: req.StoreID, ProductID: req.ProductID, UnitCost: decimal.Zero}
		row, err := repos.StockRepo().FindForUpdate(ctx, req.StoreID, req.ProductID)
		switch {
		case err == nil:
			current = *row
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		delta := req.ActualQuantity - current.Quantity
		unitCost := current.UnitCost
		if req.UnitCost != nil {
			unitCost = *req.UnitCost
		}
		if delta == 0 {
			current.UnitCost = unitCost
			response.Stock = ToStoreInventoryResponse(&current)
			return nil
		}

		entry, err := inventory.NewAdjustmentEntry(req.StoreID, req.ProductID, delta, unitCost, req.Reason, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.ReceiptRepo().Create(ctx, entry); err != nil {
			return err
		}
		if err := repos.StockRepo().Increment(ctx, req.StoreID, req.ProductID, delta, entry.UnitCost); err != nil {
			return err
		}

		updated, err := repos.StockRepo().Find(ctx, req.StoreID, req.ProductID)
		if err != nil {
			return err
		}
		entryResponse := ToLedgerEntryResponse(entry)
		response.Entry = &entryResponse
		response.Stock = ToStoreInventoryResponse(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if response.Entry != nil {
		s.logger.Info("stock adjusted",
			zap.String("store_id", req.StoreID.String()),
			zap.String("product_id", req.ProductID.String()),
			zap.Int64("delta", response.Entry.Quantity),
			zap.String("reason", req.Reason),
		)
	}
	return &response, nil
}

// VerifyLedger compares the projection against the ledger sums and reports every mismatch
func (s *StoreInventoryService) VerifyLedger(ctx context.Context) (*LedgerVerificationResponse, error) {
	balances, err := s.receiptRepo.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger balances: %w", err)
	}
	rows, err := s.stockRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store inventory: %w", err)
	}

	mismatches := inventory.CompareLedger(balances, rows)
	response := &LedgerVerificationResponse{
		Consistent: len(mismatches) == 0,
		CheckedAt:  time.Now(),
		Mismatches: make([]LedgerMismatchResponse, len(mismatches)),
	}
	for i, m := range mismatches {
		response.Mismatches[i] = LedgerMismatchResponse{
			StoreID:            m.StoreID,
			ProductID:          m.ProductID,
			LedgerQuantity:     m.LedgerQuantity,
			ProjectionQuantity: m.ProjectionQuantity,
			Difference:         m.Difference(),
		}
	}
	if !response.Consistent {
		s.logger.Warn("store inventory diverges from ledger", zap.Int("mismatches", len(mismatches)))
	}
	return response, nil
}

func (s *StoreInventoryService) findStore(ctx context.Context, repo partner.StoreRepository, storeID uuid.UUID) (*partner.Store, error) {
	store, err := repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("store %s not found", storeID))
		}
		return nil, err
	}
	return store, nil
}
