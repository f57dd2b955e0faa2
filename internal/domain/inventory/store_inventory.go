package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreInventory is the current quantity of one product in one store.
// It is a projection of the ledger and is only changed by ledger-driven deltas.
type StoreInventory struct {
	ID        uuid.UUID
	StoreID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal // cost of the latest receipt
	UpdatedAt time.Time
	CreatedAt time.Time
}

// Value is quantity times unit cost
func (s *StoreInventory) Value() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(s.Quantity))
}

// StoreSummary aggregates one store's projection rows
type StoreSummary struct {
	StoreID       uuid.UUID
	StoreName     string
	StoreCode     string
	ProductCount  int64
	TotalQuantity int64
	TotalValue    decimal.Decimal
}

// LedgerBalance is the sum of ledger quantities for one (store, product) pair
type LedgerBalance struct {
	StoreID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
}

// LedgerMismatch reports a pair whose projection does not equal its ledger sum
type LedgerMismatch struct {
	StoreID            uuid.UUID
	ProductID          uuid.UUID
	LedgerQuantity     int64
	ProjectionQuantity int64
}

// Difference is projection minus ledger
func (m LedgerMismatch) Difference() int64 {
	return m.ProjectionQuantity - m.LedgerQuantity
}

type pairKey struct {
	store, product uuid.UUID
}

// CompareLedger returns every pair where the projection and the ledger disagree,
// including pairs present on only one side.
func CompareLedger(balances []LedgerBalance, projection []StoreInventory) []LedgerMismatch {
	ledger := make(map[pairKey]int64, len(balances))
	for _, b := range balances {
		ledger[pairKey{b.StoreID, b.ProductID}] += b.Quantity
	}

	mismatches := make([]LedgerMismatch, 0)
	seen := make(map[pairKey]struct{}, len(projection))
	for _, row := range projection {
		key := pairKey{row.StoreID, row.ProductID}
		seen[key] = struct{}{}
		if ledger[key] != row.Quantity {
			mismatches = append(mismatches, LedgerMismatch{
				StoreID:            row.StoreID,
				ProductID:          row.ProductID,
				LedgerQuantity:     ledger[key],
				ProjectionQuantity: row.Quantity,
			})
		}
	}
	for key, qty := range ledger {
		if _, ok := seen[key]; ok || qty == 0 {
			continue
		}
		mismatches = append(mismatches, LedgerMismatch{
			StoreID:        key.store,
			ProductID:      key.product,
			LedgerQuantity: qty,
		})
	}
	return mismatches
}
