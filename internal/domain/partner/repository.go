package partner

import (
	"context"

	"github.com/google/uuid"
)

// StoreRepository looks up stores
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Store, error)
	FindAll(ctx context.Context) ([]Store, error)
	Save(ctx context.Context, store *Store) error
}

// SupplierRepository looks up suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
}
