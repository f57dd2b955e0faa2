package catalog

import (
	"context"
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/tax"
	"github.com/google/uuid"
)

// Product is the read model used to denormalize product details onto order lines
type Product struct {
	shared.BaseEntity
	Code            string
	Name            string
	Category        string
	DefaultTaxClass tax.Class
}

// NewProduct creates a product
func NewProduct(code, name string, taxClass tax.Class) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("product name cannot be empty")
	}
	if !taxClass.IsValid() {
		return nil, shared.NewValidationError("unsupported tax class")
	}
	return &Product{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            strings.ToUpper(code),
		Name:            name,
		DefaultTaxClass: taxClass,
	}, nil
}

// ProductRepository looks up products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}
