package partner

import (
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
)

// Supplier is the read model used to denormalize supplier details onto orders
type Supplier struct {
	shared.BaseEntity
	Code     string
	Name     string
	Email    string
	Phone    string
	IsActive bool
}

// NewSupplier creates an active supplier
func NewSupplier(code, name string) (*Supplier, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("supplier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("supplier name cannot be empty")
	}
	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
		IsActive:   true,
	}, nil
}
