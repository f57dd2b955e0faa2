package partner

import (
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
)

// Store is a stock-holding location that purchase orders are received into
type Store struct {
	shared.BaseEntity
	Code     string
	Name     string
	Address  string
	IsActive bool
}

// NewStore creates an active store
func NewStore(code, name string) (*Store, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("store code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("store code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewValidationError("store name cannot be empty")
	}
	return &Store{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
		IsActive:   true,
	}, nil
}

// Deactivate stops the store from accepting receipts
func (s *Store) Deactivate() {
	s.IsActive = false
	s.Touch()
}

// Activate re-enables receipts
func (s *Store) Activate() {
	s.IsActive = true
	s.Touch()
}
