package persistence

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStoreRepository implements StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by ID, active or not
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the stores among ids; unknown IDs are skipped
func (r *GormStoreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Store, error) {
	if len(ids) == 0 {
		return []partner.Store{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

// FindAll lists every store ordered by code
func (r *GormStoreRepository) FindAll(ctx context.Context) ([]partner.Store, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *GormStoreRepository) find(query *gorm.DB) ([]partner.Store, error) {
	var storeModels []models.StoreModel
	if err := query.Order("code").Find(&storeModels).Error; err != nil {
		return nil, err
	}
	stores := make([]partner.Store, len(storeModels))
	for i := range storeModels {
		stores[i] = *storeModels[i].ToDomain()
	}
	return stores, nil
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, store *partner.Store) error {
	return r.db.WithContext(ctx).Save(models.StoreModelFromDomain(store)).Error
}

var _ partner.StoreRepository = (*GormStoreRepository)(nil)
