package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, tx *gorm.DB, store *model.Store) error
	Get(ctx context.Context, storeID string) (*model.Store, error)
	IsOwnedBy(ctx context.Context, storeID, ownerID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Store, int64, error)
}

type storeRepoImpl struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepoImpl{
		db: db,
	}
}

func (r *storeRepoImpl) Create(ctx context.Context, tx *gorm.DB, store *model.Store) error {
	return tx.WithContext(ctx).Create(store).Error
}

func (r *storeRepoImpl) Get(ctx context.Context, storeID string) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).
		Where("id = ?", storeID).
		First(&store).Error
	if err != nil {
		return nil, err
	}

	return &store, nil
}

func (r *storeRepoImpl) IsOwnedBy(ctx context.Context, storeID, ownerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ? AND owner_id = ?", storeID, ownerID).
		Count(&count).Error

	return count > 0, err
}

func (r *storeRepoImpl) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Store, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stores []*model.Store
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}

	return stores, total, nil
}
