package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
)

type ProductFilter struct {
	StoreID   *string
	WithStore bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	HasOrders(ctx context.Context, productID string) (bool, error)
	List(ctx context.Context, filter ProductFilter, offset, limit int) ([]*model.Product, int64, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Store").Create(product).Error
}

func (r *productRepoImpl) Update(ctx context.Context, product *model.Product) error {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":                product.Name,
			"description":         product.Description,
			"price":               product.Price,
			"stock":               product.Stock,
			"discount_percentage": product.DiscountPercentage,
			"store_id":            product.StoreID,
		})

	// mysql reports 0 rows for an unchanged row, so existence is the caller's check
	return result.Error
}

func (r *productRepoImpl) Delete(ctx context.Context, productID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&model.Product{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Store").
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) HasOrders(ctx context.Context, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count).Error

	return count > 0, err
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter, offset, limit int) ([]*model.Product, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Product{})
		if filter.StoreID != nil {
			q = q.Where("store_id = ?", *filter.StoreID)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base()
	if filter.WithStore {
		query = query.Preload("Store")
	}

	var products []*model.Product
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}
