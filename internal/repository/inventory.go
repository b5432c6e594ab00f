package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository owns the contended Product.stock column.
// Both methods must run on the checkout transaction handle.
type InventoryRepository interface {
	LockProduct(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (bool, error)
}

type inventoryRepoImpl struct{}

func NewInventoryRepository() InventoryRepository {
	return &inventoryRepoImpl{}
}

// LockProduct reads the product with SELECT ... FOR UPDATE where the dialect supports it.
func (r *inventoryRepoImpl) LockProduct(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// DecrementStock reports false when the guarded update matched nothing,
// meaning stock would have gone negative.
func (r *inventoryRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
