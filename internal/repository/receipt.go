package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository interface {
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
	// Create is a no-op when the order already has a receipt.
	Create(ctx context.Context, receipt *model.Receipt) error
	// List applies the order visibility scope through the receipt's order.
	List(ctx context.Context, visible Scope, offset, limit int) ([]*model.Receipt, int64, error)
}

type receiptRepoImpl struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepoImpl{db: db}
}

func (r *receiptRepoImpl) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	return count > 0, err
}

func (r *receiptRepoImpl) Create(ctx context.Context, receipt *model.Receipt) error {
	return r.db.WithContext(ctx).
		Omit("Order").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(receipt).Error
}

func (r *receiptRepoImpl) List(ctx context.Context, visible Scope, offset, limit int) ([]*model.Receipt, int64, error) {
	joined := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&model.Receipt{}).
			Joins("JOIN orders ON orders.id = receipts.order_id").
			Scopes(visible)
	}

	var total int64
	if err := joined().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var receipts []*model.Receipt
	err := joined().
		Select("receipts.*").
		Preload("Order.Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Order.Items.Product").
		Order("receipts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&receipts).Error
	if err != nil {
		return nil, 0, err
	}

	return receipts, total, nil
}
