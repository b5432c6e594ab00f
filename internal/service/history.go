package service

import (
	"context"
	"fmt"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"

	"gorm.io/gorm"
)

// VisibilityPolicy decides which orders a caller may read.
// It is resolved once per request from the caller's identity.
type VisibilityPolicy interface {
	Scope() repository.Scope
}

// ownedStoresPolicy sees every order with at least one line from a store the owner runs.
type ownedStoresPolicy struct {
	ownerID string
}

func (p ownedStoresPolicy) Scope() repository.Scope {
	return func(db *gorm.DB) *gorm.DB {
		// EXISTS keeps an order spanning two owned stores from showing up twice
		return db.Where(`EXISTS (
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			JOIN stores s ON s.id = p.store_id
			WHERE oi.order_id = orders.id AND s.owner_id = ?
		)`, p.ownerID)
	}
}

type ownOrdersPolicy struct {
	userID string
}

func (p ownOrdersPolicy) Scope() repository.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("orders.user_id = ?", p.userID)
	}
}

func VisibleOrders(identity Identity) VisibilityPolicy {
	if identity.Role == model.RoleBusiness {
		return ownedStoresPolicy{ownerID: identity.UserID}
	}
	return ownOrdersPolicy{userID: identity.UserID}
}

type OrderHistoryService interface {
	History(ctx context.Context, identity Identity, page dto.PageRequest) (*dto.PagedResponse[dto.OrderResponse], error)
}

type orderHistoryServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewOrderHistoryService(orderRepo repository.OrderRepository) OrderHistoryService {
	return &orderHistoryServiceImpl{
		orderRepo: orderRepo,
	}
}

func (s *orderHistoryServiceImpl) History(ctx context.Context, identity Identity, page dto.PageRequest) (*dto.PagedResponse[dto.OrderResponse], error) {
	page = page.Normalize()
	policy := VisibleOrders(identity)

	orders, total, err := s.orderRepo.List(ctx, policy.Scope(), page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}

	items := make([]dto.OrderResponse, len(orders))
	for i, order := range orders {
		items[i] = *toOrderResponseWithProducts(order)
	}

	resp := dto.NewPagedResponse(items, total, page)
	return &resp, nil
}
