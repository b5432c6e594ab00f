package service

import (
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
)

func toOrderResponse(order *model.Order, productNames []string) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		var name string
		if i < len(productNames) {
			name = productNames[i]
		}
		items[i] = dto.OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Decimal,
		}
	}

	return &dto.OrderResponse{
		ID:             order.ID,
		Subtotal:       order.Subtotal.Decimal,
		DiscountAmount: order.DiscountAmount.Decimal,
		VatAmount:      order.VatAmount.Decimal,
		TotalAmount:    order.TotalAmount.Decimal,
		PaymentMethod:  order.PaymentMethod,
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		Items:          items,
	}
}

const unknownProductName = "Unknown"

// toOrderResponseWithProducts expects Items.Product to be preloaded.
func toOrderResponseWithProducts(order *model.Order) *dto.OrderResponse {
	names := make([]string, len(order.Items))
	for i, item := range order.Items {
		names[i] = unknownProductName
		if item.Product != nil {
			names[i] = item.Product.Name
		}
	}
	return toOrderResponse(order, names)
}

func toStoreResponse(store *model.Store) dto.StoreResponse {
	return dto.StoreResponse{
		ID:          store.ID,
		Name:        store.Name,
		Description: store.Description,
		Address:     store.Address,
		PhoneNumber: store.PhoneNumber,
		OwnerID:     store.OwnerID,
		CreatedAt:   store.CreatedAt,
	}
}

func toProductResponse(product *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:                 product.ID,
		Name:               product.Name,
		Description:        product.Description,
		Price:              product.Price.Decimal,
		Stock:              product.Stock,
		DiscountPercentage: product.DiscountPercentage.Decimal,
		StoreID:            product.StoreID,
		CreatedAt:          product.CreatedAt,
	}
	if product.Store != nil {
		store := toStoreResponse(product.Store)
		resp.Store = &store
	}
	return resp
}
