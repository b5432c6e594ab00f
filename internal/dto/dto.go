package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// -------- auth --------

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// -------- stores --------

type CreateStoreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

type StoreResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateStoreResponse struct {
	Store   StoreResponse `json:"store"`
	Message string        `json:"message"`
}

// -------- products --------

type ProductRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Stock              int             `json:"stock"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	StoreID            string          `json:"store_id"`
}

type ProductResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Stock              int             `json:"stock"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	StoreID            *string         `json:"store_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	Store              *StoreResponse  `json:"store,omitempty"`
}

// -------- orders --------

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	PaymentMethod *string        `json:"payment_method"`
}

type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	VatAmount      decimal.Decimal     `json:"vat_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaymentMethod  string              `json:"payment_method"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemResponse `json:"items"`
}

// -------- receipts --------

type ReceiptResponse struct {
	ID        string         `json:"id"`
	OrderID   string         `json:"order_id"`
	URL       string         `json:"url"`
	CreatedAt time.Time      `json:"created_at"`
	Order     *OrderResponse `json:"order,omitempty"`
}
