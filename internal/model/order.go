package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

const DefaultPaymentMethod = "Unknown"

type Order struct {
	ID             string      `gorm:"primaryKey;size:36;not null"`
	UserID         string      `gorm:"size:36;index;not null"` // buyer
	Subtotal       Decimal     `gorm:"not null"`
	DiscountAmount Decimal     `gorm:"not null"`
	VatAmount      Decimal     `gorm:"not null"`
	TotalAmount    Decimal     `gorm:"not null"`
	PaymentMethod  string      `gorm:"size:64;not null"`
	Status         OrderStatus `gorm:"size:16;index;not null"`
	CreatedAt      time.Time   `gorm:"index"`

	User  *User       `gorm:"foreignKey:UserID"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → orders.id
	OrderID string `gorm:"size:36;index;not null"`
	// FK → products.id
	ProductID string `gorm:"size:36;index;not null"`
	Quantity  int    `gorm:"not null"`
	// price at the moment of sale, never re-read from the catalog
	UnitPrice Decimal `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
