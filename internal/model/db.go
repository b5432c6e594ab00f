package model

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "Customer"
	RoleBusiness UserRole = "Business"
)

type User struct {
	ID           string   `gorm:"primaryKey;size:36;not null"`
	Username     string   `gorm:"size:255;not null"`
	Email        string   `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:16;not null;default:Customer"`
	CreatedAt    time.Time

	Stores []Store `gorm:"foreignKey:OwnerID"`
}

type Store struct {
	ID          string `gorm:"primaryKey;size:36;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:1024"`
	Address     string `gorm:"size:512"`
	PhoneNumber string `gorm:"size:64"`
	OwnerID     string `gorm:"size:36;index;not null"` // FK → users.id
	CreatedAt   time.Time

	Owner    *User     `gorm:"foreignKey:OwnerID"`
	Products []Product `gorm:"foreignKey:StoreID"`
}

type Product struct {
	ID                 string  `gorm:"primaryKey;size:36;not null"`
	Name               string  `gorm:"size:255;not null"`
	Description        string  `gorm:"size:2048"`
	Price              Decimal `gorm:"not null"`
	Stock              int     `gorm:"not null"`
	DiscountPercentage Decimal `gorm:"not null"`
	StoreID            *string `gorm:"size:36;index"` // FK → stores.id, nullable
	CreatedAt          time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}

// Receipt is produced after the order commits; at most one per order.
type Receipt struct {
	ID         string `gorm:"primaryKey;size:36;not null"`
	OrderID    string `gorm:"size:36;uniqueIndex;not null"`
	StorageKey string `gorm:"size:512;not null"`
	CreatedAt  time.Time

	Order *Order `gorm:"foreignKey:OrderID"`
}
