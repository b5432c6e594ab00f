// Package testutil holds fixtures shared by the DB backed tests.
package testutil

import (
	"path/filepath"
	"storefront-api/internal/client"
	"storefront-api/internal/model"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite file in t.TempDir.
// Immediate transactions make concurrent writers queue like row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000&_txlock=immediate&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func CreateUser(t testing.TB, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()

	id := uuid.NewString()
	user := &model.User{
		ID:           id,
		Username:     id + "@example.com",
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateStore(t testing.TB, db *gorm.DB, owner *model.User, name string) *model.Store {
	t.Helper()

	store := &model.Store{
		ID:          uuid.NewString(),
		Name:        name,
		Address:     "1 Main St",
		PhoneNumber: "555-0100",
		OwnerID:     owner.ID,
	}
	require.NoError(t, db.Omit("Owner").Create(store).Error)
	return store
}

func CreateProduct(t testing.TB, db *gorm.DB, store *model.Store, name, price string, stock int, discount string) *model.Product {
	t.Helper()

	product := &model.Product{
		ID:                 uuid.NewString(),
		Name:               name,
		Price:              model.NewDecimal(decimal.RequireFromString(price)),
		Stock:              stock,
		DiscountPercentage: model.NewDecimal(decimal.RequireFromString(discount)),
	}
	if store != nil {
		product.StoreID = &store.ID
	}
	require.NoError(t, db.Omit("Store").Create(product).Error)
	return product
}

// CreateOrder inserts a completed order with one line per product at its current price.
func CreateOrder(t testing.TB, db *gorm.DB, buyer *model.User, createdAt time.Time, products ...*model.Product) *model.Order {
	t.Helper()

	order := &model.Order{
		ID:            uuid.NewString(),
		UserID:        buyer.ID,
		PaymentMethod: model.DefaultPaymentMethod,
		Status:        model.OrderStatusCompleted,
		CreatedAt:     createdAt,
	}
	for _, p := range products {
		order.Items = append(order.Items, model.OrderItem{ProductID: p.ID, Quantity: 1, UnitPrice: p.Price})
		order.Subtotal = model.NewDecimal(order.Subtotal.Add(p.Price.Decimal))
	}
	order.TotalAmount = order.Subtotal
	require.NoError(t, db.Omit("User", "Items.Product").Create(order).Error)
	return order
}

func Stock(t testing.TB, db *gorm.DB, productID string) int {
	t.Helper()

	var product model.Product
	require.NoError(t, db.Where("id = ?", productID).First(&product).Error)
	return product.Stock
}
