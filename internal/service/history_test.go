package service

import (
	"context"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderIDs(page *dto.PagedResponse[dto.OrderResponse]) []string {
	ids := make([]string, len(page.Items))
	for i, o := range page.Items {
		ids[i] = o.ID
	}
	return ids
}

func TestVisibleOrders_ResolvesPolicyByRole(t *testing.T) {
	assert.IsType(t, ownedStoresPolicy{}, VisibleOrders(Identity{UserID: "u", Role: model.RoleBusiness}))
	assert.IsType(t, ownOrdersPolicy{}, VisibleOrders(Identity{UserID: "u", Role: model.RoleCustomer}))
	assert.IsType(t, ownOrdersPolicy{}, VisibleOrders(Identity{UserID: "u"}))
}

func TestHistory_Scoping(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewOrderHistoryService(repository.NewOrderRepository(db))

	owner := testutil.CreateUser(t, db, model.RoleBusiness)
	rival := testutil.CreateUser(t, db, model.RoleBusiness)
	alice := testutil.CreateUser(t, db, model.RoleCustomer)
	bob := testutil.CreateUser(t, db, model.RoleCustomer)

	shopA := testutil.CreateStore(t, db, owner, "A")
	shopB := testutil.CreateStore(t, db, owner, "B")
	rivalShop := testutil.CreateStore(t, db, rival, "Rival")

	pa := testutil.CreateProduct(t, db, shopA, "pa", "10", 10, "0")
	pb := testutil.CreateProduct(t, db, shopB, "pb", "10", 10, "0")
	pr := testutil.CreateProduct(t, db, rivalShop, "pr", "10", 10, "0")
	orphan := testutil.CreateProduct(t, db, nil, "orphan", "10", 10, "0")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bothStores := testutil.CreateOrder(t, db, alice, base, pa, pb)
	rivalOnly := testutil.CreateOrder(t, db, bob, base.Add(time.Hour), pr)
	mixed := testutil.CreateOrder(t, db, bob, base.Add(2*time.Hour), pr, pa)
	orphanOnly := testutil.CreateOrder(t, db, alice, base.Add(3*time.Hour), orphan)

	t.Run("business sees orders touching any owned store once", func(t *testing.T) {
		page, err := svc.History(ctx, Identity{UserID: owner.ID, Role: model.RoleBusiness}, dto.PageRequest{})
		require.NoError(t, err)

		assert.Equal(t, int64(2), page.TotalCount)
		assert.Equal(t, []string{mixed.ID, bothStores.ID}, orderIDs(page))
	})

	t.Run("rival only sees its own store", func(t *testing.T) {
		page, err := svc.History(ctx, Identity{UserID: rival.ID, Role: model.RoleBusiness}, dto.PageRequest{})
		require.NoError(t, err)

		assert.Equal(t, []string{mixed.ID, rivalOnly.ID}, orderIDs(page))
	})

	t.Run("customer sees only own orders newest first", func(t *testing.T) {
		page, err := svc.History(ctx, Identity{UserID: alice.ID, Role: model.RoleCustomer}, dto.PageRequest{})
		require.NoError(t, err)

		assert.Equal(t, int64(2), page.TotalCount)
		assert.Equal(t, []string{orphanOnly.ID, bothStores.ID}, orderIDs(page))
		require.Len(t, page.Items[1].Items, 2)
		assert.ElementsMatch(t, []string{"pa", "pb"},
			[]string{page.Items[1].Items[0].ProductName, page.Items[1].Items[1].ProductName})
	})

	t.Run("business owner buying elsewhere is not a customer view", func(t *testing.T) {
		page, err := svc.History(ctx, Identity{UserID: bob.ID, Role: model.RoleBusiness}, dto.PageRequest{})
		require.NoError(t, err)

		assert.Zero(t, page.TotalCount)
		assert.Empty(t, page.Items)
	})
}

func TestHistory_Pagination(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewOrderHistoryService(repository.NewOrderRepository(db))

	owner := testutil.CreateUser(t, db, model.RoleBusiness)
	buyer := testutil.CreateUser(t, db, model.RoleCustomer)
	product := testutil.CreateProduct(t, db, testutil.CreateStore(t, db, owner, "S"), "p", "1", 100, "0")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var newestFirst []string
	for i := 0; i < 12; i++ {
		o := testutil.CreateOrder(t, db, buyer, base.Add(time.Duration(i)*time.Minute), product)
		newestFirst = append([]string{o.ID}, newestFirst...)
	}
	who := Identity{UserID: buyer.ID, Role: model.RoleCustomer}

	page, err := svc.History(ctx, who, dto.PageRequest{PageNumber: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, int64(12), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, newestFirst[:10], orderIDs(page))

	page, err = svc.History(ctx, who, dto.PageRequest{PageNumber: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, newestFirst[10:], orderIDs(page))

	page, err = svc.History(ctx, who, dto.PageRequest{PageNumber: -3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 50, page.PageSize)
	assert.Len(t, page.Items, 12)

	page, err = svc.History(ctx, who, dto.PageRequest{PageNumber: 9, PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}
