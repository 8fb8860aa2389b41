package gormstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUsersAndSeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := store.SeedUsers(ctx, s, "password123")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.SeedUsers(ctx, s, "password123")
	require.NoError(t, err)
	assert.Zero(t, n, "seeding twice must not add users")

	u, err := s.GetUserByUsername(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, u.Role)
	assert.True(t, u.IsActive)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.CreateUser(ctx, &models.User{Username: "owner", PasswordHash: "x", Role: models.RoleOwner})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	cashiers, err := s.ListUsers(ctx, models.RoleCashier)
	require.NoError(t, err)
	require.Len(t, cashiers, 1)
	assert.Equal(t, "cashier", cashiers[0].Username)
}

func TestCompareAndSetStock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := &models.InventoryItem{Name: "Milk", Stock: 10, IsActive: true}
	require.NoError(t, s.CreateInventoryItem(ctx, item))

	ok, err := s.CompareAndSetStock(ctx, item.ID, 0, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSetStock(ctx, item.ID, 0, 5)
	require.NoError(t, err)
	assert.False(t, ok, "stale version must not write")

	got, err := s.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Stock)
	assert.Equal(t, int64(1), got.Version)

	ok, err = s.CompareAndSetStock(ctx, item.ID, 1, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = s.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Stock)
}

func TestFindInventoryByNameKeyOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	newer := &models.InventoryItem{Name: "Iced Americano", Stock: 5, IsActive: true, CreatedAt: base.Add(time.Hour)}
	older := &models.InventoryItem{Name: " iced americano", Stock: 9, IsActive: true, CreatedAt: base}
	inactive := &models.InventoryItem{Name: "ICED AMERICANO", Stock: 1, IsActive: false, CreatedAt: base.Add(-time.Hour)}
	for _, it := range []*models.InventoryItem{newer, older, inactive} {
		require.NoError(t, s.CreateInventoryItem(ctx, it))
	}

	found, err := s.FindInventoryByNameKey(ctx, "iced americano")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, older.ID, found[0].ID)
	assert.Equal(t, newer.ID, found[1].ID)
}

func TestListInventoryFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, it := range []*models.InventoryItem{
		{Name: "Whole Milk", Stock: 3, IsActive: true},
		{Name: "Espresso Beans", Stock: 2, IsActive: true},
		{Name: "Latte", Kind: models.KindMenu, Stock: 0, IsActive: true},
		{Name: "Old Syrup", Stock: 1, IsActive: false},
	} {
		require.NoError(t, s.CreateInventoryItem(ctx, it))
	}

	all, err := s.ListInventory(ctx, store.InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Espresso Beans", all[0].Name)

	stock, err := s.ListInventory(ctx, store.InventoryFilter{Kind: models.KindStock, Search: "MILK"})
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, "Whole Milk", stock[0].Name)

	withInactive, err := s.ListInventory(ctx, store.InventoryFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, withInactive, 4)
}

func TestUpdateInventoryDetailsKeepsStock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := &models.InventoryItem{Name: "Cups", Stock: 40, IsActive: true}
	require.NoError(t, s.CreateInventoryItem(ctx, item))

	item.Name = "Paper Cups"
	item.Stock = 999
	item.MinStockLevel = 20
	require.NoError(t, s.UpdateInventoryDetails(ctx, item))

	got, err := s.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paper Cups", got.Name)
	assert.Equal(t, "paper cups", got.NameKey)
	assert.Equal(t, 40.0, got.Stock)
	assert.Equal(t, 20.0, got.MinStockLevel)

	assert.ErrorIs(t, s.UpdateInventoryDetails(ctx, &models.InventoryItem{ID: "missing", Name: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, s.SetInventoryActive(ctx, "missing", false), store.ErrNotFound)
}

func TestOrdersRoundTripAndStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	o := &models.Order{
		OrderNumber: "#1",
		BusinessDay: "2024-05-02",
		OrderType:   models.OrderDineIn,
		Status:      models.StatusPending,
		TotalAmount: decimal.RequireFromString("245.50"),
		CreatedAt:   created,
		Items: []models.OrderItem{
			{Name: "Latte", Quantity: 2, Size: models.SizeMedium, UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(200)},
			{Name: "Cookie", Quantity: 1, UnitPrice: decimal.RequireFromString("45.50"), TotalPrice: decimal.RequireFromString("45.50")},
		},
	}
	require.NoError(t, s.CreateOrder(ctx, o))

	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "#1", got.OrderNumber)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("245.5")))
	assert.Len(t, got.Items, 2)

	dup := &models.Order{OrderNumber: "#1", BusinessDay: "2024-05-02", OrderType: models.OrderDineIn, Status: models.StatusPending, CreatedAt: created}
	assert.ErrorIs(t, s.CreateOrder(ctx, dup), store.ErrDuplicate)

	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, models.StatusPending, models.StatusPreparing))
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, o.ID, models.StatusPending, models.StatusReady), store.ErrConflict)
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "missing", models.StatusPending, models.StatusReady), store.ErrNotFound)

	list, err := s.ListOrders(ctx, store.OrderFilter{From: created.Add(-time.Hour), To: created.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusPreparing, list[0].Status)

	list, err = s.ListOrders(ctx, store.OrderFilter{From: created.Add(time.Minute)})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CurrentCounter(ctx, "2024-05-02")
	require.NoError(t, err)
	assert.Zero(t, v)

	for want := int64(1); want <= 3; want++ {
		v, err = s.IncrementCounter(ctx, "2024-05-02")
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	require.NoError(t, s.RaiseCounter(ctx, "2024-05-02", 2))
	v, _ = s.CurrentCounter(ctx, "2024-05-02")
	assert.Equal(t, int64(3), v, "raise never lowers")

	require.NoError(t, s.RaiseCounter(ctx, "2024-05-02", 10))
	v, _ = s.CurrentCounter(ctx, "2024-05-02")
	assert.Equal(t, int64(10), v)

	v, err = s.IncrementCounter(ctx, "2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "each day starts fresh")
}

func TestCountersConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	seen := make(chan int64, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.IncrementCounter(ctx, "2024-05-02")
			assert.NoError(t, err)
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for v := range seen {
		assert.False(t, unique[v], "duplicate counter value %d", v)
		unique[v] = true
	}
	assert.Len(t, unique, 20)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := &models.InventoryItem{Name: "Ice", Stock: 5, IsActive: true}
	require.NoError(t, s.CreateInventoryItem(ctx, item))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx store.Store) error {
		ok, err := tx.CompareAndSetStock(ctx, item.ID, 0, 1)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Stock)
	assert.Equal(t, int64(0), got.Version)
}

func TestLoginSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	for i, uid := range []string{"u1", "u2", "u1"} {
		require.NoError(t, s.AddLoginSession(ctx, &models.LoginSession{
			UserID: uid, Username: uid, DisplayName: "User " + uid, LoginTime: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := s.RecentLoginSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, base.Add(2*time.Minute).Equal(recent[0].LoginTime))
	assert.Equal(t, "User u1", recent[0].DisplayName)

	n, err := s.ClearLoginSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.ClearLoginSessions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRecipesAndMenu(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	latte := &models.MenuItem{Name: "Latte", Category: "coffee", BasePrice: decimal.NewFromInt(120), IsAvailable: true}
	tea := &models.MenuItem{Name: "Tea", Category: "coolers", BasePrice: decimal.NewFromInt(90), IsAvailable: false}
	require.NoError(t, s.CreateMenuItem(ctx, latte))
	require.NoError(t, s.CreateMenuItem(ctx, tea))

	avail, err := s.ListMenu(ctx, store.MenuFilter{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "Latte", avail[0].Name)

	r1 := &models.Recipe{MenuItemID: latte.ID, InventoryID: "milk", QuantityRequired: 0.2}
	r2 := &models.Recipe{MenuItemID: latte.ID, InventoryID: "milk", Size: models.SizeLarge, QuantityRequired: 0.3}
	require.NoError(t, s.CreateRecipe(ctx, r1))
	require.NoError(t, s.CreateRecipe(ctx, r2))
	assert.Equal(t, models.SizeMedium, r1.Size)

	medium, err := s.ListRecipes(ctx, latte.ID, models.SizeMedium)
	require.NoError(t, err)
	require.Len(t, medium, 1)
	assert.Equal(t, 0.2, medium[0].QuantityRequired)

	all, err := s.ListRecipes(ctx, latte.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteRecipe(ctx, r2.ID))
	assert.ErrorIs(t, s.DeleteRecipe(ctx, r2.ID), store.ErrNotFound)
}
