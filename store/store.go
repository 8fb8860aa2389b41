// Package store defines the persistence port used by the services and the
// HTTP layer. gormstore and pgstore implement it.
package store

import (
	"context"
	"errors"
	"time"

	"dserve-api/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrDuplicate = errors.New("duplicate")
)

type Store interface {
	Users
	Inventory
	Menu
	Recipes
	Orders
	LoginSessions
	Counters

	// WithinTx runs fn against a transactional view of the store. A non-nil
	// error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type InventoryFilter struct {
	Kind            models.ItemKind
	IncludeInactive bool
	Search          string
}

type Inventory interface {
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	// UpdateInventoryDetails writes descriptive fields only. Stock changes go
	// through CompareAndSetStock.
	UpdateInventoryDetails(ctx context.Context, item *models.InventoryItem) error
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
	ListInventory(ctx context.Context, f InventoryFilter) ([]models.InventoryItem, error)
	// FindInventoryByNameKey returns active items of any kind whose normalized
	// name equals key, oldest first with ties broken by id.
	FindInventoryByNameKey(ctx context.Context, key string) ([]models.InventoryItem, error)
	SetInventoryActive(ctx context.Context, id string, active bool) error
	// CompareAndSetStock writes stock and bumps the version only if the stored
	// version still equals version. It reports whether the write happened.
	CompareAndSetStock(ctx context.Context, id string, version int64, stock float64) (bool, error)
	RecordMovement(ctx context.Context, m *models.StockMovement) error
	ListMovements(ctx context.Context, inventoryID string, limit int) ([]models.StockMovement, error)
}

type MenuFilter struct {
	Category      string
	OnlyAvailable bool
}

type Menu interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	ListMenu(ctx context.Context, f MenuFilter) ([]models.MenuItem, error)
	SetMenuItemAvailable(ctx context.Context, id string, available bool) error
}

type Recipes interface {
	CreateRecipe(ctx context.Context, r *models.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
	// ListRecipes returns the rows of a menu item for one size, or for every
	// size when size is empty.
	ListRecipes(ctx context.Context, menuItemID string, size models.Size) ([]models.Recipe, error)
}

type OrderFilter struct {
	From   time.Time
	To     time.Time
	Status models.OrderStatus
	UserID string
	Limit  int
}

type Orders interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	// ListOrders returns orders with items, newest first. From is inclusive
	// and To exclusive.
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	// UpdateOrderStatus moves an order from one status to another and returns
	// ErrConflict when the stored status is no longer from.
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

type LoginSessions interface {
	AddLoginSession(ctx context.Context, s *models.LoginSession) error
	RecentLoginSessions(ctx context.Context, limit int) ([]models.LoginSession, error)
	// ClearLoginSessions removes the sessions of userID, or all of them when
	// userID is empty.
	ClearLoginSessions(ctx context.Context, userID string) (int64, error)
}

// Counters holds per-day sequence values keyed by "YYYY-MM-DD".
type Counters interface {
	IncrementCounter(ctx context.Context, day string) (int64, error)
	RaiseCounter(ctx context.Context, day string, atLeast int64) error
	CurrentCounter(ctx context.Context, day string) (int64, error)
}
