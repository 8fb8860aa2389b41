// Package inventory turns order lines into stock consumption and applies it
// with compare-and-swap updates.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dserve-api/models"
	"dserve-api/store"
)

type Mode string

const (
	ModeRecipe Mode = "recipe"
	ModeName   Mode = "name"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRecipe:
		return ModeRecipe, nil
	case ModeName:
		return ModeName, nil
	}
	return "", fmt.Errorf("unknown deduction mode %q", s)
}

// Line is one order line as seen by the resolvers.
type Line struct {
	MenuItemID string
	Name       string
	Size       models.Size
	Quantity   float64
}

type Consumption struct {
	InventoryID string
	Name        string
	Quantity    float64
	Ambiguous   bool
}

// Catalog is the read access a Resolver needs.
type Catalog interface {
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	ListRecipes(ctx context.Context, menuItemID string, size models.Size) ([]models.Recipe, error)
	FindInventoryByNameKey(ctx context.Context, key string) ([]models.InventoryItem, error)
}

// Resolver maps a line to the inventory it consumes. An empty result means
// the line does not touch stock.
type Resolver interface {
	Resolve(ctx context.Context, c Catalog, line Line) ([]Consumption, error)
}

func NewResolver(mode Mode, log *slog.Logger) Resolver {
	if mode == ModeName {
		return NameResolver{log: log}
	}
	return RecipeResolver{}
}

// RecipeResolver consumes the recipe rows of the ordered size. A menu item
// without rows but with a stock link consumes that item one for one.
type RecipeResolver struct{}

func (RecipeResolver) Resolve(ctx context.Context, c Catalog, line Line) ([]Consumption, error) {
	if line.MenuItemID == "" {
		return nil, nil
	}
	size := line.Size
	if size == "" {
		size = models.SizeMedium
	}
	recipes, err := c.ListRecipes(ctx, line.MenuItemID, size)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if len(recipes) > 0 {
		out := make([]Consumption, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, Consumption{
				InventoryID: r.InventoryID,
				Quantity:    r.QuantityRequired * line.Quantity,
			})
		}
		return out, nil
	}

	item, err := c.GetMenuItem(ctx, line.MenuItemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if item.StockItemID == nil || *item.StockItemID == "" {
		return nil, nil
	}
	return []Consumption{{InventoryID: *item.StockItemID, Quantity: line.Quantity}}, nil
}

// NameResolver matches the line name against stock item names. Menu documents
// are never candidates. When several stock items share the name the oldest
// wins and the consumption is marked ambiguous.
type NameResolver struct {
	log *slog.Logger
}

func (r NameResolver) Resolve(ctx context.Context, c Catalog, line Line) ([]Consumption, error) {
	name := line.Name
	if name == "" && line.MenuItemID != "" {
		item, err := c.GetMenuItem(ctx, line.MenuItemID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get menu item: %w", err)
		}
		if item != nil {
			name = item.Name
		}
	}
	key := models.NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	candidates, err := c.FindInventoryByNameKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find inventory %q: %w", key, err)
	}

	var stock []models.InventoryItem
	menuClash := false
	for _, it := range candidates {
		if it.Kind == models.KindMenu {
			menuClash = true
			continue
		}
		stock = append(stock, it)
	}
	if menuClash && r.log != nil {
		r.log.Warn("name shared by menu and stock documents", "name", key, "stock_matches", len(stock))
	}
	if len(stock) == 0 {
		return nil, nil
	}
	return []Consumption{{
		InventoryID: stock[0].ID,
		Name:        stock[0].Name,
		Quantity:    line.Quantity,
		Ambiguous:   len(stock) > 1,
	}}, nil
}
