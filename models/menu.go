package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize accepts the full names and the S/M/L shorthand used by the till.
// An empty string is medium.
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "m", "medium":
		return SizeMedium, nil
	case "s", "small":
		return SizeSmall, nil
	case "l", "large":
		return SizeLarge, nil
	}
	return "", fmt.Errorf("unknown size %q", s)
}

type MenuItem struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	Name        string          `json:"name" gorm:"not null"`
	Category    string          `json:"category" gorm:"index"`
	BasePrice   decimal.Decimal `json:"base_price" gorm:"type:decimal(12,2);not null"`
	PriceSmall  decimal.Decimal `json:"price_small" gorm:"type:decimal(12,2)"`
	PriceMedium decimal.Decimal `json:"price_medium" gorm:"type:decimal(12,2)"`
	PriceLarge  decimal.Decimal `json:"price_large" gorm:"type:decimal(12,2)"`
	ImageURL    string          `json:"image_url"`
	StockItemID *string         `json:"stock_item_id,omitempty" gorm:"size:36"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

// PriceFor returns the size price, falling back to the base price when the
// size has none.
func (m *MenuItem) PriceFor(size Size) decimal.Decimal {
	var p decimal.Decimal
	switch size {
	case SizeSmall:
		p = m.PriceSmall
	case SizeMedium:
		p = m.PriceMedium
	case SizeLarge:
		p = m.PriceLarge
	}
	if p.IsZero() {
		return m.BasePrice
	}
	return p
}

// Recipe says how much of one inventory item a menu item consumes per unit sold
type Recipe struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	MenuItemID       string    `json:"menu_item_id" gorm:"index:idx_recipes_menu_size;not null"`
	InventoryID      string    `json:"inventory_id" gorm:"not null"`
	Size             Size      `json:"size" gorm:"index:idx_recipes_menu_size;not null"`
	QuantityRequired float64   `json:"quantity_required" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
}

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.Size == "" {
		r.Size = SizeMedium
	}
	return nil
}
