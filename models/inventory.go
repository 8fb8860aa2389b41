package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemKind separates stock-tracked ingredients from sellable menu documents
// that were stored in the same collection.
type ItemKind string

const (
	KindStock ItemKind = "stock"
	KindMenu  ItemKind = "menu"
)

const (
	DefaultUnit          = "pieces"
	DefaultMinStockLevel = 10
)

type InventoryItem struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	Name          string     `json:"name" gorm:"not null"`
	NameKey       string     `json:"-" gorm:"index;not null"`
	Kind          ItemKind   `json:"kind" gorm:"not null;default:'stock'"`
	Category      string     `json:"category"`
	Stock         float64    `json:"stock" gorm:"not null"`
	Unit          string     `json:"unit"`
	MinStockLevel float64    `json:"min_stock_level"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	Version       int64      `json:"version" gorm:"not null"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Prepare fills the derived and defaulted fields before the first insert.
func (i *InventoryItem) Prepare() {
	if i.ID == "" {
		i.ID = NewID()
	}
	if i.Kind == "" {
		i.Kind = KindStock
	}
	if i.Unit == "" {
		i.Unit = DefaultUnit
	}
	i.NameKey = NormalizeName(i.Name)
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	i.Prepare()
	return nil
}

func (i *InventoryItem) IsLowStock() bool {
	return i.Stock < i.MinStockLevel
}

type MovementReason string

const (
	ReasonSale       MovementReason = "sale"
	ReasonRestock    MovementReason = "restock"
	ReasonAdjustment MovementReason = "adjustment"
)

func (r MovementReason) Valid() bool {
	switch r {
	case ReasonSale, ReasonRestock, ReasonAdjustment:
		return true
	}
	return false
}

// StockMovement records every stock change with the quantities around it
type StockMovement struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	InventoryID string         `json:"inventory_id" gorm:"index;not null"`
	Delta       float64        `json:"delta" gorm:"not null"`
	PreviousQty float64        `json:"previous_qty"`
	NewQty      float64        `json:"new_qty"`
	Reason      MovementReason `json:"reason" gorm:"not null"`
	Reference   string         `json:"reference"`
	UserID      string         `json:"user_id"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

type DailyCounter struct {
	Day   string `json:"day" gorm:"primaryKey;size:10"`
	Value int64  `json:"value" gorm:"not null"`
}
