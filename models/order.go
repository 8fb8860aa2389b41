package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the kitchen progress of an order. Order content never changes.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

type OrderType string

const (
	OrderDineIn   OrderType = "dine-in"
	OrderTakeOut  OrderType = "take-out"
	OrderDelivery OrderType = "delivery"
)

// ParseOrderType defaults to dine-in.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderDineIn:
		return OrderDineIn, nil
	case OrderTakeOut:
		return OrderTakeOut, nil
	case OrderDelivery:
		return OrderDelivery, nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}

type Order struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber  string          `json:"order_number" gorm:"not null;uniqueIndex:idx_orders_day_number"`
	BusinessDay  string          `json:"business_day" gorm:"not null;size:10;uniqueIndex:idx_orders_day_number"`
	CustomerName string          `json:"customer_name"`
	OrderType    OrderType       `json:"order_type" gorm:"not null"`
	Status       OrderStatus     `json:"status" gorm:"not null;index"`
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	UserID       string          `json:"user_id" gorm:"index"`
	Items        []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}

type OrderItem struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string          `json:"order_id" gorm:"index;not null"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"` // snapshot name
	Quantity   int             `json:"quantity" gorm:"not null"`
	Size       Size            `json:"size"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}
