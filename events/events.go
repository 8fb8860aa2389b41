// Package events publishes order notifications for kitchen displays and other
// consumers.
package events

import (
	"context"
	"time"

	"dserve-api/models"

	"github.com/shopspring/decimal"
)

type OrderPlacedItem struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Size     models.Size `json:"size,omitempty"`
}

type OrderPlaced struct {
	OrderID      string            `json:"order_id"`
	OrderNumber  string            `json:"order_number"`
	OrderType    models.OrderType  `json:"order_type"`
	CustomerName string            `json:"customer_name,omitempty"`
	Total        decimal.Decimal   `json:"total"`
	Items        []OrderPlacedItem `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
}

func NewOrderPlaced(o *models.Order) OrderPlaced {
	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderPlacedItem{Name: it.Name, Quantity: it.Quantity, Size: it.Size})
	}
	return OrderPlaced{
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		OrderType:    o.OrderType,
		CustomerName: o.CustomerName,
		Total:        o.TotalAmount,
		Items:        items,
		CreatedAt:    o.CreatedAt,
	}
}

//go:generate mockgen -destination=../mocks/mock_events.go -package=mocks dserve-api/events Publisher

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlaced) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
func (Nop) Close() error                                          { return nil }
