// Package alerts detects low-stock and soon-to-expire inventory and delivers
// notifications about it.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"dserve-api/models"
)

type Kind string

const (
	KindLowStock Kind = "low_stock"
	KindExpiry   Kind = "expiry"
)

// ExpiryWindowDays is how far ahead an expiry date raises an alert.
const ExpiryWindowDays = 7

type Alert struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	ItemID    string     `json:"item_id"`
	ItemName  string     `json:"item_name"`
	Message   string     `json:"message"`
	Stock     float64    `json:"stock"`
	MinStock  float64    `json:"min_stock_level"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	DaysLeft  int        `json:"days_left,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Scan returns the alerts raised by active stock items at now: one when stock
// is below the minimum level and one when the expiry date is 0 to 7 days away.
func Scan(items []models.InventoryItem, now time.Time) []Alert {
	var out []Alert
	for _, it := range items {
		if !it.IsActive || it.Kind == models.KindMenu {
			continue
		}
		if it.IsLowStock() {
			out = append(out, Alert{
				ID:        "low-" + it.ID,
				Kind:      KindLowStock,
				ItemID:    it.ID,
				ItemName:  it.Name,
				Message:   fmt.Sprintf("%s is running low (%s remaining)", it.Name, formatQty(it.Stock)),
				Stock:     it.Stock,
				MinStock:  it.MinStockLevel,
				Timestamp: now,
			})
		}
		if it.ExpiryDate != nil {
			days := int(math.Ceil(it.ExpiryDate.Sub(now).Hours() / 24))
			if days >= 0 && days <= ExpiryWindowDays {
				out = append(out, Alert{
					ID:        "expiry-" + it.ID,
					Kind:      KindExpiry,
					ItemID:    it.ID,
					ItemName:  it.Name,
					Message:   fmt.Sprintf("%s expires in %d day%s", it.Name, days, plural(days)),
					Stock:     it.Stock,
					MinStock:  it.MinStockLevel,
					ExpiresAt: it.ExpiryDate,
					DaysLeft:  days,
					Timestamp: now,
				})
			}
		}
	}
	return out
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

//go:generate mockgen -destination=../mocks/mock_alerts.go -package=mocks dserve-api/alerts Notifier

type Notifier interface {
	Notify(ctx context.Context, batch []Alert) error
}

// LogNotifier writes each alert as a warning.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, batch []Alert) error {
	for _, a := range batch {
		n.log.WarnContext(ctx, "inventory alert", "kind", a.Kind, "item_id", a.ItemID, "message", a.Message)
	}
	return nil
}
