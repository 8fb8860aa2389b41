// Package report builds sales summaries and spreadsheet exports.
package report

import (
	"fmt"
	"sort"
	"time"

	"dserve-api/models"

	"github.com/shopspring/decimal"
)

type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown report range %q", s)
}

// Range is a half-open UTC interval [From, To).
type Range struct {
	Period Period    `json:"period"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// NewRange returns the day, week (starting Monday) or month containing anchor.
func NewRange(p Period, anchor time.Time) Range {
	a := anchor.UTC()
	day := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		from := day.AddDate(0, 0, -offset)
		return Range{Period: p, From: from, To: from.AddDate(0, 0, 7)}
	case Monthly:
		from := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Range{Period: p, From: from, To: from.AddDate(0, 1, 0)}
	}
	return Range{Period: Daily, From: day, To: day.AddDate(0, 0, 1)}
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Sales struct {
	Range
	TotalOrders int                      `json:"total_orders"`
	TotalSales  decimal.Decimal          `json:"total_sales"`
	AverageSale decimal.Decimal          `json:"average_sale"`
	TopItems    []ItemSales              `json:"top_items"`
	ByOrderType map[models.OrderType]int `json:"by_order_type"`
}

const topItems = 5

// Summarize totals the orders created inside r. Top items are ranked by
// quantity sold, then revenue, then name.
func Summarize(orders []models.Order, r Range) Sales {
	s := Sales{
		Range:       r,
		TotalSales:  decimal.Zero,
		AverageSale: decimal.Zero,
		TopItems:    []ItemSales{},
		ByOrderType: map[models.OrderType]int{},
	}
	byName := map[string]*ItemSales{}
	for _, o := range orders {
		if !r.Contains(o.CreatedAt) {
			continue
		}
		s.TotalOrders++
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)
		s.ByOrderType[o.OrderType]++
		for _, it := range o.Items {
			agg, ok := byName[it.Name]
			if !ok {
				agg = &ItemSales{Name: it.Name, Revenue: decimal.Zero}
				byName[it.Name] = agg
			}
			agg.Quantity += it.Quantity
			agg.Revenue = agg.Revenue.Add(it.TotalPrice)
		}
	}
	if s.TotalOrders > 0 {
		s.AverageSale = s.TotalSales.Div(decimal.NewFromInt(int64(s.TotalOrders))).Round(2)
	}

	all := make([]ItemSales, 0, len(byName))
	for _, agg := range byName {
		all = append(all, *agg)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Quantity != all[j].Quantity {
			return all[i].Quantity > all[j].Quantity
		}
		if c := all[i].Revenue.Cmp(all[j].Revenue); c != 0 {
			return c > 0
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > topItems {
		all = all[:topItems]
	}
	s.TopItems = append(s.TopItems, all...)
	return s
}
