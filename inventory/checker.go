package inventory

import (
	"context"
	"errors"
	"fmt"

	"dserve-api/models"
	"dserve-api/store"
)

// Reader is the read-only view the availability check needs.
type Reader interface {
	Catalog
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
}

type Report struct {
	Available bool       `json:"available"`
	Shortages []Shortage `json:"shortages"`
}

// Checker answers whether a cart can be served from current stock. It never
// writes.
type Checker struct {
	reader   Reader
	resolver Resolver
}

func NewChecker(reader Reader, resolver Resolver) *Checker {
	return &Checker{reader: reader, resolver: resolver}
}

func (c *Checker) Check(ctx context.Context, lines []Line) (*Report, error) {
	required := map[string]float64{}
	var order []string
	for i, line := range lines {
		if line.Size == "" {
			line.Size = models.SizeMedium
		}
		cons, err := c.resolver.Resolve(ctx, c.reader, line)
		if err != nil {
			return nil, fmt.Errorf("resolve line %d: %w", i, err)
		}
		for _, con := range cons {
			if _, ok := required[con.InventoryID]; !ok {
				order = append(order, con.InventoryID)
			}
			required[con.InventoryID] += con.Quantity
		}
	}

	report := &Report{Shortages: []Shortage{}}
	for _, id := range order {
		item, err := c.reader.GetInventoryItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get inventory %s: %w", id, err)
		}
		if !item.IsActive {
			continue
		}
		if item.Stock < required[id] {
			report.Shortages = append(report.Shortages, Shortage{
				InventoryID: id,
				Name:        item.Name,
				Required:    required[id],
				Available:   item.Stock,
				Unit:        item.Unit,
			})
		}
	}
	report.Available = len(report.Shortages) == 0
	return report, nil
}
