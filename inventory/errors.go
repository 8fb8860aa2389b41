package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockContention is returned when a compare-and-swap keeps losing
	// after every retry.
	ErrStockContention = errors.New("stock update conflict")
)

type Shortage struct {
	InventoryID string  `json:"inventory_id"`
	Name        string  `json:"name"`
	Required    float64 `json:"required"`
	Available   float64 `json:"available"`
	Unit        string  `json:"unit"`
}

type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		names = append(names, fmt.Sprintf("%s (need %g, have %g)", s.Name, s.Required, s.Available))
	}
	return "insufficient stock: " + strings.Join(names, ", ")
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
