package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dserve-api/metrics"
	"dserve-api/models"
	"dserve-api/store"

	"github.com/sethvargo/go-retry"
)

// Outcome is the tagged result of one stock change.
type Outcome string

const (
	OutcomeApplied      Outcome = "applied"
	OutcomeConflict     Outcome = "conflict"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeInsufficient Outcome = "insufficient"
	OutcomeSkipped      Outcome = "skipped"
)

type DeductResult struct {
	Outcome       Outcome `json:"outcome"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	PreviousStock float64 `json:"previous_stock"`
	NewStock      float64 `json:"new_stock"`
}

// LineResult reports what happened to one consumption of one order line.
// A line with no consumption yields a single skipped result.
type LineResult struct {
	Line          int     `json:"line"`
	MenuItemID    string  `json:"menu_item_id,omitempty"`
	Name          string  `json:"name"`
	InventoryID   string  `json:"inventory_id,omitempty"`
	Quantity      float64 `json:"quantity"`
	Outcome       Outcome `json:"outcome"`
	PreviousStock float64 `json:"previous_stock"`
	NewStock      float64 `json:"new_stock"`
	Ambiguous     bool    `json:"ambiguous,omitempty"`
}

// Ledger is the transactional store view the reconciler writes through.
type Ledger interface {
	Catalog
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
	CompareAndSetStock(ctx context.Context, id string, version int64, stock float64) (bool, error)
	RecordMovement(ctx context.Context, m *models.StockMovement) error
}

type Options struct {
	AllowNegative bool
	MaxRetries    uint64
	BaseDelay     time.Duration
}

type Reconciler struct {
	resolver Resolver
	opts     Options
	log      *slog.Logger
	metrics  *metrics.Metrics
}

func NewReconciler(resolver Resolver, opts Options, log *slog.Logger, m *metrics.Metrics) *Reconciler {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 5
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 5 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{resolver: resolver, opts: opts, log: log, metrics: m}
}

// Apply deducts the stock consumed by every line of order and writes one sale
// movement per applied change. It must run inside the transaction that
// inserts the order. Shortages are collected across all lines and returned
// as *InsufficientStockError so the caller can roll back.
func (r *Reconciler) Apply(ctx context.Context, l Ledger, order *models.Order) ([]LineResult, error) {
	var (
		results []LineResult
		totals  = map[string]*demand{}
		seen    []string
	)
	for i, it := range order.Items {
		line := Line{MenuItemID: it.MenuItemID, Name: it.Name, Size: it.Size, Quantity: float64(it.Quantity)}
		cons, err := r.resolver.Resolve(ctx, l, line)
		if err != nil {
			return nil, fmt.Errorf("resolve line %d: %w", i, err)
		}
		if len(cons) == 0 {
			r.log.Info("order line skipped, no stock link", "order", order.OrderNumber, "line", i, "name", it.Name)
			r.metrics.ObserveDeduction(string(OutcomeSkipped))
			results = append(results, LineResult{
				Line: i, MenuItemID: it.MenuItemID, Name: it.Name,
				Quantity: line.Quantity, Outcome: OutcomeSkipped,
			})
			continue
		}

		for _, c := range cons {
			res, err := r.change(ctx, l, c.InventoryID, -c.Quantity)
			if err != nil {
				return nil, fmt.Errorf("deduct %s for line %d: %w", c.InventoryID, i, err)
			}
			r.metrics.ObserveDeduction(string(res.Outcome))
			name := res.Name
			if name == "" {
				name = c.Name
			}
			lr := LineResult{
				Line:          i,
				MenuItemID:    it.MenuItemID,
				Name:          name,
				InventoryID:   c.InventoryID,
				Quantity:      c.Quantity,
				Outcome:       res.Outcome,
				PreviousStock: res.PreviousStock,
				NewStock:      res.NewStock,
				Ambiguous:     c.Ambiguous,
			}
			results = append(results, lr)

			if res.Outcome == OutcomeApplied || res.Outcome == OutcomeInsufficient {
				d, ok := totals[c.InventoryID]
				if !ok {
					d = &demand{name: name, unit: res.Unit, opening: res.PreviousStock}
					totals[c.InventoryID] = d
					seen = append(seen, c.InventoryID)
				}
				d.required += c.Quantity
				d.short = d.short || res.Outcome == OutcomeInsufficient
			}

			if c.Ambiguous {
				r.log.Warn("ambiguous stock name, oldest item used", "order", order.OrderNumber, "line", i, "inventory_id", c.InventoryID, "name", name)
			}
			switch res.Outcome {
			case OutcomeApplied:
				err := l.RecordMovement(ctx, &models.StockMovement{
					InventoryID: c.InventoryID,
					Delta:       -c.Quantity,
					PreviousQty: res.PreviousStock,
					NewQty:      res.NewStock,
					Reason:      models.ReasonSale,
					Reference:   order.OrderNumber,
					UserID:      order.UserID,
					CreatedAt:   order.CreatedAt,
				})
				if err != nil {
					return nil, fmt.Errorf("record movement: %w", err)
				}
			case OutcomeNotFound:
				r.log.Warn("recipe points at missing or inactive inventory", "order", order.OrderNumber, "line", i, "inventory_id", c.InventoryID)
			}
		}
	}
	var shortages []Shortage
	for _, id := range seen {
		d := totals[id]
		if !d.short {
			continue
		}
		shortages = append(shortages, Shortage{
			InventoryID: id,
			Name:        d.name,
			Required:    d.required,
			Available:   d.opening,
			Unit:        d.unit,
		})
	}
	if len(shortages) > 0 {
		return results, &InsufficientStockError{Shortages: shortages}
	}
	return results, nil
}

// demand totals what one order asks of an inventory item. opening is the
// stock seen before the order's first change to it.
type demand struct {
	name     string
	unit     string
	opening  float64
	required float64
	short    bool
}

// Adjust applies a manual stock change through the same compare-and-swap path
// as sales and records the movement.
func (r *Reconciler) Adjust(ctx context.Context, l Ledger, id string, delta float64, reason models.MovementReason, ref, userID string) (*DeductResult, error) {
	if delta == 0 {
		return nil, errors.New("adjustment delta must not be zero")
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("unknown movement reason %q", reason)
	}
	res, err := r.change(ctx, l, id, delta)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case OutcomeNotFound:
		return nil, store.ErrNotFound
	case OutcomeInsufficient:
		return nil, &InsufficientStockError{Shortages: []Shortage{{
			InventoryID: id, Name: res.Name, Required: -delta, Available: res.PreviousStock, Unit: res.Unit,
		}}}
	}
	err = l.RecordMovement(ctx, &models.StockMovement{
		InventoryID: id,
		Delta:       delta,
		PreviousQty: res.PreviousStock,
		NewQty:      res.NewStock,
		Reason:      reason,
		Reference:   ref,
		UserID:      userID,
	})
	if err != nil {
		return nil, fmt.Errorf("record movement: %w", err)
	}
	return &res, nil
}

// change reads the item, computes the new level and writes it with a version
// check, retrying with exponential backoff while other writers win the race.
func (r *Reconciler) change(ctx context.Context, l Ledger, id string, delta float64) (DeductResult, error) {
	var res DeductResult
	backoff := retry.WithMaxRetries(r.opts.MaxRetries, retry.NewExponential(r.opts.BaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		item, err := l.GetInventoryItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			res = DeductResult{Outcome: OutcomeNotFound}
			return nil
		}
		if err != nil {
			return err
		}
		if !item.IsActive {
			res = DeductResult{Outcome: OutcomeNotFound, Name: item.Name, Unit: item.Unit}
			return nil
		}

		next := item.Stock + delta
		if delta < 0 && next < 0 && !r.opts.AllowNegative {
			res = DeductResult{
				Outcome: OutcomeInsufficient, Name: item.Name, Unit: item.Unit,
				PreviousStock: item.Stock, NewStock: item.Stock,
			}
			return nil
		}

		ok, err := l.CompareAndSetStock(ctx, id, item.Version, next)
		if err != nil {
			return err
		}
		if !ok {
			r.metrics.ObserveCASConflict()
			res = DeductResult{Outcome: OutcomeConflict, Name: item.Name, Unit: item.Unit}
			return retry.RetryableError(ErrStockContention)
		}
		res = DeductResult{
			Outcome: OutcomeApplied, Name: item.Name, Unit: item.Unit,
			PreviousStock: item.Stock, NewStock: next,
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// Touched returns the inventory ids whose stock was changed, without repeats.
func Touched(results []LineResult) []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range results {
		if r.Outcome != OutcomeApplied || seen[r.InventoryID] {
			continue
		}
		seen[r.InventoryID] = true
		ids = append(ids, r.InventoryID)
	}
	return ids
}
