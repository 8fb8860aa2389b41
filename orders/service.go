// Package orders saves orders, deducting their stock in the same transaction.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dserve-api/alerts"
	"dserve-api/events"
	"dserve-api/inventory"
	"dserve-api/metrics"
	"dserve-api/models"
	"dserve-api/ordernumber"
	"dserve-api/statemachine"
	"dserve-api/store"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalidOrder = errors.New("invalid order")

type LineInput struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name" validate:"required_without=MenuItemID"`
	Quantity   int             `json:"quantity" validate:"gt=0"`
	Size       string          `json:"size"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type PlaceOrderInput struct {
	CustomerName string      `json:"customer_name" validate:"max=120"`
	OrderType    string      `json:"order_type"`
	UserID       string      `json:"-"`
	Items        []LineInput `json:"items" validate:"required,min=1,dive"`
}

type PlaceOrderResult struct {
	Order      *models.Order          `json:"order"`
	Deductions []inventory.LineResult `json:"deductions"`
}

// StockWatcher is told which inventory items an order changed.
type StockWatcher interface {
	CheckItems(ctx context.Context, ids []string) ([]alerts.Alert, error)
}

type Deps struct {
	Store      store.Store
	Sequencer  *ordernumber.Sequencer
	Reconciler *inventory.Reconciler
	Watcher    StockWatcher
	Publisher  events.Publisher
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Now        func() time.Time
}

type Service struct {
	store      store.Store
	sequencer  *ordernumber.Sequencer
	reconciler *inventory.Reconciler
	watcher    StockWatcher
	publisher  events.Publisher
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time
	validate   *validator.Validate
}

func NewService(d Deps) *Service {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		store:      d.Store,
		sequencer:  d.Sequencer,
		reconciler: d.Reconciler,
		watcher:    d.Watcher,
		publisher:  d.Publisher,
		metrics:    d.Metrics,
		log:        d.Logger,
		now:        d.Now,
		validate:   validator.New(),
	}
}

// Place prices the cart, allocates the day's next order number and saves the
// order together with its stock deductions. Alerts and the order.placed
// event follow the commit and never fail the call.
func (s *Service) Place(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	orderType, err := models.ParseOrderType(in.OrderType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	items, total, err := s.priceLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	num, err := s.sequencer.Next(ctx, now)
	if err != nil {
		return nil, err
	}
	order := &models.Order{
		ID:           models.NewID(),
		OrderNumber:  num.String(),
		BusinessDay:  num.Day,
		CustomerName: strings.TrimSpace(in.CustomerName),
		OrderType:    orderType,
		Status:       models.StatusPending,
		TotalAmount:  total,
		UserID:       in.UserID,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var deductions []inventory.LineResult
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		res, err := s.reconciler.Apply(ctx, tx, order)
		deductions = res
		return err
	})
	if err != nil {
		s.log.Warn("order rejected", "order", order.OrderNumber, "err", err)
		return nil, err
	}

	s.metrics.ObserveOrder(string(order.OrderType), order.TotalAmount.InexactFloat64())
	s.log.Info("order saved",
		"order", order.OrderNumber, "id", order.ID, "type", order.OrderType,
		"total", order.TotalAmount.StringFixed(2), "lines", len(order.Items))

	if touched := inventory.Touched(deductions); len(touched) > 0 && s.watcher != nil {
		if _, err := s.watcher.CheckItems(ctx, touched); err != nil {
			s.log.Warn("post-order alert check failed", "order", order.OrderNumber, "err", err)
		}
	}
	if err := s.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(order)); err != nil {
		s.log.Warn("publish order.placed failed", "order", order.OrderNumber, "err", err)
	}
	if deductions == nil {
		deductions = []inventory.LineResult{}
	}
	return &PlaceOrderResult{Order: order, Deductions: deductions}, nil
}

func (s *Service) priceLines(ctx context.Context, lines []LineInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		size, err := models.ParseSize(l.Size)
		if err != nil {
			return nil, total, fmt.Errorf("%w: line %d: %v", ErrInvalidOrder, i, err)
		}
		item := models.OrderItem{MenuItemID: l.MenuItemID, Quantity: l.Quantity, Size: size}
		if l.MenuItemID != "" {
			menu, err := s.store.GetMenuItem(ctx, l.MenuItemID)
			if errors.Is(err, store.ErrNotFound) {
				return nil, total, fmt.Errorf("%w: line %d: unknown menu item %s", ErrInvalidOrder, i, l.MenuItemID)
			}
			if err != nil {
				return nil, total, fmt.Errorf("get menu item: %w", err)
			}
			if !menu.IsAvailable {
				return nil, total, fmt.Errorf("%w: line %d: %s is not available", ErrInvalidOrder, i, menu.Name)
			}
			item.Name = menu.Name
			item.UnitPrice = menu.PriceFor(size)
		} else {
			if l.UnitPrice.IsNegative() {
				return nil, total, fmt.Errorf("%w: line %d: negative price", ErrInvalidOrder, i)
			}
			item.Name = strings.TrimSpace(l.Name)
			item.UnitPrice = l.UnitPrice
		}
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(item.TotalPrice)
		items = append(items, item)
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	return s.store.ListOrders(ctx, f)
}

// AdvanceStatus moves the order along the kitchen flow if actor may do so.
func (s *Service) AdvanceStatus(ctx context.Context, id string, to models.OrderStatus, actor models.UserRole) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(order.Status, to, actor); err != nil {
		return nil, err
	}
	if err := s.store.UpdateOrderStatus(ctx, id, order.Status, to); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.log.Info("order status changed", "order", order.OrderNumber, "from", order.Status, "to", to, "actor", actor)
	return s.store.GetOrder(ctx, id)
}

// NextNumber reports today's highest order number and the one that follows.
func (s *Service) NextNumber(ctx context.Context) (int64, string, error) {
	return s.sequencer.PeekNext(ctx)
}
