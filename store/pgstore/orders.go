package pgstore

import (
	"context"
	"fmt"
	"strings"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, order_number, business_day, customer_name, order_type, status,
	total_amount, user_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.BusinessDay, &o.CustomerName, &o.OrderType, &o.Status,
		&o.TotalAmount, &o.UserID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// CreateOrder writes the order and its lines in one batch.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = models.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	b := &pgx.Batch{}
	b.Queue(`INSERT INTO orders (`+orderColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.OrderNumber, o.BusinessDay, o.CustomerName, o.OrderType, o.Status,
		o.TotalAmount, o.UserID, o.CreatedAt, o.UpdatedAt)
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = models.NewID()
		}
		it.OrderID = o.ID
		b.Queue(`INSERT INTO order_items
			(id, order_id, menu_item_id, name, quantity, size, unit_price, total_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			it.ID, it.OrderID, it.MenuItemID, it.Name, it.Quantity, it.Size, it.UnitPrice, it.TotalPrice)
	}

	br := s.db.SendBatch(ctx, b)
	for range b.Len() {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return translate(err)
		}
	}
	return br.Close()
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{*o}
	if err := s.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From.UTC())
	}
	if !f.To.IsZero() {
		add("created_at < $%d", f.To.UTC())
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems fills Items for every order with a single query.
func (s *Store) loadItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []models.OrderItem{}
	}
	rows, err := s.db.Query(ctx, `SELECT id, order_id, menu_item_id, name, quantity, size, unit_price, total_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.Size, &it.UnitPrice, &it.TotalPrice)
		if err != nil {
			return err
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE orders SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`, id, string(from), string(to), now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

