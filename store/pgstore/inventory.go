package pgstore

import (
	"context"
	"fmt"
	"strings"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, name, name_key, kind, category, stock, unit, min_stock_level,
	expiry_date, is_active, version, created_at, updated_at`

func scanItem(row pgx.Row) (*models.InventoryItem, error) {
	var it models.InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.NameKey, &it.Kind, &it.Category, &it.Stock, &it.Unit,
		&it.MinStockLevel, &it.ExpiryDate, &it.IsActive, &it.Version, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func collectItems(rows pgx.Rows, err error) ([]models.InventoryItem, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (s *Store) CreateInventoryItem(ctx context.Context, it *models.InventoryItem) error {
	it.Prepare()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now()
	}
	it.UpdatedAt = it.CreatedAt
	_, err := s.db.Exec(ctx, `INSERT INTO inventory_items (`+itemColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		it.ID, it.Name, it.NameKey, it.Kind, it.Category, it.Stock, it.Unit, it.MinStockLevel,
		it.ExpiryDate, it.IsActive, it.Version, it.CreatedAt, it.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdateInventoryDetails(ctx context.Context, it *models.InventoryItem) error {
	return exactlyOne(s.db.Exec(ctx, `UPDATE inventory_items SET
		name = $2, name_key = $3, kind = $4, category = $5, unit = $6,
		min_stock_level = $7, expiry_date = $8, updated_at = $9
		WHERE id = $1`,
		it.ID, it.Name, models.NormalizeName(it.Name), it.Kind, it.Category, it.Unit,
		it.MinStockLevel, it.ExpiryDate, now()))
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	return scanItem(s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
}

func (s *Store) ListInventory(ctx context.Context, f store.InventoryFilter) ([]models.InventoryItem, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeInactive {
		where = append(where, "is_active")
	}
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if key := models.NormalizeName(f.Search); key != "" {
		args = append(args, "%"+key+"%")
		where = append(where, fmt.Sprintf("name_key LIKE $%d", len(args)))
	}
	q := `SELECT ` + itemColumns + ` FROM inventory_items`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY name_key, id`
	return collectItems(s.db.Query(ctx, q, args...))
}

func (s *Store) FindInventoryByNameKey(ctx context.Context, key string) ([]models.InventoryItem, error) {
	return collectItems(s.db.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items
		WHERE name_key = $1 AND is_active ORDER BY created_at, id`, key))
}

func (s *Store) SetInventoryActive(ctx context.Context, id string, active bool) error {
	return exactlyOne(s.db.Exec(ctx,
		`UPDATE inventory_items SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, now()))
}

func (s *Store) CompareAndSetStock(ctx context.Context, id string, version int64, stock float64) (bool, error) {
	tag, err := s.db.Exec(ctx, `UPDATE inventory_items
		SET stock = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $2`, id, version, stock, now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) RecordMovement(ctx context.Context, m *models.StockMovement) error {
	if m.ID == "" {
		m.ID = models.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO stock_movements
		(id, inventory_id, delta, previous_qty, new_qty, reason, reference, user_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.InventoryID, m.Delta, m.PreviousQty, m.NewQty, m.Reason, m.Reference, m.UserID, m.CreatedAt)
	return translate(err)
}

func (s *Store) ListMovements(ctx context.Context, inventoryID string, limit int) ([]models.StockMovement, error) {
	q := `SELECT id, inventory_id, delta, previous_qty, new_qty, reason, reference, user_id, created_at
		FROM stock_movements WHERE inventory_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{inventoryID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StockMovement
	for rows.Next() {
		var m models.StockMovement
		err := rows.Scan(&m.ID, &m.InventoryID, &m.Delta, &m.PreviousQty, &m.NewQty,
			&m.Reason, &m.Reference, &m.UserID, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
