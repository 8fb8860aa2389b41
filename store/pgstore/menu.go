package pgstore

import (
	"context"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/jackc/pgx/v5"
)

const menuColumns = `id, name, category, base_price, price_small, price_medium, price_large,
	image_url, stock_item_id, is_available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var m models.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.BasePrice, &m.PriceSmall, &m.PriceMedium,
		&m.PriceLarge, &m.ImageURL, &m.StockItemID, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	if m.ID == "" {
		m.ID = models.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	m.UpdatedAt = m.CreatedAt
	_, err := s.db.Exec(ctx, `INSERT INTO menu_items (`+menuColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		m.ID, m.Name, m.Category, m.BasePrice, m.PriceSmall, m.PriceMedium, m.PriceLarge,
		m.ImageURL, m.StockItemID, m.IsAvailable, m.CreatedAt, m.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdateMenuItem(ctx context.Context, m *models.MenuItem) error {
	return exactlyOne(s.db.Exec(ctx, `UPDATE menu_items SET
		name = $2, category = $3, base_price = $4, price_small = $5, price_medium = $6,
		price_large = $7, image_url = $8, stock_item_id = $9, is_available = $10, updated_at = $11
		WHERE id = $1`,
		m.ID, m.Name, m.Category, m.BasePrice, m.PriceSmall, m.PriceMedium, m.PriceLarge,
		m.ImageURL, m.StockItemID, m.IsAvailable, now()))
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return scanMenuItem(s.db.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id))
}

func (s *Store) ListMenu(ctx context.Context, f store.MenuFilter) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, `SELECT `+menuColumns+` FROM menu_items
		WHERE (NOT $1 OR is_available) AND ($2 = '' OR category = $2)
		ORDER BY category, name`, f.OnlyAvailable, f.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) SetMenuItemAvailable(ctx context.Context, id string, available bool) error {
	return exactlyOne(s.db.Exec(ctx,
		`UPDATE menu_items SET is_available = $2, updated_at = $3 WHERE id = $1`, id, available, now()))
}

func (s *Store) CreateRecipe(ctx context.Context, r *models.Recipe) error {
	if r.ID == "" {
		r.ID = models.NewID()
	}
	if r.Size == "" {
		r.Size = models.SizeMedium
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO recipes
		(id, menu_item_id, inventory_id, size, quantity_required, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.MenuItemID, r.InventoryID, r.Size, r.QuantityRequired, r.CreatedAt)
	return translate(err)
}

func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	return exactlyOne(s.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id))
}

func (s *Store) ListRecipes(ctx context.Context, menuItemID string, size models.Size) ([]models.Recipe, error) {
	rows, err := s.db.Query(ctx, `SELECT id, menu_item_id, inventory_id, size, quantity_required, created_at
		FROM recipes WHERE menu_item_id = $1 AND ($2 = '' OR size = $2)
		ORDER BY created_at, id`, menuItemID, string(size))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Recipe
	for rows.Next() {
		var r models.Recipe
		if err := rows.Scan(&r.ID, &r.MenuItemID, &r.InventoryID, &r.Size, &r.QuantityRequired, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
