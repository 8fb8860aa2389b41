package gormstore

import (
	"context"

	"dserve-api/models"
	"dserve-api/store"
)

func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return translate(s.db.WithContext(ctx).Create(item).Error)
}

func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	res := s.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":          item.Name,
			"category":      item.Category,
			"base_price":    item.BasePrice,
			"price_small":   item.PriceSmall,
			"price_medium":  item.PriceMedium,
			"price_large":   item.PriceLarge,
			"image_url":     item.ImageURL,
			"stock_item_id": item.StockItemID,
			"is_available":  item.IsAvailable,
			"updated_at":    now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *Store) ListMenu(ctx context.Context, f store.MenuFilter) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := s.db.WithContext(ctx).Order("category, name")
	if f.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SetMenuItemAvailable(ctx context.Context, id string, available bool) error {
	res := s.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_available": available, "updated_at": now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateRecipe(ctx context.Context, r *models.Recipe) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListRecipes(ctx context.Context, menuItemID string, size models.Size) ([]models.Recipe, error) {
	var out []models.Recipe
	q := s.db.WithContext(ctx).Where("menu_item_id = ?", menuItemID).Order("created_at, id")
	if size != "" {
		q = q.Where("size = ?", size)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
