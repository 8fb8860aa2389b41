package gormstore

import (
	"context"

	"dserve-api/models"
	"dserve-api/store"

	"gorm.io/gorm"
)

func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	return translate(s.db.WithContext(ctx).Create(item).Error)
}

func (s *Store) UpdateInventoryDetails(ctx context.Context, item *models.InventoryItem) error {
	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":            item.Name,
			"name_key":        models.NormalizeName(item.Name),
			"kind":            item.Kind,
			"category":        item.Category,
			"unit":            item.Unit,
			"min_stock_level": item.MinStockLevel,
			"expiry_date":     item.ExpiryDate,
			"updated_at":      now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *Store) ListInventory(ctx context.Context, f store.InventoryFilter) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	q := s.db.WithContext(ctx).Order("name_key, id")
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if key := models.NormalizeName(f.Search); key != "" {
		q = q.Where("name_key LIKE ?", "%"+key+"%")
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindInventoryByNameKey(ctx context.Context, key string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("name_key = ? AND is_active = ?", key, true).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SetInventoryActive(ctx context.Context, id string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CompareAndSetStock(ctx context.Context, id string, version int64, stock float64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"stock":      stock,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) RecordMovement(ctx context.Context, m *models.StockMovement) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

func (s *Store) ListMovements(ctx context.Context, inventoryID string, limit int) ([]models.StockMovement, error) {
	var out []models.StockMovement
	q := s.db.WithContext(ctx).Where("inventory_id = ?", inventoryID).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
