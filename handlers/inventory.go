package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dserve-api/inventory"
	"dserve-api/middleware"
	"dserve-api/models"
	"dserve-api/report"
	"dserve-api/store"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InventoryRequest struct {
	Name          string   `json:"name" binding:"required"`
	Kind          string   `json:"kind" binding:"omitempty,oneof=stock menu"`
	Category      string   `json:"category"`
	Stock         float64  `json:"stock" binding:"gte=0"`
	Unit          string   `json:"unit"`
	MinStockLevel *float64 `json:"min_stock_level" binding:"omitempty,gte=0"`
	ExpiryDate    string   `json:"expiry_date"`
}

// UpdateInventoryRequest carries only the fields to change. A stock value is
// applied as an adjustment against the current level.
type UpdateInventoryRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Stock         *float64 `json:"stock" binding:"omitempty,gte=0"`
	Unit          *string  `json:"unit"`
	MinStockLevel *float64 `json:"min_stock_level" binding:"omitempty,gte=0"`
	ExpiryDate    *string  `json:"expiry_date"`
}

type AdjustRequest struct {
	Delta  float64 `json:"delta" binding:"required"`
	Reason string  `json:"reason" binding:"omitempty,oneof=restock adjustment"`
	Note   string  `json:"note"`
}

type AvailabilityLine struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity" binding:"gt=0"`
	Size       string  `json:"size"`
}

type AvailabilityRequest struct {
	Items []AvailabilityLine `json:"items" binding:"required,min=1,dive"`
}

func (h *Handler) expiry(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_date %q", s)
	}
	return &t, nil
}

// ListInventory returns active items sorted by name
func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.store.ListInventory(c.Request.Context(), store.InventoryFilter{
		Kind:            models.ItemKind(c.Query("kind")),
		Search:          c.Query("search"),
		IncludeInactive: c.Query("include_inactive") == "true",
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

func (h *Handler) GetInventoryItem(c *gin.Context) {
	item, err := h.store.GetInventoryItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) CreateInventoryItem(c *gin.Context) {
	var req InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exp, err := h.expiry(req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := &models.InventoryItem{
		Name:          strings.TrimSpace(req.Name),
		Kind:          models.ItemKind(req.Kind),
		Category:      req.Category,
		Stock:         req.Stock,
		Unit:          req.Unit,
		MinStockLevel: models.DefaultMinStockLevel,
		ExpiryDate:    exp,
		IsActive:      true,
	}
	if req.MinStockLevel != nil {
		item.MinStockLevel = *req.MinStockLevel
	}
	if err := h.store.CreateInventoryItem(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("inventory item created", "id", item.ID, "name", item.Name, "stock", item.Stock)
	h.recheck(c.Request.Context(), item.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Inventory item created", "item": item})
}

func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	item, err := h.store.GetInventoryItem(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
			return
		}
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.MinStockLevel != nil {
		item.MinStockLevel = *req.MinStockLevel
	}
	if req.ExpiryDate != nil {
		exp, err := h.expiry(*req.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item.ExpiryDate = exp
	}

	err = h.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateInventoryDetails(ctx, item); err != nil {
			return err
		}
		if req.Stock == nil {
			return nil
		}
		current, err := tx.GetInventoryItem(ctx, item.ID)
		if err != nil || *req.Stock == current.Stock {
			return err
		}
		_, err = h.reconciler.Adjust(ctx, tx, item.ID, *req.Stock-current.Stock,
			models.ReasonAdjustment, "manual edit", middleware.GetUserID(c))
		return err
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.store.GetInventoryItem(ctx, item.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.recheck(ctx, item.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item updated", "item": updated})
}

// DeleteInventoryItem deactivates the item. Its movements are kept.
func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.SetInventoryActive(c.Request.Context(), id, false); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("inventory item deactivated", "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deactivated", "id": id})
}

// AdjustStock applies a manual delta through the compare-and-swap path
func (h *Handler) AdjustStock(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reason := models.MovementReason(req.Reason)
	if reason == "" {
		reason = models.ReasonAdjustment
		if req.Delta > 0 {
			reason = models.ReasonRestock
		}
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	var res *inventory.DeductResult
	err := h.store.WithinTx(ctx, func(tx store.Store) error {
		r, err := h.reconciler.Adjust(ctx, tx, id, req.Delta, reason, req.Note, middleware.GetUserID(c))
		res = r
		return err
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("stock adjusted", "id", id, "delta", req.Delta, "reason", reason,
		"previous", res.PreviousStock, "new", res.NewStock)
	h.recheck(ctx, id)
	c.JSON(http.StatusOK, gin.H{"message": "Stock adjusted", "result": res})
}

func (h *Handler) ListMovements(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.store.GetInventoryItem(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	moves, err := h.store.ListMovements(ctx, id, queryInt(c, "limit", 50))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(moves), "movements": moves})
}

// InventoryAlerts returns the current low-stock and expiry alerts
func (h *Handler) InventoryAlerts(c *gin.Context) {
	active, err := h.watcher.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(active), "alerts": active})
}

func (h *Handler) ExportInventory(c *gin.Context) {
	items, err := h.store.ListInventory(c.Request.Context(), store.InventoryFilter{Kind: models.KindStock})
	if err != nil {
		h.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteInventoryXLSX(&buf, items); err != nil {
		h.respondError(c, err)
		return
	}
	name := fmt.Sprintf("inventory-%s.xlsx", h.now().Format(time.DateOnly))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CheckAvailability reports shortages for a cart without touching stock
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lines := make([]inventory.Line, 0, len(req.Items))
	for i, it := range req.Items {
		if it.MenuItemID == "" && strings.TrimSpace(it.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("item %d needs menu_item_id or name", i)})
			return
		}
		size, err := models.ParseSize(it.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lines = append(lines, inventory.Line{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Size:       size,
			Quantity:   it.Quantity,
		})
	}
	rep, err := h.checker.Check(c.Request.Context(), lines)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// recheck runs the alert check for one item after a stock write. Failures are
// logged only.
func (h *Handler) recheck(ctx context.Context, id string) {
	if h.watcher == nil {
		return
	}
	if _, err := h.watcher.CheckItems(ctx, []string{id}); err != nil {
		h.log.Warn("alert check failed", "id", id, "err", err)
	}
}
