package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MenuItemRequest struct {
	Name        string           `json:"name" binding:"required"`
	Category    string           `json:"category"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	PriceSmall  *decimal.Decimal `json:"price_small"`
	PriceMedium *decimal.Decimal `json:"price_medium"`
	PriceLarge  *decimal.Decimal `json:"price_large"`
	ImageURL    string           `json:"image_url"`
	StockItemID *string          `json:"stock_item_id"`
	IsAvailable *bool            `json:"is_available"`
}

type UpdateMenuItemRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	PriceSmall  *decimal.Decimal `json:"price_small"`
	PriceMedium *decimal.Decimal `json:"price_medium"`
	PriceLarge  *decimal.Decimal `json:"price_large"`
	ImageURL    *string          `json:"image_url"`
	StockItemID *string          `json:"stock_item_id"`
	IsAvailable *bool            `json:"is_available"`
}

type RecipeRequest struct {
	InventoryID      string  `json:"inventory_id" binding:"required"`
	Size             string  `json:"size"`
	QuantityRequired float64 `json:"quantity_required" binding:"gt=0"`
}

func negative(prices ...*decimal.Decimal) bool {
	for _, p := range prices {
		if p != nil && p.IsNegative() {
			return true
		}
	}
	return false
}

// checkStockLink makes sure a menu item only links to an active stock item.
func (h *Handler) checkStockLink(c *gin.Context, id *string) bool {
	if id == nil || *id == "" {
		return true
	}
	item, err := h.store.GetInventoryItem(c.Request.Context(), *id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && item.Kind != models.KindStock) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_item_id must reference a stock item"})
		return false
	}
	if err != nil {
		h.respondError(c, err)
		return false
	}
	return true
}

// ListMenu returns available items. ?all=true includes unavailable ones.
func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.store.ListMenu(c.Request.Context(), store.MenuFilter{
		Category:      c.Query("category"),
		OnlyAvailable: c.Query("all") != "true",
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": items})
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	item, err := h.store.GetMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if negative(&req.BasePrice, req.PriceSmall, req.PriceMedium, req.PriceLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prices must not be negative"})
		return
	}
	if !h.checkStockLink(c, req.StockItemID) {
		return
	}

	item := &models.MenuItem{
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		BasePrice:   req.BasePrice,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if req.PriceSmall != nil {
		item.PriceSmall = *req.PriceSmall
	}
	if req.PriceMedium != nil {
		item.PriceMedium = *req.PriceMedium
	}
	if req.PriceLarge != nil {
		item.PriceLarge = *req.PriceLarge
	}
	if req.StockItemID != nil && *req.StockItemID != "" {
		item.StockItemID = req.StockItemID
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := h.store.CreateMenuItem(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("menu item created", "id", item.ID, "name", item.Name)
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item created", "item": item})
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if negative(req.BasePrice, req.PriceSmall, req.PriceMedium, req.PriceLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prices must not be negative"})
		return
	}
	ctx := c.Request.Context()
	item, err := h.store.GetMenuItem(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.checkStockLink(c, req.StockItemID) {
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.BasePrice != nil {
		item.BasePrice = *req.BasePrice
	}
	if req.PriceSmall != nil {
		item.PriceSmall = *req.PriceSmall
	}
	if req.PriceMedium != nil {
		item.PriceMedium = *req.PriceMedium
	}
	if req.PriceLarge != nil {
		item.PriceLarge = *req.PriceLarge
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.StockItemID != nil {
		if *req.StockItemID == "" {
			item.StockItemID = nil
		} else {
			item.StockItemID = req.StockItemID
		}
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := h.store.UpdateMenuItem(ctx, item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// DeleteMenuItem marks the item unavailable. Past orders keep their lines.
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.SetMenuItemAvailable(c.Request.Context(), id, false); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item marked unavailable", "id": id})
}

func (h *Handler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	menuID := c.Param("id")
	if _, err := h.store.GetMenuItem(ctx, menuID); err != nil {
		h.respondError(c, err)
		return
	}
	var size models.Size
	if s := c.Query("size"); s != "" {
		parsed, err := models.ParseSize(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		size = parsed
	}
	recipes, err := h.store.ListRecipes(ctx, menuID, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(recipes), "recipes": recipes})
}

func (h *Handler) AddRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	size, err := models.ParseSize(req.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	menuID := c.Param("id")
	if _, err := h.store.GetMenuItem(ctx, menuID); err != nil {
		h.respondError(c, err)
		return
	}
	if !h.checkStockLink(c, &req.InventoryID) {
		return
	}

	recipe := &models.Recipe{
		MenuItemID:       menuID,
		InventoryID:      req.InventoryID,
		Size:             size,
		QuantityRequired: req.QuantityRequired,
	}
	if err := h.store.CreateRecipe(ctx, recipe); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Recipe line added", "recipe": recipe})
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteRecipe(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe line removed", "id": id})
}
