package handlers

import (
	"net/http"
	"time"

	"dserve-api/middleware"
	"dserve-api/models"
	"dserve-api/orders"
	"dserve-api/statemachine"
	"dserve-api/store"

	"github.com/gin-gonic/gin"
)

const defaultOrderLimit = 100

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// ListOrders returns orders newest first. A plain to=YYYY-MM-DD includes that
// whole day.
func (h *Handler) ListOrders(c *gin.Context) {
	f := store.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Limit:  queryInt(c, "limit", defaultOrderLimit),
	}
	if s := c.Query("from"); s != "" {
		t, err := parseDate(s, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		f.From = t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseDate(s, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		if len(s) == len(time.DateOnly) {
			t = t.AddDate(0, 0, 1)
		}
		f.To = t
	}

	list, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":             order,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// PlaceOrder saves the order and deducts its stock in one transaction
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req orders.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = middleware.GetUserID(c)

	res, err := h.orders.Place(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Order placed successfully",
		"order_number": res.Order.OrderNumber,
		"total":        res.Order.TotalAmount,
		"order":        res.Order,
		"deductions":   res.Deductions,
	})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.AdvanceStatus(c.Request.Context(), c.Param("id"), req.Status, middleware.GetRole(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Order status updated",
		"order_id":          order.ID,
		"current_status":    order.Status,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// NextOrderNumber reports today's highest number and the next one
func (h *Handler) NextOrderNumber(c *gin.Context) {
	highest, next, err := h.orders.NextNumber(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"max": highest, "next": next})
}
