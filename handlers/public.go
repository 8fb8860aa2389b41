package handlers

import (
	"net/http"
	"time"

	"dserve-api/models"
	"dserve-api/statemachine"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "DServe POS API",
		"health":  "/api/health",
		"metrics": "/metrics",
	})
}

// Health reports OK when the store answers a ping.
func (h *Handler) Health(c *gin.Context) {
	now := h.now().UTC().Format(time.RFC3339)
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "ERROR", "timestamp": now})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": now})
}

// GetStateMachineInfo returns the order lifecycle for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusCompleted},
		"description":     "Counter order lifecycle",
	})
}
