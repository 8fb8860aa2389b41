package handlers

import (
	"net/http"

	"dserve-api/middleware"
	"dserve-api/models"
	"dserve-api/session"

	"github.com/gin-gonic/gin"
)

// ListUsers returns all users, optionally filtered by ?role=
func (h *Handler) ListUsers(c *gin.Context) {
	role := models.UserRole(c.Query("role"))
	if role != "" && !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: cashier, owner, or admin"})
		return
	}
	users, err := h.store.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) ListUsersByRole(c *gin.Context) {
	role := models.UserRole(c.Param("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: cashier, owner, or admin"})
		return
	}
	users, err := h.store.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "count": len(users), "users": users})
}

// RecentLogins returns the newest login sessions first
func (h *Handler) RecentLogins(c *gin.Context) {
	limit := queryInt(c, "limit", session.DefaultRecentLimit)
	logins, err := h.sessions.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(logins), "logins": logins})
}

// ClearLogins drops the login history, only that of ?user_id= when given
func (h *Handler) ClearLogins(c *gin.Context) {
	userID := c.Query("user_id")
	n, err := h.sessions.Clear(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("login history cleared", "by", middleware.GetUsername(c), "user_id", userID, "count", n)
	c.JSON(http.StatusOK, gin.H{"success": true, "cleared": n})
}
