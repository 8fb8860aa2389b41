package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dserve-api/middleware"
	"dserve-api/models"
	"dserve-api/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func userView(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"username":     u.Username,
		"role":         u.Role,
		"display_name": u.DisplayName,
	}
}

// Login checks the password, records a login session and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := h.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, store.ErrNotFound) || (err == nil && !user.IsActive) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid username or password"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid username or password"})
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	_, err = h.sessions.Add(ctx, models.LoginSession{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
	if err != nil {
		// the login itself still succeeds
		h.log.Warn("record login session failed", "user", user.Username, "err", err)
	}
	h.log.Info("user logged in", "user", user.Username, "role", user.Role)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    userView(user),
	})
}

// Logout ends the client session. Tokens are stateless, so the client drops
// its copy; the login history is kept.
func (h *Handler) Logout(c *gin.Context) {
	h.log.Info("user logged out", "user", middleware.GetUsername(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
