// Package handlers implements the REST endpoints of the POS backend.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"dserve-api/alerts"
	"dserve-api/inventory"
	"dserve-api/middleware"
	"dserve-api/orders"
	"dserve-api/session"
	"dserve-api/statemachine"
	"dserve-api/store"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Store      store.Store
	Orders     *orders.Service
	Reconciler *inventory.Reconciler
	Checker    *inventory.Checker
	Sessions   session.Store
	Watcher    *alerts.Watcher
	Auth       *middleware.Auth
	Logger     *slog.Logger
	Now        func() time.Time
}

// Handler holds the services the routes call into.
type Handler struct {
	store      store.Store
	orders     *orders.Service
	reconciler *inventory.Reconciler
	checker    *inventory.Checker
	sessions   session.Store
	watcher    *alerts.Watcher
	auth       *middleware.Auth
	log        *slog.Logger
	now        func() time.Time
}

func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{
		store:      d.Store,
		orders:     d.Orders,
		reconciler: d.Reconciler,
		checker:    d.Checker,
		sessions:   d.Sessions,
		watcher:    d.Watcher,
		auth:       d.Auth,
		log:        d.Logger,
		now:        d.Now,
	}
}

// respondError maps service and store errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient stock",
			"shortages": insufficient.Shortages,
		})
	case errors.Is(err, orders.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, statemachine.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid state transition", "reason": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case errors.Is(err, store.ErrConflict), errors.Is(err, inventory.ErrStockContention):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Plain dates are read in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
