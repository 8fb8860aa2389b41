package routes

import (
	"net/http"

	"dserve-api/handlers"
	"dserve-api/middleware"
	"dserve-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth, metrics http.Handler) {
	r.GET("/", h.Index)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/health", h.Health)
		public.POST("/login", h.Login)
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	managers := middleware.RoleRequired(models.RoleOwner, models.RoleAdmin)

	// ── Any signed-in staff member ─────────────────────────────────
	staff := r.Group("/api")
	staff.Use(auth.Required())
	{
		staff.POST("/logout", h.Logout)
		staff.GET("/profile", h.GetProfile)

		staff.GET("/inventory", h.ListInventory)
		staff.GET("/inventory/alerts", h.InventoryAlerts)
		staff.GET("/inventory/export", h.ExportInventory)
		staff.POST("/inventory/check-availability", h.CheckAvailability)
		staff.GET("/inventory/:id", h.GetInventoryItem)
		staff.GET("/inventory/:id/movements", h.ListMovements)

		staff.GET("/menu", h.ListMenu)
		staff.GET("/menu/:id", h.GetMenuItem)
		staff.GET("/menu/:id/recipes", h.ListRecipes)

		staff.GET("/orders", h.ListOrders)
		staff.GET("/orders/next-number", h.NextOrderNumber)
		staff.GET("/orders/:id", h.GetOrder)
		staff.POST("/orders", h.PlaceOrder)
		staff.PUT("/orders/:id/status", h.UpdateOrderStatus)

		staff.GET("/reports/sales", h.SalesReport)
		staff.GET("/reports/sales/export", h.ExportSales)
	}

	// ── Owner and admin ────────────────────────────────────────────
	manage := r.Group("/api")
	manage.Use(auth.Required(), managers)
	{
		manage.GET("/users", h.ListUsers)
		manage.GET("/users/role/:role", h.ListUsersByRole)
		manage.GET("/users/:username", h.GetUser)
		manage.GET("/logins/recent", h.RecentLogins)
		manage.DELETE("/logins", h.ClearLogins)

		manage.POST("/inventory", h.CreateInventoryItem)
		manage.PUT("/inventory/:id", h.UpdateInventoryItem)
		manage.DELETE("/inventory/:id", h.DeleteInventoryItem)
		manage.POST("/inventory/:id/adjust", h.AdjustStock)

		manage.POST("/menu", h.CreateMenuItem)
		manage.PUT("/menu/:id", h.UpdateMenuItem)
		manage.DELETE("/menu/:id", h.DeleteMenuItem)
		manage.POST("/menu/:id/recipes", h.AddRecipe)
		manage.DELETE("/recipes/:id", h.DeleteRecipe)
	}
}
