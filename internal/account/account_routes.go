package account

import (
	"github.com/Keerthudarshu/petandco/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, gate middleware.GateResolver) {
	r.GET("/checkout", middleware.RequireSession(gate, CheckoutMessage), handler.Checkout)
	r.GET("/account", middleware.RequireSession(gate, AccountMessage), handler.Dashboard)

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin(gate))
	{
		admin.GET("/dashboard", handler.AdminDashboard)
	}
}
