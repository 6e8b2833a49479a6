package wishlist

import (
	"github.com/Keerthudarshu/petandco/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	wishlists := r.Group("/wishlist")
	{
		wishlists.GET("", handler.List)

		// Adds resolve the product through the catalog; keep them modest.
		itemActionLimit := middleware.RateLimitByIP(5, 10)

		wishlists.POST("/items", itemActionLimit, handler.Create)

		items := wishlists.Group("/items/:productId")
		{
			items.GET("", handler.Status)
			items.DELETE("", handler.Delete)
			items.POST("/toggle", itemActionLimit, handler.Toggle)
			items.POST("/cart", itemActionLimit, handler.AddToCart)
		}
	}
}
