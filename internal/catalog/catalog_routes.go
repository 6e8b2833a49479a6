package catalog

import (
	"github.com/Keerthudarshu/petandco/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	// Browsing limits are loose; they only stop bulk scraping.
	products := r.Group("/products")
	{
		products.GET("", middleware.RateLimitByIP(10, 20), handler.List)
		products.GET("/:id", middleware.RateLimitByIP(5, 10), handler.GetByID)
	}

	r.GET("/categories", middleware.RateLimitByIP(10, 20), handler.Categories)
}
