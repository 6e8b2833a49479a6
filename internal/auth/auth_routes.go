package auth

import (
	"github.com/Keerthudarshu/petandco/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouteLimits struct {
	LoginRPS   float64
	LoginBurst int
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, limits RouteLimits) {
	auth := r.Group("/auth")
	{
		// Per IP, against password guessing.
		auth.POST("/login",
			middleware.RateLimitByIP(limits.LoginRPS, limits.LoginBurst),
			handler.Login,
		)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", handler.Me)
	}
}
