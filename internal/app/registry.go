package app

import (
	"github.com/Keerthudarshu/petandco/internal/account"
	"github.com/Keerthudarshu/petandco/internal/auth"
	"github.com/Keerthudarshu/petandco/internal/cart"
	"github.com/Keerthudarshu/petandco/internal/catalog"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"
	"github.com/Keerthudarshu/petandco/internal/config"
	"github.com/Keerthudarshu/petandco/internal/visitor"
	"github.com/Keerthudarshu/petandco/internal/wishlist"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type modules struct {
	cfg      *config.Config
	client   *commerceapi.Client
	visitors *visitor.Registry
	logger   *zap.Logger
}

func registerModules(router *gin.Engine, m modules) {
	// --- Services ---
	catalogService := catalog.NewService(m.client, m.client.BaseURL(),
		catalog.WithCacheTTL(m.cfg.Catalog.CacheTTL),
		catalog.WithServiceLogger(m.logger),
	)
	wishlistService := wishlist.NewService(catalogService)

	// --- Handlers ---
	authHandler := auth.NewHandler(visitor.ScopeOf, m.logger)
	cartHandler := cart.NewHandler(visitor.CartOf, m.logger)
	wishlistHandler := wishlist.NewHandler(wishlistService, visitor.CartOf, m.logger)
	catalogHandler := catalog.NewHandler(catalogService, m.logger)
	accountHandler := account.NewHandler(visitor.FromContext, m.visitors, m.logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		catalog.RegisterRoutes(api, catalogHandler)
	}

	// Everything below acts on the visitor's own stores.
	visitorAPI := api.Group("", visitor.Middleware(m.visitors, visitor.CookieOptions{
		Secure: m.cfg.Auth.CookieSecure,
	}, m.logger))
	{
		auth.RegisterRoutes(visitorAPI, authHandler, auth.RouteLimits{
			LoginRPS:   m.cfg.RateLimit.LoginRPS,
			LoginBurst: m.cfg.RateLimit.LoginBurst,
		})
		cart.RegisterRoutes(visitorAPI, cartHandler)
		wishlist.RegisterRoutes(visitorAPI, wishlistHandler)
		account.RegisterRoutes(visitorAPI, accountHandler, visitor.GateOf)
	}
}
