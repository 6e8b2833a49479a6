package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Keerthudarshu/petandco/internal/app"
	"github.com/Keerthudarshu/petandco/internal/bootstrap"
	"github.com/Keerthudarshu/petandco/internal/config"
	"github.com/Keerthudarshu/petandco/internal/middleware"
	"github.com/Keerthudarshu/petandco/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	l, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(l),
		middleware.SecurityHeaders(cfg.Auth.CookieSecure),
		gin.Recovery(),
	)

	// build dependency + routes
	application, err := app.BuildApp(ctx, cfg, l, r)
	if err != nil {
		l.Fatal("build app failed", zap.Error(err))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "visitors": application.Visitors.Stats()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(application.Metrics, promhttp.HandlerOpts{})))

	application.Start(ctx)

	err = bootstrap.StartHTTPServer(
		ctx,
		bootstrap.WithCORS(r, cfg.App.CORSOrigins),
		bootstrap.ServerConfig{
			Port:              cfg.App.Port,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			ShutdownTimeout:   cfg.App.ShutdownTimeout,
		},
		l,
	)
	if err != nil {
		l.Error("http server failed", zap.Error(err))
		stop()
	}

	if err := application.Close(); err != nil {
		l.Error("closing app", zap.Error(err))
	}
	l.Info("storefront stopped")
}
