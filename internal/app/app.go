package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Keerthudarshu/petandco/internal/auth"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"
	"github.com/Keerthudarshu/petandco/internal/config"
	"github.com/Keerthudarshu/petandco/internal/messaging/kafka/producer"
	"github.com/Keerthudarshu/petandco/internal/metrics"
	"github.com/Keerthudarshu/petandco/internal/visitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App holds the wired storefront and the background work that runs next to
// the HTTP server.
type App struct {
	Visitors *visitor.Registry
	Metrics  *prometheus.Registry

	cfg    *config.Config
	logger *zap.Logger
	outbox *producer.Outbox

	wg      sync.WaitGroup
	closers []func() error
}

func BuildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, router *gin.Engine) (*App, error) {
	a := &App{
		Metrics: prometheus.NewRegistry(),
		cfg:     cfg,
		logger:  logger,
	}
	a.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefront(a.Metrics)

	// 1. Setup Infrastructure
	kv, closeKV, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeKV)

	if cfg.Kafka.Enabled() {
		if err := connectKafkaWithRetry(ctx, cfg.Kafka.Broker, attempts(cfg), logger); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.outbox = producer.NewOutbox(cfg.Kafka.OutboxSize, logger)
	}

	// 2. Setup Third Party Services
	client, err := commerceapi.NewClient(cfg.CommerceAPI.BaseURL, commerceapi.WithTimeout(cfg.CommerceAPI.Timeout))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []visitor.Option{
		visitor.WithIdleTTL(cfg.Sync.VisitorIdle),
		visitor.WithRetryInterval(cfg.Sync.RetryInterval),
		visitor.WithLogger(logger.Named("visitor.registry")),
		visitor.WithMetrics(storefrontMetrics),
	}
	if cfg.Auth.JWTSecret != "" {
		opts = append(opts, visitor.WithVerifier(auth.NewJWTVerifier(cfg.Auth.JWTSecret, 30*time.Second)))
	}
	if a.outbox != nil {
		opts = append(opts, visitor.WithCartObserver(a.outbox.ObserveCart))
	}
	a.Visitors = visitor.NewRegistry(client, kv, opts...)

	// 3. Register Modules & Routes
	registerModules(router, modules{
		cfg:      cfg,
		client:   client,
		visitors: a.Visitors,
		logger:   logger,
	})

	return a, nil
}

// Start launches visitor maintenance and, with a broker configured, the
// order-event consumer and the cart-event publisher. They stop when ctx
// ends; Close waits for them.
func (a *App) Start(ctx context.Context) {
	a.goRun(func() { a.Visitors.Run(ctx) })

	if !a.cfg.Kafka.Enabled() {
		a.logger.Info("kafka broker not configured, order and cart events disabled")
		return
	}
	a.startConsumer(ctx)
	a.startWorker(ctx)
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Close waits for background work and releases connections in reverse
// order of acquisition.
func (a *App) Close() error {
	a.wg.Wait()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
