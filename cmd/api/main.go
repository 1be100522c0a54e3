package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/salon-retail/api/routes"
	"github.com/angelmondragon/salon-retail/internal/cart"
	"github.com/angelmondragon/salon-retail/internal/checkout"
	product "github.com/angelmondragon/salon-retail/internal/products"
	"github.com/angelmondragon/salon-retail/pkg/auth/session"
	"github.com/angelmondragon/salon-retail/pkg/config"
	"github.com/angelmondragon/salon-retail/pkg/db"
	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/metrics"
	"github.com/angelmondragon/salon-retail/pkg/migrate"
	"github.com/angelmondragon/salon-retail/pkg/redis"
	"github.com/angelmondragon/salon-retail/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api", Level: zerolog.InfoLevel})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	retry := db.RetryPolicyFromConfig(cfg.Retry)
	retry.OnRetry = func(err error, wait time.Duration) {
		checkoutMetrics.IncStoreRetry()
		logg.Warn(logg.WithFields(ctx, map[string]any{"error": err.Error(), "wait": wait.String()}), "store.retry")
	}

	dbClient, err := db.New(ctx, cfg.DB, retry, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisStore routes.RedisStore
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisStore = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, checkout rate limiting and idempotency disabled")
	}

	sessionManager, err := session.NewManager(cfg.Session)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	secret, err := security.NewSharedSecret(cfg.Checkout)
	if err != nil {
		logg.Error(ctx, "failed to load checkout password", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())
	productService, err := product.NewService(productRepo, dbClient, cfg.Pricing)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cartRepo,
		Store:   dbClient,
		Catalog: productRepo,
		Logger:  logg,
		Metrics: checkoutMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Store:     dbClient,
		CartRepo:  cartRepo,
		SalesRepo: checkout.NewRepository(dbClient.DB()),
		Password:  secret,
		Logger:    logg,
		Metrics:   checkoutMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisStore,
			sessionManager,
			productService,
			cartService,
			checkoutService,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
