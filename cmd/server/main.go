package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/tawseel/internal"
	"github.com/dukerupert/tawseel/internal/address"
	"github.com/dukerupert/tawseel/internal/cache"
	"github.com/dukerupert/tawseel/internal/handler/api"
	"github.com/dukerupert/tawseel/internal/handler/webhook"
	"github.com/dukerupert/tawseel/internal/logistics"
	"github.com/dukerupert/tawseel/internal/masterdata"
	"github.com/dukerupert/tawseel/internal/middleware"
	"github.com/dukerupert/tawseel/internal/postgres"
	"github.com/dukerupert/tawseel/internal/queue"
	"github.com/dukerupert/tawseel/internal/router"
	"github.com/dukerupert/tawseel/internal/routes"
	"github.com/dukerupert/tawseel/internal/service"
	"github.com/dukerupert/tawseel/internal/storefront"
	"github.com/dukerupert/tawseel/internal/telemetry"
	"github.com/dukerupert/tawseel/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed")

	// Initialize pgx connection pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	ledger := postgres.NewLedgerStore(pool, logger)

	// Business metrics registry
	telemetry.InitBusinessMetrics(cfg.Metrics.Namespace)

	// Courier API client (Provider for orders, Source for master data)
	logger.Info("Initializing courier client...")
	courier, err := logistics.NewClient(logistics.ClientConfig{
		BaseURL: cfg.Courier.BaseURL,
		APIKey:  cfg.Courier.APIKey,
		Timeout: cfg.Courier.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize courier client: %w", err)
	}

	// Storefront API client
	sessions := storefront.NewStaticSessions(cfg.Storefront.Tokens)
	shopClient, err := storefront.NewHTTPClient(storefront.HTTPClientConfig{
		Sessions:   sessions,
		APIVersion: cfg.Storefront.APIVersion,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storefront client: %w", err)
	}

	// Pickup cache: Redis when configured, in-memory otherwise
	var pickupCache cache.PickupCache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		defer rdb.Close()
		pickupCache = cache.NewRedis(rdb, logger)
		logger.Info("Pickup cache using redis")
	} else {
		pickupCache = cache.NewMemory()
		logger.Info("Pickup cache using process memory")
	}

	// Address pipeline
	parser := address.NewParser(logger)
	resolver := masterdata.NewResolver(courier, logger)
	pickups := service.NewPickupResolver(shopClient, parser, resolver, pickupCache, service.PickupDefaults{
		ContactName:  cfg.Pickup.ContactName,
		ContactPhone: cfg.Pickup.ContactPhone,
	}, logger)

	transformer := service.NewTransformer(parser, resolver, pickups, service.TransformConfig{
		OrderType:    cfg.Transform.OrderType,
		ServiceType:  cfg.Transform.ServiceType,
		Phone:        cfg.Transform.PhonePlaceholder,
		Instructions: cfg.Transform.Instructions,
	}, logger)

	processor := service.NewProcessor(ledger, transformer, courier, courier, cfg.Transform.BatchDelay, logger)

	// Inbound order queue: NATS when configured, in-process otherwise
	var orderQueue queue.Queue
	if cfg.Queue.NATSUrl != "" {
		nq, err := queue.NewNATS(cfg.Queue.NATSUrl, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		orderQueue = nq
		logger.Info("Order queue using nats", "url", cfg.Queue.NATSUrl)
	} else {
		orderQueue = queue.NewMemory(cfg.Queue.Buffer, logger)
		logger.Info("Order queue using process memory", "buffer", cfg.Queue.Buffer)
	}
	defer orderQueue.Close()

	// Background worker draining the queue
	w := worker.NewWorker(orderQueue, processor, worker.Config{}, logger)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start(ctx)
	}()

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	verifier := storefront.NewWebhookVerifier(cfg.Storefront.APISecret)
	webhookDeps := routes.WebhookDeps{
		Handler: webhook.NewHandler(verifier, orderQueue, ledger, pickups, sessions, logger),
	}
	apiDeps := routes.APIDeps{
		Handler: api.NewHandler(shopClient, processor, ledger, courier, logger),
	}

	metrics := middleware.NewMetrics(cfg.Metrics.Namespace)
	opsDeps := routes.OpsDeps{
		Health: func(w http.ResponseWriter, req *http.Request) {
			if err := pool.Ping(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("database unreachable"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		},
		Metrics: metrics.Handler(),
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithShop,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	routes.RegisterOpsRoutes(r, opsDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)
	routes.RegisterAPIRoutes(r, apiDeps)

	// ==========================================================================
	// Start server with graceful shutdown
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	// Let the worker finish its in-flight order.
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn("Worker did not stop before shutdown deadline")
	}

	logger.Info("Shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
