package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/lock"
	"storefront/internal/migrate"
	"storefront/internal/reaper"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate.Apply(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(logger)
	inventoryRepo := repository.NewInventoryRepository(logger)
	cartRepo := repository.NewCartRepository(logger)
	fittingRepo := repository.NewFittingRepository(logger)
	orderRepo := repository.NewOrderRepository(logger)

	locker, closeLocker, err := newLocker(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	catalogService := service.NewCatalogService(pool, catalogRepo, logger)
	inventoryService := service.NewInventoryService(pool, inventoryRepo, publisher, logger)
	cartService := service.NewCartService(pool, cartRepo, catalogRepo, publisher, cfg.Cart.VirtualTTL, logger)
	fittingService := service.NewFittingService(pool, fittingRepo, catalogRepo, cfg.Cart.FittingTTL, logger)
	transferService := service.NewTransferService(pool, cartRepo, fittingRepo, catalogRepo, inventoryRepo, orderRepo,
		locker, publisher, cfg.Cart.VirtualTTL, logger)
	orderService := service.NewOrderService(pool, orderRepo, cartRepo, publisher, cfg.Cart.OnlineStoreID, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Carts:     handler.NewCartHandler(cartService, transferService, logger),
		Fittings:  handler.NewFittingHandler(fittingService, transferService, logger),
		Orders:    handler.NewOrderHandler(orderService, logger),
		Inventory: handler.NewInventoryHandler(inventoryService, logger),
		Catalog:   handler.NewCatalogHandler(catalogService, logger),
	}, pool, cfg.Auth.APIKey, logger)

	if cfg.Cart.ReaperInterval > 0 {
		go reaper.New(pool, cartRepo, fittingRepo, cfg.Cart.ReaperInterval, logger).Run(ctx)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop background work before draining requests
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newLocker returns the Redis backed transfer lock when Redis is enabled and
// an in-process lock otherwise.
func newLocker(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (lock.Locker, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-process transfer locks (redis disabled)")
		return lock.NewLocal(), func() {}, nil
	}

	client, err := lock.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return lock.NewRedis(client, logger), closeFn, nil
}

// newPublisher returns the Kafka publisher when Kafka is enabled and a
// log-only publisher otherwise.
func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		logger.Info().Msg("publishing events to the log only (kafka disabled)")
		return events.NewLogPublisher(logger), nil
	}

	producer, err := events.NewKafkaProducer(cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("kafka publisher initialised")
	return events.NewKafkaPublisher(producer, cfg.Topic, logger), nil
}
