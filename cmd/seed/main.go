// Command seed loads the catalogue document (stores, products, variants and
// opening stock) into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/migrate"
	"storefront/internal/repository"
	"storefront/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadTool()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	file := flag.String("file", cfg.Seed.File, "seed document (YAML, optionally .gz); used as the S3 key suffix when S3 is enabled")
	flag.Parse()

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	// Initialize seed loader with S3 and local fallback
	var s3Loader seed.Loader
	if cfg.S3.Enabled {
		s3Loader, err = seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	}
	loader := seed.NewFallbackLoader(s3Loader, seed.NewFileLoader(logger), cfg.S3.Prefix, logger)

	doc, err := loader.Load(ctx, *file)
	if err != nil {
		return fmt.Errorf("failed to load seed document: %w", err)
	}

	sum, err := seed.Apply(ctx, pool,
		repository.NewCatalogRepository(logger),
		repository.NewInventoryRepository(logger),
		doc, logger)
	if err != nil {
		return fmt.Errorf("failed to apply seed document: %w", err)
	}

	fmt.Printf("seeded %d stores, %d products, %d variants, %d inventory rows\n",
		sum.Stores, sum.Products, sum.Variants, sum.Inventory)
	return nil
}
