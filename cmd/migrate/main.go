// Command migrate applies or reverts the embedded database schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/migrate"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	down := flag.Bool("down", false, "revert every migration instead of applying them")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadTool()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connString := cfg.Database.ConnectionString()
	if *down {
		logger.Warn().Str("database", cfg.Database.Database).Msg("reverting all migrations")
		return migrate.RollbackURL(ctx, connString, logger)
	}
	return migrate.ApplyURL(ctx, connString, logger)
}
