// Package reaper periodically deletes expired virtual and fitting carts.
// Every read path re-checks expiry, so running it only reclaims storage.
package reaper

import (
	"context"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Reaper purges expired carts on a fixed interval.
type Reaper struct {
	db          repository.DB
	cartRepo    repository.CartRepository
	fittingRepo repository.FittingRepository
	interval    time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// New creates a reaper that runs every interval.
func New(
	db repository.DB,
	cartRepo repository.CartRepository,
	fittingRepo repository.FittingRepository,
	interval time.Duration,
	logger zerolog.Logger,
) *Reaper {
	return &Reaper{
		db:          db,
		cartRepo:    cartRepo,
		fittingRepo: fittingRepo,
		interval:    interval,
		now:         time.Now,
		logger:      logger.With().Str("component", "reaper").Logger(),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("cart reaper started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("cart reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep deletes every cart expired at the current time. Failures are logged
// and retried on the next tick.
func (r *Reaper) Sweep(ctx context.Context) (virtual, fitting int64) {
	now := r.now()

	virtual, err := r.cartRepo.DeleteExpired(ctx, r.db, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to reap virtual carts")
	}

	fitting, err = r.fittingRepo.DeleteExpired(ctx, r.db, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to reap fitting carts")
	}

	metrics.RecordCartsReaped("virtual", virtual)
	metrics.RecordCartsReaped("fitting", fitting)

	if virtual > 0 || fitting > 0 {
		r.logger.Info().
			Int64("virtual", virtual).
			Int64("fitting", fitting).
			Msg("expired carts reaped")
	}

	return virtual, fitting
}
