package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"celebrity-subscription/internal/infra/metrics"
)

// Sweeper is the lapsed-subscription pass. usecase.SubscriptionUseCase satisfies it.
type Sweeper interface {
	SweepLapsed(ctx context.Context) ([]string, error)
}

// Lock gives one replica the sweep for a tick. redis.RedisLocker satisfies it.
type Lock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

const sweepLockKey = "lock:expiry_sweep"

// ExpiryWorker periodically deactivates lapsed subscriptions and unlists their celebrities.
type ExpiryWorker struct {
	interval time.Duration
	sweeper  Sweeper
	lock     Lock
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, sweeper Sweeper, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{interval: interval, sweeper: sweeper, log: &exprLog}
}

// WithLock makes the worker skip ticks whose lock is held elsewhere.
func (w *ExpiryWorker) WithLock(l Lock) *ExpiryWorker {
	w.lock = l
	return w
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	if w.lock != nil {
		token, err := w.lock.TryLock(ctx, sweepLockKey, w.interval)
		if err != nil {
			w.log.Debug().Err(err).Msg("sweep skipped: lock not acquired")
			return
		}
		defer func() {
			if err := w.lock.Unlock(context.WithoutCancel(ctx), sweepLockKey, token); err != nil {
				w.log.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}
	ids, err := w.sweeper.SweepLapsed(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry worker error")
		return
	}
	if n := len(ids); n > 0 {
		metrics.IncSubscriptionsLapsed(n)
		w.log.Info().Int("count", n).Strs("celebrity_ids", ids).Msg("lapsed subscriptions deactivated")
	}
}

// PoolStatsWorker publishes connection pool gauges.
type PoolStatsWorker struct {
	interval time.Duration
	pool     *pgxpool.Pool
}

func NewPoolStatsWorker(interval time.Duration, pool *pgxpool.Pool) *PoolStatsWorker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PoolStatsWorker{interval: interval, pool: pool}
}

func (w *PoolStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			st := w.pool.Stat()
			metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		}
	}
}
