// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"celebrity-subscription/internal/config"
	"celebrity-subscription/internal/domain/ports/adapter"
	"celebrity-subscription/internal/domain/ports/repository"
	"celebrity-subscription/internal/infra/api"
	"celebrity-subscription/internal/infra/db/migrations"
	pg "celebrity-subscription/internal/infra/db/postgres"
	"celebrity-subscription/internal/infra/logging"
	"celebrity-subscription/internal/infra/metrics"
	red "celebrity-subscription/internal/infra/redis"
	"celebrity-subscription/internal/infra/sched"
	"celebrity-subscription/internal/infra/security"
	"celebrity-subscription/internal/infra/telegram"
	"celebrity-subscription/internal/infra/worker"
	"celebrity-subscription/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("app stopped")
	}
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled: phone numbers are not redacted")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Migrations ----
	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(cfg.Database.URL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("database migrations applied")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	// ---- Encryption ----
	var sealer pg.FieldSealer
	if cfg.Database.EncryptPhoneNos {
		fc, err := security.NewFieldCipher(cfg.Security.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption: %w", err)
		}
		sealer = fc
	}

	// ---- Repositories ----
	var pricingRepo repository.PricingRepository = pg.NewPricingRepo(pool)
	payRepo := pg.NewPaymentRepo(pool, sealer)
	subRepo := pg.NewSubscriptionRepo(pool)
	celebRepo := pg.NewCelebrityRepo(pool)
	adminRepo := pg.NewAdminRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Redis (optional) ----
	var limiter api.RateLimiter
	var sweepLock sched.Lock
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		pricingRepo = pg.NewPricingRepoCacheDecorator(pricingRepo, redisClient, cfg.Redis.TTL, logger)
		limiter = red.NewRateLimiter(redisClient)
		sweepLock = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set: pricing cache, submission rate limit and sweep lock disabled")
	}

	// ---- Admin notifications ----
	var notifier adapter.AdminNotifier = telegram.NewNoopNotifier(logger)
	if cfg.Telegram.Token != "" {
		tg, err := telegram.NewAdminNotifier(cfg.Telegram, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		notifier = tg
	}
	notifyPool := worker.NewPool(cfg.Telegram.Workers, cfg.Telegram.QueueSize, logger)
	notifyPool.Start(ctx)
	defer notifyPool.Stop()
	notifier = worker.NewAsyncNotifier(notifyPool, notifier, 10*time.Second)

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(pricingRepo, logger, usecase.WithMissCounter(metrics.IncPricingCatalogMiss))
	paymentUC := usecase.NewPaymentUseCase(payRepo, subRepo, celebRepo, pricingUC, notifier, nil, logger)
	promotionUC := usecase.NewPromotionUseCase(payRepo, subRepo, celebRepo, nil, logger)
	expiryUC := usecase.NewExpiryUseCase(subRepo, celebRepo, nil, logger)
	subscriptionUC := usecase.NewSubscriptionUseCase(subRepo, celebRepo, txManager, nil, logger)
	adminUC := usecase.NewAdminUseCase(api.NewJWTAuth(cfg.Auth), adminRepo)
	statsUC := usecase.NewStatsUseCase(subRepo, payRepo, nil, logger)

	// ---- Background workers ----
	if cfg.Scheduler.ExpirySweepInterval > 0 {
		w := sched.NewExpiryWorker(cfg.Scheduler.ExpirySweepInterval, subscriptionUC, logger)
		if sweepLock != nil {
			w.WithLock(sweepLock)
		}
		go func() { _ = w.Run(ctx) }()
	}
	go func() { _ = sched.NewPoolStatsWorker(15*time.Second, pool).Run(ctx) }()

	// ---- HTTP ----
	srv := api.NewServer(api.Deps{
		Payments:      paymentUC,
		Promotions:    promotionUC,
		Expiry:        expiryUC,
		Subscriptions: subscriptionUC,
		Pricing:       pricingUC,
		Admins:        adminUC,
		Stats:         statsUC,
		Limiter:       limiter,
	}, cfg.HTTP, cfg.Runtime.Dev, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
