package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contact-gateway/config"
	"contact-gateway/contact"
	"contact-gateway/logging"
	"contact-gateway/metrics"
	"contact-gateway/middleware/ratelimit"
	"contact-gateway/middleware/ratelimit/domain"
	"contact-gateway/middleware/ratelimit/infra"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// .env é opcional; variáveis já exportadas têm precedência.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("dotenv error: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(metrics.WithProcessCollectors(true))
	}

	store := infra.NewWindowStore(cfg.RateWindow, cfg.RateMax, infra.WithSweepEvery(cfg.RateSweepEvery))
	defer store.Close()
	m.GaugeFunc("ratelimit", "tracked_clients", "Client keys currently tracked by the sliding window.",
		func() float64 { return float64(store.Len()) })

	// sem Redis, as decisões ficam contadas em memória e saem no log de encerramento.
	var statsStore domain.Stats = infra.NewMemoryStatsStore()
	if cfg.StatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal("redis stats ping failed", zap.String("addr", cfg.StatsRedisAddr), zap.Error(err))
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsBucket(cfg.StatsBucket),
			infra.WithStatsTrackKeys(cfg.StatsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	var guard *ratelimit.Guard
	if cfg.RateEnabled {
		guard = ratelimit.NewGuard(ratelimit.Options{
			Limiter:             store,
			Stats:               statsStore,
			AddRateLimitHeaders: cfg.RateHeaders,
		})
	}

	fwOpts := []contact.ForwarderOption{contact.WithTimeout(cfg.UpstreamTimeout)}
	if cfg.UpstreamRPS > 0 {
		fwOpts = append(fwOpts, contact.WithRate(cfg.UpstreamRPS, cfg.UpstreamBurst))
	}

	handler := contact.NewHandler(contact.Options{
		Endpoint:           cfg.FormEndpoint,
		Forwarder:          contact.NewHTTPForwarder(fwOpts...),
		Guard:              guard,
		TrustXForwardedFor: cfg.TrustXFF,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		Logger:             logger,
		Metrics:            m,
	})

	router := contact.NewRouter(contact.RouterOptions{
		Contact:            handler,
		Metrics:            m,
		AllowedOrigins:     cfg.AllowedOrigins,
		Logger:             logger,
		ConcurrencyMax:     cfg.ConcurrencyMax,
		ConcurrencyTimeout: cfg.ConcurrencyTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown incomplete", zap.Error(err))
		}
	}()

	logger.Info("contact server listening",
		zap.String("addr", cfg.Addr),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)
	logger.Info("rate limit",
		zap.Bool("enabled", cfg.RateEnabled),
		zap.Duration("window", cfg.RateWindow),
		zap.Int("max", cfg.RateMax),
		zap.Duration("sweep_every", cfg.RateSweepEvery),
		zap.Bool("trust_xff", cfg.TrustXFF),
	)
	logger.Info("rate stats",
		zap.Bool("redis", cfg.StatsEnabled),
		zap.String("redis_addr", cfg.StatsRedisAddr),
		zap.String("bucket", cfg.StatsBucket),
		zap.Duration("ttl", cfg.StatsTTL),
		zap.Bool("track_keys", cfg.StatsTrackKeys),
	)
	logger.Info("upstream",
		zap.Duration("timeout", cfg.UpstreamTimeout),
		zap.Float64("rps", cfg.UpstreamRPS),
		zap.Int("burst", cfg.UpstreamBurst),
		zap.Int("concurrency_max", cfg.ConcurrencyMax),
		zap.Duration("concurrency_timeout", cfg.ConcurrencyTimeout),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	<-shutdownDone

	totalsCtx, cancelTotals := context.WithTimeout(context.Background(), 2*time.Second)
	totals, err := statsStore.Totals(totalsCtx)
	cancelTotals()
	if err != nil {
		logger.Warn("read rate stats totals", zap.Error(err))
	} else {
		logger.Info("rate stats totals", zap.Int64("allowed", totals.Allowed), zap.Int64("denied", totals.Denied))
	}
}
