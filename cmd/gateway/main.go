package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"interactions-gateway/commands"
	"interactions-gateway/config"
	"interactions-gateway/discordapi"
	"interactions-gateway/interactions"
	"interactions-gateway/middleware/ratelimit/domain"
	"interactions-gateway/middleware/ratelimit/infra"
	"interactions-gateway/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Development())
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	verifier, err := interactions.NewVerifier(cfg.PublicKey)
	if err != nil {
		logger.Fatal("invalid PUBLIC_KEY", zap.Error(err))
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(promReg, "interactions_gateway")

	api := discordapi.New(cfg.BotToken,
		discordapi.WithBaseURL(cfg.Discord.BaseURL),
		discordapi.WithAttemptTimeout(cfg.Discord.AttemptTimeout),
		discordapi.WithMaxRetries(cfg.Discord.MaxRetries),
		discordapi.WithBaseDelay(cfg.Discord.RetryBaseDelay),
		discordapi.WithRequestsPerSecond(cfg.Discord.RequestsPerSec),
		discordapi.WithLogger(logger.Named("discordapi")),
		discordapi.WithMetrics(metrics),
	)

	// /help responde dentro da interação: uma tentativa só, limitada pelo prazo do comando.
	helpAPI := discordapi.New(cfg.BotToken,
		discordapi.WithBaseURL(cfg.Discord.BaseURL),
		discordapi.WithAttemptTimeout(commands.DefaultListTimeout),
		discordapi.WithMaxRetries(0),
		discordapi.WithRequestsPerSecond(cfg.Discord.RequestsPerSec),
		discordapi.WithLogger(logger.Named("discordapi.help")),
		discordapi.WithMetrics(metrics),
	)

	registry := commands.Default(func(ctx context.Context) ([]*discordgo.ApplicationCommand, error) {
		return helpAPI.ListCommands(ctx, cfg.ApplicationID)
	})

	memStats := infra.NewMemoryStatsStore()
	var (
		counter domain.Counter
		stats   domain.StatsStore = memStats
	)
	if cfg.RateLimit.RedisURL != "" {
		rdb, err := newRedisClient(cfg.RateLimit)
		if err != nil {
			logger.Fatal("invalid RATE_LIMIT_REDIS_URL", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			// o limitador cai para a janela local a cada falha do remoto
			logger.Warn("redis ping failed, local window will decide while it is down", zap.Error(err))
		}

		counter = infra.NewRedisCounter(rdb, infra.WithCounterPrefix(cfg.RateLimit.Prefix))
		if cfg.RateLimit.StatsEnabled {
			stats = infra.MultiStatsStore{
				memStats,
				infra.NewRedisStatsStore(rdb,
					infra.WithStatsPrefix(cfg.RateLimit.StatsPrefix),
					infra.WithStatsTTL(cfg.RateLimit.StatsTTL),
					infra.WithStatsTrackKeys(cfg.RateLimit.StatsTrackKeys),
				),
			}
		}
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		promReg:  promReg,
		verifier: verifier,
		registry: registry,
		api:      api,
		counter:  counter,
		window:   infra.NewWindowStore(),
		stats:    stats,
		memStats: memStats,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("env", cfg.AppEnv),
		zap.Strings("commands", registry.Names()),
	)
	logger.Info("rate limit",
		zap.Bool("remote", counter != nil),
		zap.Int("max", cfg.RateLimit.Max),
		zap.Duration("window", cfg.RateLimit.Window),
		zap.String("keyHeader", cfg.RateLimit.KeyHeader),
		zap.Bool("redisStats", cfg.RateLimit.StatsEnabled),
	)
	logger.Info("concurrency",
		zap.Int("max", cfg.ConcurrencyMax),
		zap.Duration("acquireTimeout", cfg.ConcurrencyTimeout),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newRedisClient aceita redis:// ou rediss://; o token, quando dado,
// substitui a senha da URL.
func newRedisClient(cfg config.RateLimitConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if cfg.RedisToken != "" {
		opts.Password = cfg.RedisToken
	}
	opts.DialTimeout = cfg.RemoteTimeout
	opts.ReadTimeout = cfg.RemoteTimeout
	opts.WriteTimeout = cfg.RemoteTimeout
	return redis.NewClient(opts), nil
}
