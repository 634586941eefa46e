package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/clientguard/internal/cache"
	"github.com/dropDatabas3/clientguard/internal/config"
	httpx "github.com/dropDatabas3/clientguard/internal/http"
	policyctl "github.com/dropDatabas3/clientguard/internal/http/controllers/policy"
	"github.com/dropDatabas3/clientguard/internal/http/middlewares"
	"github.com/dropDatabas3/clientguard/internal/http/router"
	policysvc "github.com/dropDatabas3/clientguard/internal/http/services/policy"
	"github.com/dropDatabas3/clientguard/internal/observability/logger"
	"github.com/dropDatabas3/clientguard/internal/rate"
)

const serviceName = "clientguard"

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, continuing with system environment: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: serviceName,
	})
	defer func() { _ = logger.Sync() }()

	cacheCfg := cache.Config{
		Kind:       cfg.Cache.Kind,
		DefaultTTL: cfg.CacheTTL(),
	}
	cacheCfg.Redis.Addr = cfg.Cache.Redis.Addr
	cacheCfg.Redis.Password = cfg.Cache.Redis.Password
	cacheCfg.Redis.DB = cfg.Cache.Redis.DB
	cacheCfg.Redis.Prefix = cfg.Cache.Redis.Prefix

	cacheClient, err := cache.New(cacheCfg)
	if err != nil {
		logger.L().Fatal("cache init failed", logger.Err(err))
	}
	defer func() { _ = cacheClient.Close() }()

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{})
	if err != nil {
		logger.L().Fatal("metrics registration failed", logger.Err(err))
	}

	svc := policysvc.NewService(policysvc.Deps{
		Cache:              cacheClient,
		CacheTTL:           cfg.CacheTTL(),
		IsDevelopment:      cfg.IsDevelopment(),
		AccessTokenMinutes: cfg.Tokens.AccessTTLMinutes,
	})

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" {
			limiter = rate.NewRedisLimiter(redis.NewClient(&redis.Options{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
			}), cfg.Cache.Redis.Prefix+":rl:", cfg.Rate.MaxPerMinute, time.Minute)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxPerMinute, time.Minute)
		}
	}

	handler := router.New(router.Deps{
		Policy: policyctl.NewController(svc),
		Auth: middlewares.AuthConfig{
			Enforce:   cfg.Auth.Enforce,
			APIKey:    cfg.Auth.AdminAPIKey,
			JWTSecret: cfg.Auth.JWTSecret,
		},
		Metrics:     metricsHandler,
		RateLimiter: limiter,
		RateLimit:   cfg.Rate.MaxPerMinute,
		RateWindow:  time.Minute,
		ReadyCheck:  func(ctx context.Context) error { return cacheClient.Ping(ctx) },
		Instrument:  httpx.WithMetrics,
	})

	logger.L().Info("starting policy service",
		logger.String("env", cfg.App.Env),
		logger.String("addr", cfg.Server.Addr),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("auth_enforced", cfg.Auth.Enforce),
	)

	if err := httpx.Serve(httpx.ServerConfig{Addr: cfg.Server.Addr}, handler); err != nil {
		logger.L().Fatal("server failed", logger.Err(err))
	}
}
