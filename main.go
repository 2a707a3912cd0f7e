package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/internal/config"
	"github.com/gotodo/todo-service/internal/items/service"
	"github.com/gotodo/todo-service/internal/server"
	"github.com/gotodo/todo-service/internal/tokens"
	"github.com/gotodo/todo-service/internal/users"
	"github.com/gotodo/todo-service/pkg/logger"
	"github.com/gotodo/todo-service/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s store=%s redis=%v rate_limit=%v", cfg.Server.Environment, cfg.Store.Driver, cfg.Redis.Host != "", cfg.RateLimit.Enabled)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer st.close()

	checks := map[string]server.ReadinessCheck{"store": st.ping}
	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	accounts, err := users.NewService(st.accounts, cfg.Security.BcryptCost)
	if err != nil {
		logger.Fatalf("failed to init credential store: %v", err)
	}
	tm, err := tokens.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL, nil)
	if err != nil {
		logger.Fatalf("failed to init token manager: %v", err)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	handler := server.New(server.Deps{
		Config:   cfg,
		Accounts: accounts,
		Tokens:   tm,
		Items:    service.New(st.items),
		Redis:    rdb,
		Checks:   checks,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Infof("Starting todo service on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// connectRedis returns a client when Redis is configured and answers a ping.
// The service runs without it; limiters then stay in memory.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Redis.Host == "" {
		if cfg.RateLimit.UseRedis {
			logger.Warnf("RATE_LIMIT_USE_REDIS set but REDIS_HOST is empty; using in-memory limiter")
		}
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		_ = rdb.Close()
		return nil
	}
	logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	return rdb
}
