// Package server assembles the gin engine: global middleware, limiters, auth and routes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/gotodo/todo-service/handlers"
	"github.com/gotodo/todo-service/internal/config"
	"github.com/gotodo/todo-service/internal/items/service"
	"github.com/gotodo/todo-service/pkg/logger"
	"github.com/gotodo/todo-service/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	greeting       = "Hello from the Modular Backend API!"
	msgAuthLimited = "Too many authentication attempts, please try again after 15 minutes"
	msgAPILimited  = "Too many requests, please try again after 15 minutes"
)

// Tokens issues and verifies access tokens.
type Tokens interface {
	handlers.TokenIssuer
	middleware.Verifier
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config   *config.Config
	Accounts handlers.AccountService
	Tokens   Tokens
	Items    service.Service
	// Redis is optional; when nil the limiters stay in memory.
	Redis    *redis.Client
	Checks   map[string]ReadinessCheck
	Gatherer prometheus.Gatherer
}

// New builds the router and wraps it with the CORS policy for cfg.
func New(d Deps) http.Handler {
	return withCORS(d.Config, NewEngine(d))
}

// NewEngine builds the gin engine without the CORS wrapper.
func NewEngine(d Deps) *gin.Engine {
	started := time.Now()
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.SecureHeaders())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, greeting)
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(d.Checks, started))

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	handlers.RegisterSwagger(r)

	authLimit, apiLimit := limiters(d.Config, d.Redis)

	authMW := []gin.HandlerFunc{}
	if authLimit != nil {
		authMW = append(authMW, authLimit)
	}
	handlers.NewAuthHandler(d.Accounts, d.Tokens).RegisterRoutes(r, authMW...)

	itemMW := []gin.HandlerFunc{}
	if apiLimit != nil {
		itemMW = append(itemMW, apiLimit)
	}
	itemMW = append(itemMW, middleware.AuthMiddleware(d.Tokens))
	handlers.NewItemHandler(d.Items).RegisterRoutes(r, itemMW...)

	return r
}

// limiters returns the auth and api limiters, or nils when rate limiting is off.
func limiters(cfg *config.Config, rdb *redis.Client) (gin.HandlerFunc, gin.HandlerFunc) {
	rl := cfg.RateLimit
	if !rl.Enabled {
		logger.Warnf("rate limiting disabled")
		return nil, nil
	}
	auth := middleware.LimitPolicy{Name: "auth", Max: rl.AuthMax, Window: rl.Window, Message: msgAuthLimited}
	api := middleware.LimitPolicy{Name: "api", Max: rl.APIMax, Window: rl.Window, Message: msgAPILimited}
	if rl.UseRedis && rdb != nil {
		logger.Infof("rate limiting via redis: auth=%d api=%d per %s", rl.AuthMax, rl.APIMax, rl.Window)
		return middleware.RedisRateLimitMiddleware(rdb, auth), middleware.RedisRateLimitMiddleware(rdb, api)
	}
	logger.Infof("rate limiting in memory: auth=%d api=%d per %s", rl.AuthMax, rl.APIMax, rl.Window)
	return middleware.RateLimitMiddleware(auth), middleware.RateLimitMiddleware(api)
}

// readyHandler returns 200 only when every registered check passes.
func readyHandler(checks map[string]ReadinessCheck, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}
		for name, check := range checks {
			err := check(ctx)
			deps[name] = err == nil
			if err != nil {
				logger.Warnf("readiness: %s not ready: %v", name, err)
				ready = false
			}
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(started).String()})
	}
}

func withCORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin()},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
}
