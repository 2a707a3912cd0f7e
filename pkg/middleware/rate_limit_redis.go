package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"github.com/gotodo/todo-service/pkg/logger"
	"github.com/gotodo/todo-service/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware provides a fixed-window Redis-backed limiter shared by every replica.
// Algorithm: INCR the client's key and read its TTL in one transaction; the key expires
// p.Window after the first request. A key found without a TTL gets one, so a lost
// PEXPIRE cannot pin a client at its limit forever.
func RedisRateLimitMiddleware(client *redis.Client, p LimitPolicy) gin.HandlerFunc {
	if client == nil {
		// fallback to in-memory if no client
		return RateLimitMiddleware(p)
	}
	window := p.window()
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		redisKey := "rl:" + p.Name + ":" + clientKey(c)

		pipe := client.TxPipeline()
		incr := pipe.Incr(ctx, redisKey)
		ttl := pipe.PTTL(ctx, redisKey)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Errorf("rate limit (%s): redis check failed: %v", p.Name, err)
			e := apperrors.Wrap(apperrors.CodeInternal, "Rate limit check failed", err)
			c.AbortWithStatusJSON(e.Code.HTTPStatus(), e.Body())
			return
		}

		cnt := int(incr.Val())
		reset := ttl.Val()
		if reset < 0 {
			if err := client.PExpire(ctx, redisKey, window).Err(); err != nil {
				logger.Warnf("rate limit (%s): redis pexpire on %s failed: %v", p.Name, redisKey, err)
			}
			reset = window
		}

		setRateLimitHeaders(c, p.Max, p.Max-cnt, reset)
		if cnt > p.Max {
			reject(c, p, "redis", reset)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis", p.Name).Inc()
		c.Next()
	}
}
