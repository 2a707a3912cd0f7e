package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"github.com/gotodo/todo-service/pkg/metrics"
)

// LimitPolicy describes one named limiter: at most Max requests per Window per client.
// A client's window opens with its first request and closes Window later.
type LimitPolicy struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
}

func (p LimitPolicy) window() time.Duration {
	if p.Window <= 0 {
		return time.Second
	}
	return p.Window
}

// clientKey identifies the caller. Limiters run before authentication, so the IP is all we have.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func setRateLimitHeaders(c *gin.Context, limit, remaining int, reset time.Duration) {
	if remaining < 0 {
		remaining = 0
	}
	c.Header("RateLimit-Limit", strconv.Itoa(limit))
	c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("RateLimit-Reset", strconv.Itoa(ceilSeconds(reset)))
}

func ceilSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func reject(c *gin.Context, p LimitPolicy, backend string, retryAfter time.Duration) {
	c.Header("Retry-After", strconv.Itoa(ceilSeconds(retryAfter)))
	metrics.RateLimitRejected.WithLabelValues(backend, p.Name).Inc()
	e := apperrors.New(apperrors.CodeRateLimited, p.Message)
	c.AbortWithStatusJSON(e.Code.HTTPStatus(), e.Body())
}

type windowCount struct {
	start time.Time
	count int
}

// fixedWindow counts requests per key. Expired windows are swept at most once per window length.
type fixedWindow struct {
	mu        sync.Mutex
	size      time.Duration
	now       func() time.Time
	counts    map[string]*windowCount
	lastSweep time.Time
}

func newFixedWindow(size time.Duration, now func() time.Time) *fixedWindow {
	return &fixedWindow{size: size, now: now, counts: make(map[string]*windowCount), lastSweep: now()}
}

// hit records one request for key. It returns the count inside the key's current
// window and the time until that window closes.
func (f *fixedWindow) hit(key string) (int, time.Duration) {
	now := f.now()
	f.mu.Lock()
	defer f.mu.Unlock()

	if now.Sub(f.lastSweep) >= f.size {
		for k, w := range f.counts {
			if !now.Before(w.start.Add(f.size)) {
				delete(f.counts, k)
			}
		}
		f.lastSweep = now
	}

	w, ok := f.counts[key]
	if !ok || !now.Before(w.start.Add(f.size)) {
		w = &windowCount{start: now}
		f.counts[key] = w
	}
	w.count++
	return w.count, w.start.Add(f.size).Sub(now)
}

func (f *fixedWindow) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.counts)
}

// RateLimitMiddleware returns a Gin middleware enforcing p with an in-process fixed window per client.
// Counters are not shared between replicas; use RedisRateLimitMiddleware for that.
func RateLimitMiddleware(p LimitPolicy) gin.HandlerFunc {
	return fixedWindowMiddleware(p, newFixedWindow(p.window(), time.Now))
}

func fixedWindowMiddleware(p LimitPolicy, fw *fixedWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		cnt, reset := fw.hit(clientKey(c))
		setRateLimitHeaders(c, p.Max, p.Max-cnt, reset)
		if cnt > p.Max {
			reject(c, p, "memory", reset)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory", p.Name).Inc()
		c.Next()
	}
}
