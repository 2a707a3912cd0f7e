package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func hit(r *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(LimitPolicy{Name: "allow-test", Max: 10, Window: time.Minute, Message: "slow down"}))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w1 := hit(r, "/ok", "10.0.0.1")
	w2 := hit(r, "/ok", "10.0.0.1")

	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, http.StatusOK, w2.Code)
	require.Equal(t, "10", w2.Header().Get("RateLimit-Limit"))
	require.Equal(t, "8", w2.Header().Get("RateLimit-Remaining"))

	// verify metrics incremented for memory limiter
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory", "allow-test")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(LimitPolicy{Name: "block-test", Max: 5, Window: 15 * time.Minute, Message: "Too many authentication attempts, please try again after 15 minutes"}))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, hit(r, "/limited", "10.0.0.2").Code, "request %d", i+1)
	}
	w := hit(r, "/limited", "10.0.0.2")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.JSONEq(t, `{"error":"Too many authentication attempts, please try again after 15 minutes"}`, w.Body.String())
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory", "block-test")))

	// a different client has its own bucket
	require.Equal(t, http.StatusOK, hit(r, "/limited", "10.0.0.3").Code)
}

func TestRateLimitMiddleware_CapHoldsAcrossWindow(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(LimitPolicy{Name: "spread-test", Max: 2, Window: time.Second, Message: "slow down"}))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// one request every 50ms, all inside the window opened by the first one
	allowed := 0
	start := time.Now()
	for time.Since(start) < 900*time.Millisecond {
		if hit(r, "/u", "10.0.0.4").Code == http.StatusOK {
			allowed++
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.Equal(t, 2, allowed)

	time.Sleep(time.Until(start.Add(1100 * time.Millisecond)))
	require.Equal(t, http.StatusOK, hit(r, "/u", "10.0.0.4").Code)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestFixedWindow_CountsAndResets(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 7, 0, time.UTC)}
	fw := newFixedWindow(15*time.Minute, clk.now)

	for i := 1; i <= 6; i++ {
		cnt, reset := fw.hit("ip:1.2.3.4")
		require.Equal(t, i, cnt)
		require.Equal(t, 15*time.Minute-time.Duration(i-1)*time.Minute, reset)
		clk.advance(time.Minute)
	}

	// still inside the first window: no refill
	clk.t = clk.t.Add(8*time.Minute + 59*time.Second)
	cnt, reset := fw.hit("ip:1.2.3.4")
	require.Equal(t, 7, cnt)
	require.Equal(t, time.Second, reset)

	clk.advance(time.Second)
	cnt, reset = fw.hit("ip:1.2.3.4")
	require.Equal(t, 1, cnt)
	require.Equal(t, 15*time.Minute, reset)
}

func TestFixedWindow_EvictsExpiredClients(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	fw := newFixedWindow(time.Minute, clk.now)
	for i := 0; i < 50; i++ {
		fw.hit(fmt.Sprintf("ip:10.9.0.%d", i))
	}
	require.Equal(t, 50, fw.len())

	clk.advance(time.Minute)
	fw.hit("ip:10.9.1.1")
	require.Equal(t, 1, fw.len())
}

func TestRateLimitMiddleware_HeadersFollowWindowEnd(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := LimitPolicy{Name: "headers-test", Max: 1, Window: 15 * time.Minute, Message: "slow down"}
	r := gin.New()
	r.Use(fixedWindowMiddleware(p, newFixedWindow(p.Window, clk.now)))
	r.GET("/h", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := hit(r, "/h", "10.0.0.6")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	require.Equal(t, "900", w.Header().Get("RateLimit-Reset"))

	clk.advance(10 * time.Minute)
	w = hit(r, "/h", "10.0.0.6")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "300", w.Header().Get("Retry-After"))
	require.Equal(t, "300", w.Header().Get("RateLimit-Reset"))
	require.JSONEq(t, `{"error":"slow down"}`, w.Body.String())
}

func TestRateLimitMiddleware_PoliciesAreIndependent(t *testing.T) {
	r := gin.New()
	strict := RateLimitMiddleware(LimitPolicy{Name: "strict", Max: 1, Window: time.Hour, Message: "strict"})
	loose := RateLimitMiddleware(LimitPolicy{Name: "loose", Max: 100, Window: time.Hour, Message: "loose"})
	r.GET("/a", strict, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", loose, func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, hit(r, "/a", "10.0.0.5").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/a", "10.0.0.5").Code)
	require.Equal(t, http.StatusOK, hit(r, "/b", "10.0.0.5").Code)
}
