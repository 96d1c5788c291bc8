package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"procwatch/internal/utils"
)

// SecurityHeaders sets conservative browser protections on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")
		c.Next()
	}
}

// RequestLogger logs request lines into the application log. Unless verbose,
// static assets and the websocket endpoint are skipped to keep the log
// readable at dashboard refresh rates.
func RequestLogger(log *utils.Logger, verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !verbose && (strings.HasPrefix(path, "/static") || path == "/ws" || path == "/favicon.ico") {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		log.Writef("%s %s -> %d (%s)", c.Request.Method, path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond))
	}
}

// RateLimiter applies a per-client-IP token bucket to every request.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	stop     chan struct{}
}

// NewRateLimiter builds a limiter allowing rps sustained requests with the
// given burst per client IP.
func NewRateLimiter(rps rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rps,
		burst:    burst,
		stop:     make(chan struct{}),
	}
}

func (rl *RateLimiter) limiterFor(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[clientIP] = limiter
	}
	return limiter
}

// Middleware returns the gin handler enforcing the limit. Idle client
// buckets are dropped periodically so the map cannot grow without bound.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.mu.Lock()
				rl.limiters = make(map[string]*rate.Limiter)
				rl.mu.Unlock()
			case <-rl.stop:
				return
			}
		}
	}()

	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(429, gin.H{
				"error": fmt.Sprintf("rate limit exceeded for %s", c.ClientIP()),
			})
			return
		}
		c.Next()
	}
}

// Stop halts the cleanup goroutine started by Middleware.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}
