package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	rate            rate.Limit
	burst           int
	cleanupInterval time.Duration

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows perMinute requests per IP with an equal burst and
// starts the idle-entry sweeper.
func NewRateLimiter(perMinute int, cleanupInterval time.Duration) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}

	rl := &RateLimiter{
		rate:            rate.Limit(float64(perMinute) / 60.0),
		burst:           perMinute,
		cleanupInterval: cleanupInterval,
		limiters:        make(map[string]*clientLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rl.limiterFor(ip).Allow() {
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", c.FullPath()),
			)
			c.Header("Retry-After", strconv.Itoa(rl.retryAfter()))
			httperr.Write(c, http.StatusTooManyRequests, "rate_limited", "Demasiadas solicitudes. Intentá de nuevo más tarde.")
			return
		}

		c.Next()
	}
}

// count returns the number of tracked clients.
func (rl *RateLimiter) count() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

// retryAfter is the number of seconds until one token is refilled.
func (rl *RateLimiter) retryAfter() int {
	sec := int(math.Ceil(1.0 / float64(rl.rate)))
	if sec < 1 {
		sec = 1
	}
	return sec
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.cleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
}
