package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/codyseavey/pricewatch/web/internal/config"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// ipLimiter hands out one token bucket per client IP. Buckets of clients
// that went quiet expire from the LRU.
type ipLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newIPLimiter(perSecond, burst int) *ipLimiter {
	if burst < perSecond {
		burst = perSecond
	}
	return &ipLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-adding refreshes the idle TTL.
	l.limiters.Add(ip, limiter)
	return limiter
}

// RateLimit rejects clients exceeding cfg.PerIP requests per second with
// 429. A non-positive PerIP disables limiting.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.PerIP <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newIPLimiter(cfg.PerIP, cfg.Burst)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
