package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/response"
)

// LoginLimiter is an in-memory per-IP token bucket guarding the login
// endpoints against password guessing. State is per process.
type LoginLimiter struct {
	capacity  int
	perMinute int
	logger    *zap.Logger
	now       func() time.Time
	sweepAt   int

	mu      sync.Mutex
	buckets map[string]*bucket
}

// defaultSweepAt is the bucket count that triggers eviction of full buckets.
const defaultSweepAt = 1024

type bucket struct {
	tokens int
	last   time.Time
}

// NewLoginLimiter allows perMinute attempts per client IP with bursts up to
// the same amount. A non-positive perMinute disables limiting.
func NewLoginLimiter(perMinute int, logger *zap.Logger) *LoginLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginLimiter{
		capacity:  perMinute,
		perMinute: perMinute,
		logger:    logger,
		now:       time.Now,
		sweepAt:   defaultSweepAt,
		buckets:   make(map[string]*bucket),
	}
}

// Handler rejects requests over the limit with 429.
func (l *LoginLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.perMinute <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			l.logger.Warn("login rate limit exceeded", zap.String("ip", ip))
			c.Header("Retry-After", "60")
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *LoginLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.sweepAt {
			l.sweep(now)
		}
		l.buckets[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.perMinute))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that have refilled to capacity; a fresh bucket for the
// same client is equivalent. Callers hold mu.
func (l *LoginLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		refill := int(now.Sub(b.last).Minutes() * float64(l.perMinute))
		if b.tokens+refill >= l.capacity {
			delete(l.buckets, key)
		}
	}
}
