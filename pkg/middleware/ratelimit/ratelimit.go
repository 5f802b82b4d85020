package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds a single rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter implements a per-client-IP token-bucket rate limiter. Buckets are
// created on demand; idle buckets are evicted opportunistically during lookups
// to keep memory bounded. Process-local only.
type Limiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	cleanupN uint64
}

// New constructs a Limiter with the given tokens-per-second and burst size.
func New(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the limiter for key, creating it if absent. Idle entries
// are swept after a threshold of lookups, before the requested visitor is
// touched so a stale bucket can still be evicted.
func (l *Limiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	l.cleanupN++
	if l.cleanupN >= 5000 {
		for k, vv := range l.visitors {
			if now.Sub(vv.lastSeen) >= l.ttl {
				delete(l.visitors, k)
			}
		}
		l.cleanupN = 0
	}

	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		lim := v.limiter
		l.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	l.mu.Unlock()
	return lim
}

// Handler returns a Gin middleware enforcing the per-IP bucket. Rejected
// requests receive 429 with a Retry-After header.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := l.getVisitor("ip:" + c.ClientIP())

		if lim.Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":    "RATE_LIMITED",
			"message": "rate limit exceeded",
		})
	}
}
