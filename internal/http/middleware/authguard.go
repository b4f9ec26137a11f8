// Package middleware contains the gateway's Gin middleware pipeline stages.
//
// This file implements AuthGuard, an optional token-bucket limiter layered
// over the credential endpoints only. The fixed-window limiter bounds total
// request volume per client; the guard additionally smooths bursts against
// /api/auth/* to blunt credential stuffing without consuming the client's
// whole window. It is disabled by default (rps == 0) so it never interferes
// with the published window/ceiling contract unless explicitly enabled.
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds a single token bucket and the last time it was seen, so idle
// buckets can be evicted.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AuthGuard is a per-IP token-bucket limiter scoped to a path prefix.
// Buckets are created on demand in a mutex-guarded map; idle buckets are
// evicted after a TTL via opportunistic cleanup during lookups.
type AuthGuard struct {
	rps    rate.Limit
	burst  int
	prefix string

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	cleanupN uint64
}

// NewAuthGuard constructs a guard admitting rps tokens per second with the
// given burst over paths under prefix. rps == 0 yields a nil guard, and a
// nil guard's Handler is a no-op passthrough.
func NewAuthGuard(rps float64, burst int, prefix string) *AuthGuard {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &AuthGuard{
		rps:      rate.Limit(rps),
		burst:    burst,
		prefix:   prefix,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// bucket returns (and refreshes) the limiter for key, creating it if absent.
// Idle entries are swept after ~5000 lookups, before the requested key is
// touched, so an old bucket can be evicted even when it is the one being
// fetched.
func (g *AuthGuard) bucket(key string) *rate.Limiter {
	now := time.Now()

	g.mu.Lock()
	g.cleanupN++
	if g.cleanupN >= 5000 {
		for k, v := range g.visitors {
			if now.Sub(v.lastSeen) >= g.ttl {
				delete(g.visitors, k)
			}
		}
		g.cleanupN = 0
	}

	if v, ok := g.visitors[key]; ok {
		v.lastSeen = now
		lim := v.limiter
		g.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(g.rps, g.burst)
	g.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	g.mu.Unlock()
	return lim
}

// Handler returns the Gin middleware enforcing the guard. Safe to call on a
// nil guard.
func (g *AuthGuard) Handler() gin.HandlerFunc {
	if g == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, g.prefix) {
			c.Next()
			return
		}
		if g.bucket("ip:" + c.ClientIP()).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			failureBody(rateLimitMessage, nil))
	}
}
