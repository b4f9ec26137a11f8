// Package middleware contains the gateway's Gin middleware pipeline stages.
//
// This file implements the gateway's admission control: an in-memory,
// fixed-window request counter with per-identity windows and opportunistic
// garbage collection. Counting windows (rather than token buckets) match the
// published client contract: at most Max requests per Window per client,
// with the window resetting wholesale when it elapses.
//
// Notes:
//   - This limiter is process-local. For horizontally scaled deployments,
//     prefer a distributed limiter (e.g., Redis-backed) to enforce global
//     limits.
//   - The limiter is intended for edge-level abuse control; it is not an
//     authorization mechanism.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimitMessage is the fixed client-facing rejection text.
const rateLimitMessage = "Too many requests from this IP, please try again later."

// keyFunc selects the identity used to bucket admission counters.
// Implementations should return a stable string for the duration of a
// request (e.g., "ip:203.0.113.7").
type keyFunc func(*gin.Context) string

// KeyByClientIP buckets counters by client network address.
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// window holds one client's counter for the current fixed window.
type window struct {
	start time.Time
	count int
}

// WindowLimiter implements per-key fixed-window admission control.
//
// Windows are created lazily on a key's first request and rolled over in
// place when they elapse, so a live key never accumulates more than one
// counter. Counters for keys that went quiet are evicted by an opportunistic
// sweep piggybacking on lookups, keeping memory bounded without a background
// goroutine.
//
// This type is safe for concurrent use.
type WindowLimiter struct {
	windowDur time.Duration
	max       int

	mu      sync.Mutex
	windows map[string]*window
	sweepN  uint64
}

// sweepThreshold is the number of Admit calls between opportunistic sweeps
// of stale windows.
const sweepThreshold = 5000

// NewWindowLimiter constructs a limiter admitting at most max requests per
// windowDur per key. max values <= 0 are coerced to 1.
func NewWindowLimiter(windowDur time.Duration, max int) *WindowLimiter {
	if max <= 0 {
		max = 1
	}
	return &WindowLimiter{
		windowDur: windowDur,
		max:       max,
		windows:   make(map[string]*window),
	}
}

// Admit records one request for key at time now and reports whether it is
// allowed. The first request of a window (fresh key or elapsed window)
// starts a new counter at 1; subsequent requests increment it and are
// rejected once the count exceeds the maximum.
func (l *WindowLimiter) Admit(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Opportunistic cleanup before touching the requested key, so a stale
	// entry can be evicted even when it is the one being fetched.
	l.sweepN++
	if l.sweepN >= sweepThreshold {
		for k, w := range l.windows {
			if now.Sub(w.start) >= l.windowDur {
				delete(l.windows, k)
			}
		}
		l.sweepN = 0
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.windowDur {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= l.max
}

// Handler returns a Gin middleware enforcing the limiter over every path
// under prefix (pass "" to cover all paths). Requests outside the prefix,
// health and metrics probes in practice, bypass admission control.
//
// Rejected requests are short-circuited with:
//
//	HTTP/1.1 429 Too Many Requests
//	{ "success": false, "message": "Too many requests from this IP, ..." }
//
// and never reach the session, auth, or routing stages.
func (l *WindowLimiter) Handler(prefix string, keyFn keyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if prefix != "" && !strings.HasPrefix(c.Request.URL.Path, prefix) {
			c.Next()
			return
		}

		if l.Admit(keyFn(c), time.Now()) {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(l.windowDur.Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			failureBody(rateLimitMessage, nil))
	}
}
