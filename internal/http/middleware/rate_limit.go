package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/atifjaved999/mini-coaching/internal/http/response"
)

type fixedWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter is a per-client fixed-window limiter held in process memory.
// State resets on restart; the limit is a request-shaping guard, not an
// accounting system.
type RateLimiter struct {
	mu      sync.Mutex
	store   map[string]*fixedWindow
	limit   int
	window  time.Duration
	scope   string
	keyFunc func(r *http.Request) string
}

func NewRateLimiter(limit int, window time.Duration, scope string) *RateLimiter {
	return &RateLimiter{
		store:   make(map[string]*fixedWindow),
		limit:   limit,
		window:  window,
		scope:   scope,
		keyFunc: clientIPKey,
	}
}

func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.store[key]
	if !ok || now.Sub(w.windowStart) >= rl.window {
		rl.store[key] = &fixedWindow{count: 1, windowStart: now}
		if len(rl.store) > 4096 {
			rl.evictExpired(now)
		}
		return true, 0
	}
	if w.count >= rl.limit {
		return false, rl.window - now.Sub(w.windowStart)
	}
	w.count++
	return true, 0
}

func (rl *RateLimiter) evictExpired(now time.Time) {
	for key, w := range rl.store {
		if now.Sub(w.windowStart) >= rl.window {
			delete(rl.store, key)
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.scope + ":" + rl.keyFunc(r)
		ok, retryAfter := rl.allow(key)
		if !ok {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
