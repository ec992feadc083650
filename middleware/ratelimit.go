// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// rateLimiterCacheSize bounds how many client IPs are tracked at once.
// The least recently seen IP is forgotten first.
const rateLimiterCacheSize = 10_000

// RateLimiter allows each client IP n requests per window, refilled
// continuously.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	window   time.Duration
	trusted  []string
}

// NewRateLimiter keys requests by client IP. Forwarding headers are only
// read from peers listed in trustedProxies.
func NewRateLimiter(n int, window time.Duration, trustedProxies []string) *RateLimiter {
	cache, err := lru.New[string, *rate.Limiter](rateLimiterCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &RateLimiter{
		limiters: cache,
		limit:    rate.Every(window / time.Duration(n)),
		burst:    n,
		window:   window,
		trusted:  trustedProxies,
	}
}

func (l *RateLimiter) limiterFor(ip string) *rate.Limiter {
	if lim, ok := l.limiters.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if prev, ok, _ := l.limiters.PeekOrAdd(ip, lim); ok {
		return prev
	}
	return lim
}

// Allow reports whether a request from ip may proceed now.
func (l *RateLimiter) Allow(ip string) bool {
	return l.limiterFor(ip).Allow()
}

// Limit rejects requests over the limit with 429 Too Many Requests.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := GetClientIP(r, l.trusted)
		if !l.Allow(ip) {
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			retryAfter := l.window / time.Duration(l.burst)
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			ErrorResponse(w, http.StatusTooManyRequests, "too many attempts, try again later")
			return
		}
		next(w, r)
	}
}
